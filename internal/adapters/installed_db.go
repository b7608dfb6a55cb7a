package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"portsmith/internal/ports"
	"portsmith/internal/types"
)

// InstalledDBAdapter keeps the installed database in a single YAML file.
// A missing file reads as an empty database.
type InstalledDBAdapter struct {
	FS   afero.Fs
	Path string

	mu      sync.Mutex
	loaded  bool
	entries map[string]types.InstalledEntry
}

func NewInstalledDBAdapter(fs afero.Fs, path string) *InstalledDBAdapter {
	return &InstalledDBAdapter{FS: fs, Path: path}
}

func installedKey(name string, triplet string) string {
	return name + ":" + triplet
}

func (a *InstalledDBAdapter) InstalledIdentity(name string, triplet string) (string, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return "", false, err
	}
	entry, ok := a.entries[installedKey(name, triplet)]
	if !ok {
		return "", false, nil
	}
	return entry.Identity, true, nil
}

// Entries returns the database sorted by (name, triplet).
func (a *InstalledDBAdapter) Entries() ([]types.InstalledEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return nil, err
	}
	return a.sorted(), nil
}

// RecordInstalled merges entries into the database and rewrites the
// file. Entries replace earlier records for the same name and triplet.
func (a *InstalledDBAdapter) RecordInstalled(entries []types.InstalledEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name == "" || entry.Triplet == "" || entry.Identity == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("installed entry requires name, triplet and identity")
		}
		a.entries[installedKey(entry.Name, entry.Triplet)] = entry
	}
	data, err := yaml.Marshal(types.InstalledDatabase{Installed: a.sorted()})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode installed database").
			WithCause(err)
	}
	if dir := filepath.Dir(a.Path); dir != "" {
		if err := a.FS.MkdirAll(dir, 0o755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create installed database directory").
				WithCause(err)
		}
	}
	if err := afero.WriteFile(a.FS, a.Path, data, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write %s", a.Path)).
			WithCause(err)
	}
	return nil
}

func (a *InstalledDBAdapter) load() error {
	if a.loaded {
		return nil
	}
	if a.Path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("installed database path is empty")
	}
	a.entries = map[string]types.InstalledEntry{}
	data, err := afero.ReadFile(a.FS, a.Path)
	if os.IsNotExist(err) {
		a.loaded = true
		return nil
	}
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read %s", a.Path)).
			WithCause(err)
	}
	var db types.InstalledDatabase
	if err := yaml.Unmarshal(data, &db); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse installed database").
			WithCause(err)
	}
	for _, entry := range db.Installed {
		a.entries[installedKey(entry.Name, entry.Triplet)] = entry
	}
	a.loaded = true
	return nil
}

func (a *InstalledDBAdapter) sorted() []types.InstalledEntry {
	out := make([]types.InstalledEntry, 0, len(a.entries))
	for _, entry := range a.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Triplet < out[j].Triplet
	})
	return out
}

var (
	_ ports.InstalledStateOracle = (*InstalledDBAdapter)(nil)
	_ ports.InstalledWriterPort  = (*InstalledDBAdapter)(nil)
)
