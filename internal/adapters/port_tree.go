package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"portsmith/internal/ports"
	"portsmith/internal/shared"
	"portsmith/internal/types"
)

const (
	manifestFileName   = "port.yaml"
	defaultLoadWorkers = 8
)

// PortTreeAdapter serves manifests from a ports directory laid out as
// <root>/<port>/port.yaml. Overlay roots are searched before the main
// tree, so an overlay port shadows the port of the same name.
type PortTreeAdapter struct {
	FS      afero.Fs
	Roots   []string
	Workers int

	mu        sync.Mutex
	loaded    bool
	manifests map[string]types.SourceControlFile
	origins   map[string]string
}

func NewPortTreeAdapter(fs afero.Fs, main string, overlays ...string) *PortTreeAdapter {
	roots := append([]string(nil), overlays...)
	roots = append(roots, main)
	return &PortTreeAdapter{FS: fs, Roots: roots}
}

func (a *PortTreeAdapter) GetManifest(name string) (types.SourceControlFile, bool, error) {
	if err := a.load(); err != nil {
		return types.SourceControlFile{}, false, err
	}
	manifest, ok := a.manifests[shared.NormalizePortName(name)]
	return manifest, ok, nil
}

func (a *PortTreeAdapter) PortNames() ([]string, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	return shared.SortedKeys(a.manifests), nil
}

// Origin returns the manifest path a port was loaded from.
func (a *PortTreeAdapter) Origin(name string) (string, bool) {
	if err := a.load(); err != nil {
		return "", false
	}
	path, ok := a.origins[shared.NormalizePortName(name)]
	return path, ok
}

type portJob struct {
	dir  string
	path string
}

func (a *PortTreeAdapter) load() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		return nil
	}
	if len(a.Roots) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("ports directory is empty")
	}
	var jobs []portJob
	for _, root := range a.Roots {
		found, err := a.scanRoot(root)
		if err != nil {
			return err
		}
		jobs = append(jobs, found...)
	}

	results := make([]types.SourceControlFile, len(jobs))
	workers := a.Workers
	if workers <= 0 {
		workers = defaultLoadWorkers
	}
	var group errgroup.Group
	group.SetLimit(workers)
	for i, job := range jobs {
		group.Go(func() error {
			manifest, err := a.readManifest(job)
			if err != nil {
				return err
			}
			results[i] = manifest
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	manifests := map[string]types.SourceControlFile{}
	origins := map[string]string{}
	for i, job := range jobs {
		key := shared.NormalizePortName(results[i].Name)
		if _, shadowed := manifests[key]; shadowed {
			continue
		}
		manifests[key] = results[i]
		origins[key] = job.path
	}
	a.manifests = manifests
	a.origins = origins
	a.loaded = true
	return nil
}

func (a *PortTreeAdapter) scanRoot(root string) ([]portJob, error) {
	entries, err := afero.ReadDir(a.FS, root)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("ports directory not found: %s", root)).
			WithCause(err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	var jobs []portJob
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(root, entry.Name(), manifestFileName)
		if _, err := a.FS.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("failed to stat %s", path)).
				WithCause(err)
		}
		jobs = append(jobs, portJob{dir: entry.Name(), path: path})
	}
	return jobs, nil
}

func (a *PortTreeAdapter) readManifest(job portJob) (types.SourceControlFile, error) {
	data, err := afero.ReadFile(a.FS, job.path)
	if err != nil {
		return types.SourceControlFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read %s", job.path)).
			WithCause(err)
	}
	var manifest types.SourceControlFile
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return types.SourceControlFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid port manifest %s", job.path)).
			WithCause(err)
	}
	if manifest.Name == "" {
		manifest.Name = job.dir
	}
	if shared.NormalizePortName(manifest.Name) != shared.NormalizePortName(job.dir) {
		return types.SourceControlFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("port %s is declared in directory %s", manifest.Name, job.dir))
	}
	return manifest, nil
}

var _ ports.PortTreePort = (*PortTreeAdapter)(nil)
