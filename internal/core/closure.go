package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portsmith/internal/policies"
	"portsmith/internal/ports"
	"portsmith/internal/shared"
	"portsmith/internal/types"
)

const rootRequester = "<root>"

// ClosureRequest carries the inputs of one graph expansion. Triplets
// holds definitions for request-level triplets other than Target and
// Host.
type ClosureRequest struct {
	Roots     []types.Request
	Baseline  types.Baseline
	Overrides types.Baseline
	Target    types.Triplet
	Host      types.Triplet
	Triplets  map[string]types.Triplet
}

// ClosureNode is one (package, triplet) of the transitive closure.
// Edges index into Closure.Nodes and are sorted by (name, triplet).
type ClosureNode struct {
	Name      string
	Triplet   types.Triplet
	Manifest  types.SourceControlFile
	Version   types.Version
	Features  []string
	Edges     []int
	Requested bool
	Chain     []string
}

func (n ClosureNode) Key() string {
	return nodeKey(n.Name, n.Triplet.Name)
}

type Closure struct {
	Target types.Triplet
	Host   types.Triplet
	Nodes  []ClosureNode
	Roots  []int
}

type ClosureBuilder struct {
	Lookup           ports.PackageLookup
	Policy           policies.Precedence
	AllowUnsupported bool
}

func NewClosureBuilder(lookup ports.PackageLookup, policy policies.Precedence) ClosureBuilder {
	return ClosureBuilder{Lookup: lookup, Policy: policy}
}

// versionDemand is one requester's contribution to a node's version.
// A root minimum pins the version; a transitive minimum with nothing
// pinned only bounds the final pick from below.
type versionDemand struct {
	requester string
	root      bool
	minimum   *types.Version
	selection VersionSelection
}

type closureEntry struct {
	name        string
	triplet     types.Triplet
	facts       types.Facts
	manifest    types.SourceControlFile
	fetched     bool
	requested   map[string]struct{}
	wantDefault bool
	demands     map[string]versionDemand
	chain       []string
	queued      bool
	expanded    bool
	features    []string
	edges       map[int]struct{}
	root        bool
}

type closureRun struct {
	builder ClosureBuilder
	req     ClosureRequest
	cache   *QualifierCache
	entries []*closureEntry
	index   map[string]int
	queue   []int
}

// Build expands the roots breadth first into the full closure. Merging
// new features or default-feature demand into a node that was already
// expanded puts it back on the queue; feature sets only grow.
func (b ClosureBuilder) Build(ctx context.Context, req ClosureRequest) (Closure, error) {
	if b.Lookup == nil {
		return Closure{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("closure builder requires a package lookup")
	}
	if b.Policy == "" {
		b.Policy = policies.DefaultPrecedence
	}
	run := &closureRun{
		builder: b,
		req:     req,
		cache:   NewQualifierCache(),
		index:   map[string]int{},
	}

	roots := append([]types.Request(nil), req.Roots...)
	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].Name != roots[j].Name {
			return roots[i].Name < roots[j].Name
		}
		return roots[i].Triplet < roots[j].Triplet
	})
	var rootIndexes []int
	for _, root := range roots {
		triplet, err := run.rootTriplet(root)
		if err != nil {
			return Closure{}, err
		}
		features, wantDefault := splitFeatureRequest(root.Features, true)
		idx := run.demand(root.Name, triplet, nil, features, wantDefault, rootRequester, root.Minimum, true)
		run.entries[idx].root = true
		rootIndexes = append(rootIndexes, idx)
	}

	for len(run.queue) > 0 {
		idx := run.queue[0]
		run.queue = run.queue[1:]
		if err := run.expand(ctx, idx); err != nil {
			return Closure{}, err
		}
	}

	closure := Closure{Target: req.Target, Host: req.Host}
	for idx, entry := range run.entries {
		version, err := run.finalizeVersion(entry)
		if err != nil {
			return Closure{}, err
		}
		node := ClosureNode{
			Name:      entry.name,
			Triplet:   entry.triplet,
			Manifest:  entry.manifest,
			Version:   version,
			Features:  entry.features,
			Requested: entry.root,
			Chain:     entry.chain,
			Edges:     run.sortedEdges(entry),
		}
		closure.Nodes = append(closure.Nodes, node)
		log.Ctx(ctx).Debug().
			Int("node", idx).
			Str("package", node.Name).
			Str("triplet", node.Triplet.Name).
			Str("version", node.Version.String()).
			Strs("features", node.Features).
			Msg("closure node resolved")
	}
	if err := checkSingleVersion(closure); err != nil {
		return Closure{}, err
	}
	closure.Roots = uniqueInts(rootIndexes)
	return closure, nil
}

func (r *closureRun) rootTriplet(root types.Request) (types.Triplet, error) {
	switch root.Triplet {
	case "", r.req.Target.Name:
		return r.req.Target, nil
	case r.req.Host.Name:
		return r.req.Host, nil
	}
	if triplet, ok := r.req.Triplets[root.Triplet]; ok {
		return triplet, nil
	}
	return types.Triplet{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("unknown triplet %s requested for %s", root.Triplet, root.Name))
}

// splitFeatureRequest separates the pseudo-features "core" and
// "default" from real feature names and folds them into the
// default-feature flag.
func splitFeatureRequest(features []string, wantDefault bool) ([]string, bool) {
	var out []string
	core := false
	force := false
	for _, feature := range features {
		switch feature {
		case types.FeatureCore:
			core = true
		case types.FeatureDefault:
			force = true
		default:
			out = append(out, feature)
		}
	}
	return out, force || (wantDefault && !core)
}

// demand records that requester needs name on triplet with the given
// features and returns the node index. A node whose requested state
// grows after expansion is re-queued.
func (r *closureRun) demand(name string, triplet types.Triplet, parentChain []string, features []string, wantDefault bool, requester string, minimum *types.Version, root bool) int {
	// Port names are case-insensitive; the node takes the manifest's
	// spelling once it is fetched.
	key := nodeKey(shared.NormalizePortName(name), triplet.Name)
	idx, ok := r.index[key]
	if !ok {
		chain := append(append([]string(nil), parentChain...), key)
		entry := &closureEntry{
			name:      name,
			triplet:   triplet,
			facts:     r.factsFor(triplet),
			requested: map[string]struct{}{},
			demands:   map[string]versionDemand{},
			chain:     chain,
			edges:     map[int]struct{}{},
		}
		idx = len(r.entries)
		r.entries = append(r.entries, entry)
		r.index[key] = idx
	}
	entry := r.entries[idx]
	grew := false
	for _, feature := range features {
		if _, seen := entry.requested[feature]; !seen {
			entry.requested[feature] = struct{}{}
			grew = true
		}
	}
	if wantDefault && !entry.wantDefault {
		entry.wantDefault = true
		grew = true
	}
	demandKey := requester
	if minimum != nil {
		demandKey += "|" + string(minimum.Scheme) + ":" + minimum.String()
	}
	if _, seen := entry.demands[demandKey]; !seen {
		entry.demands[demandKey] = versionDemand{
			requester: requester,
			root:      root,
			minimum:   minimum,
		}
	}
	if !ok || (grew && entry.expanded) {
		r.enqueue(idx)
	}
	return idx
}

func (r *closureRun) enqueue(idx int) {
	entry := r.entries[idx]
	if entry.queued {
		return
	}
	entry.queued = true
	r.queue = append(r.queue, idx)
}

func (r *closureRun) factsFor(triplet types.Triplet) types.Facts {
	facts := triplet.Facts()
	if triplet.Identity() == r.req.Host.Identity() {
		facts[types.FactNative] = "true"
	}
	return facts
}

func (r *closureRun) expand(ctx context.Context, idx int) error {
	entry := r.entries[idx]
	entry.queued = false
	if !entry.fetched {
		manifest, found, err := r.builder.Lookup.GetManifest(entry.name)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("failed to load manifest for %s", entry.name)).
				WithCause(err)
		}
		if !found {
			e := newResolutionError(ErrManifestNotFound, entry.name, entry.triplet.Name,
				fmt.Sprintf("no port named %s", entry.name))
			e.Chain = entry.chain
			return e
		}
		entry.manifest = manifest
		entry.fetched = true
		if manifest.Name != "" {
			entry.name = manifest.Name
		}
		if err := r.checkSupports(ctx, entry, "", manifest.Supports); err != nil {
			return err
		}
	}

	requested := make([]string, 0, len(entry.requested))
	for feature := range entry.requested {
		requested = append(requested, feature)
	}
	sort.Strings(requested)
	resolution, err := ResolveFeatureSet(entry.manifest, requested, entry.wantDefault, entry.facts, r.cache)
	if err != nil {
		return withNodeContext(err, entry)
	}
	for _, name := range resolution.Unsupported {
		paragraph, _ := entry.manifest.Feature(name)
		if err := r.checkSupports(ctx, entry, paragraph.Name, paragraph.Supports); err != nil {
			return err
		}
	}
	entry.features = resolution.Features
	entry.expanded = true
	log.Ctx(ctx).Debug().
		Str("package", entry.name).
		Str("triplet", entry.triplet.Name).
		Strs("features", entry.features).
		Int("dependencies", len(resolution.Dependencies)).
		Msg("expanded closure node")

	requester := nodeKey(entry.name, entry.triplet.Name)
	for _, dep := range resolution.Dependencies {
		triplet := entry.triplet
		if dep.Host {
			triplet = r.req.Host
			// A host build already provides its own tools.
			if shared.NormalizePortName(dep.Name) == shared.NormalizePortName(entry.name) && triplet.Name == entry.triplet.Name {
				continue
			}
		}
		features, wantDefault := splitFeatureRequest(dep.Features, dep.WantsDefaultFeatures())
		child := r.demand(dep.Name, triplet, entry.chain, features, wantDefault, requester, dep.Minimum, false)
		entry.edges[child] = struct{}{}
	}
	return nil
}

func (r *closureRun) checkSupports(ctx context.Context, entry *closureEntry, feature string, expr string) error {
	supported, err := r.cache.Evaluate(expr, entry.facts)
	if err != nil {
		return err
	}
	if supported {
		return nil
	}
	subject := entry.name
	if feature != "" {
		subject = fmt.Sprintf("%s[%s]", entry.name, feature)
	}
	if r.builder.AllowUnsupported {
		log.Ctx(ctx).Warn().
			Str("package", subject).
			Str("triplet", entry.triplet.Name).
			Str("supports", expr).
			Msg("building unsupported port")
		return nil
	}
	e := newResolutionError(ErrUnsupported, entry.name, entry.triplet.Name,
		fmt.Sprintf("%s is only supported on %q, not %s", subject, expr, entry.triplet.Name))
	e.Feature = feature
	e.Chain = entry.chain
	return e
}

// finalizeVersion reconciles every requester's demand on a node into a
// single declared version of its manifest.
func (r *closureRun) finalizeVersion(entry *closureEntry) (types.Version, error) {
	scheme := normalizedScheme(entry.manifest.Version.Scheme)
	keys := make([]string, 0, len(entry.demands))
	for key := range entry.demands {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var pinned []versionDemand
	var floors []versionDemand
	for _, key := range keys {
		demand := entry.demands[key]
		selection, err := SelectVersion(entry.name, scheme, r.req.Baseline, r.req.Overrides, demand.minimum, r.builder.Policy)
		if err != nil {
			return types.Version{}, withNodeContext(err, entry)
		}
		demand.selection = selection
		switch {
		case selection.Source == "minimum" && !demand.root:
			floors = append(floors, demand)
		case selection.Pinned:
			pinned = append(pinned, demand)
		}
	}

	chosen := entry.manifest.Version
	if chosen.Scheme == "" {
		chosen.Scheme = scheme
	}
	if len(pinned) > 0 {
		chosen = pinned[0].selection.Version
		for _, other := range pinned[1:] {
			if CompareVersions(chosen, other.selection.Version) != types.OrderingEqual {
				return types.Version{}, versionConflictError(entry, pinned)
			}
		}
	}
	for _, floor := range floors {
		if err := checkMinimum(entry.name, floor.selection.Version, chosen); err != nil {
			return types.Version{}, withNodeContext(err, entry)
		}
	}
	declared, ok := matchDeclaredVersion(entry.manifest, chosen)
	if !ok {
		e := newResolutionError(ErrUnsatisfiableVersion, entry.name, entry.triplet.Name,
			fmt.Sprintf("port %s does not declare version %s (%s)", entry.name, chosen.String(), chosen.Scheme))
		e.Versions = []string{chosen.String(), entry.manifest.Version.String()}
		e.Chain = entry.chain
		return types.Version{}, e
	}
	return declared, nil
}

// matchDeclaredVersion finds the manifest release for a pick. A pick
// without a port version takes the highest port version declared for
// that text.
func matchDeclaredVersion(manifest types.SourceControlFile, pick types.Version) (types.Version, bool) {
	want := types.Version{Text: pick.Text, Scheme: normalizedScheme(pick.Scheme)}
	var best types.Version
	found := false
	for _, declared := range manifest.DeclaredVersions() {
		declared.Scheme = normalizedScheme(declared.Scheme)
		text := types.Version{Text: declared.Text, Scheme: declared.Scheme}
		if declared.Text != pick.Text && CompareVersions(text, want) != types.OrderingEqual {
			continue
		}
		if pick.PortVersion != 0 && declared.PortVersion != pick.PortVersion {
			continue
		}
		if !found || declared.PortVersion > best.PortVersion {
			best = declared
			found = true
		}
	}
	return best, found
}

// checkSingleVersion fails when one package resolved to different
// versions on different triplets.
func checkSingleVersion(closure Closure) error {
	first := map[string]int{}
	for idx, node := range closure.Nodes {
		name := shared.NormalizePortName(node.Name)
		prev, ok := first[name]
		if !ok {
			first[name] = idx
			continue
		}
		other := closure.Nodes[prev]
		if CompareVersions(other.Version, node.Version) == types.OrderingEqual {
			continue
		}
		a, b := other, node
		if b.Triplet.Name < a.Triplet.Name {
			a, b = b, a
		}
		e := newResolutionError(ErrVersionConflict, node.Name, a.Triplet.Name,
			fmt.Sprintf("conflicting versions for %s: %s on %s, %s on %s",
				node.Name, a.Version.String(), a.Triplet.Name, b.Version.String(), b.Triplet.Name))
		e.Versions = []string{a.Version.String(), b.Version.String()}
		e.Chain = []string{a.Key(), b.Key()}
		return e
	}
	return nil
}

func versionConflictError(entry *closureEntry, pinned []versionDemand) *ResolutionError {
	var versions []string
	var requesters []string
	seen := map[string]struct{}{}
	var parts []string
	for _, demand := range pinned {
		version := demand.selection.Version.String()
		if _, ok := seen[version]; !ok {
			seen[version] = struct{}{}
			versions = append(versions, version)
		}
		requesters = append(requesters, demand.requester)
		parts = append(parts, fmt.Sprintf("%s from %s", version, demand.requester))
	}
	e := newResolutionError(ErrVersionConflict, entry.name, entry.triplet.Name,
		fmt.Sprintf("conflicting versions for %s: %s", nodeKey(entry.name, entry.triplet.Name), strings.Join(parts, ", ")))
	e.Versions = versions
	e.Chain = requesters
	return e
}

// withNodeContext fills in the package, triplet and chain of a
// resolution error raised below the graph builder.
func withNodeContext(err error, entry *closureEntry) error {
	resErr, ok := err.(*ResolutionError)
	if !ok {
		return err
	}
	if resErr.Package == "" {
		resErr.Package = entry.name
	}
	if resErr.Triplet == "" {
		resErr.Triplet = entry.triplet.Name
	}
	if len(resErr.Chain) == 0 {
		resErr.Chain = entry.chain
	}
	return resErr
}

func (r *closureRun) sortedEdges(entry *closureEntry) []int {
	edges := make([]int, 0, len(entry.edges))
	for idx := range entry.edges {
		edges = append(edges, idx)
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := r.entries[edges[i]], r.entries[edges[j]]
		if a.name != b.name {
			return a.name < b.name
		}
		return a.triplet.Name < b.triplet.Name
	})
	return edges
}

func nodeKey(name string, triplet string) string {
	return name + ":" + triplet
}

func uniqueInts(values []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
