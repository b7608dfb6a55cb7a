package core

import (
	"fmt"
	"sort"

	"portsmith/internal/shared"
	"portsmith/internal/types"
)

// FeatureResolution is the outcome of expanding a manifest's feature
// set: the selected features and the dependencies they bring in.
type FeatureResolution struct {
	Features     []string
	Dependencies []types.Dependency

	// Unsupported names selected features whose supports expression is
	// false for the facts. It does not include the port itself.
	Unsupported []string
}

const (
	featureWhite = iota
	featureGray
	featureBlack
)

// ResolveFeatureSet computes the least fixed point of requested
// features, default features (when wanted) and the features those
// features require of their own package, then gathers the dependency
// list of the base manifest plus every selected feature, filtered by
// platform expression and de-duplicated.
func ResolveFeatureSet(manifest types.SourceControlFile, requested []string, wantDefault bool, facts types.Facts, cache *QualifierCache) (FeatureResolution, error) {
	suppressDefaults := false
	forceDefaults := false
	var seeds []string
	for _, name := range requested {
		switch name {
		case types.FeatureCore:
			suppressDefaults = true
		case types.FeatureDefault:
			forceDefaults = true
		case types.FeatureAll:
			for _, feature := range manifest.Features {
				seeds = append(seeds, feature.Name)
			}
		default:
			if _, ok := manifest.Feature(name); !ok {
				return FeatureResolution{}, featureNotFoundError(manifest.Name, name)
			}
			seeds = append(seeds, name)
		}
	}
	if forceDefaults || (wantDefault && !suppressDefaults) {
		for _, name := range manifest.DefaultFeatures {
			if _, ok := manifest.Feature(name); !ok {
				return FeatureResolution{}, featureNotFoundError(manifest.Name, name)
			}
			seeds = append(seeds, name)
		}
	}
	baseSelf, err := selfFeatureRequirements(manifest, manifest.Dependencies, facts, cache)
	if err != nil {
		return FeatureResolution{}, err
	}
	seeds = append(seeds, baseSelf...)

	walker := featureWalker{
		manifest: manifest,
		facts:    facts,
		cache:    cache,
		state:    map[string]int{},
	}
	for _, seed := range seeds {
		if err := walker.visit(seed); err != nil {
			return FeatureResolution{}, err
		}
	}

	selected := make([]string, 0, len(walker.state))
	for name := range walker.state {
		selected = append(selected, name)
	}
	sort.Strings(selected)

	result := FeatureResolution{Features: selected}
	collector := newDependencyCollector(manifest.Name)
	if err := collector.add(manifest.Dependencies, facts, cache); err != nil {
		return FeatureResolution{}, err
	}
	for _, name := range selected {
		feature, _ := manifest.Feature(name)
		if err := collector.add(feature.Dependencies, facts, cache); err != nil {
			return FeatureResolution{}, err
		}
		supported, err := cache.Evaluate(feature.Supports, facts)
		if err != nil {
			return FeatureResolution{}, err
		}
		if !supported {
			result.Unsupported = append(result.Unsupported, name)
		}
	}
	result.Dependencies = collector.list()
	return result, nil
}

type featureWalker struct {
	manifest types.SourceControlFile
	facts    types.Facts
	cache    *QualifierCache
	state    map[string]int
	path     []string
}

func (w *featureWalker) visit(name string) error {
	switch w.state[name] {
	case featureBlack:
		return nil
	case featureGray:
		return w.cycleError(name)
	}
	feature, ok := w.manifest.Feature(name)
	if !ok {
		return featureNotFoundError(w.manifest.Name, name)
	}
	w.state[name] = featureGray
	w.path = append(w.path, name)
	required, err := selfFeatureRequirements(w.manifest, feature.Dependencies, w.facts, w.cache)
	if err != nil {
		return err
	}
	for _, next := range required {
		if err := w.visit(next); err != nil {
			return err
		}
	}
	w.path = w.path[:len(w.path)-1]
	w.state[name] = featureBlack
	return nil
}

func (w *featureWalker) cycleError(name string) error {
	start := 0
	for i, entry := range w.path {
		if entry == name {
			start = i
			break
		}
	}
	var chain []string
	for _, entry := range w.path[start:] {
		chain = append(chain, fmt.Sprintf("%s[%s]", w.manifest.Name, entry))
	}
	chain = append(chain, fmt.Sprintf("%s[%s]", w.manifest.Name, name))
	e := newResolutionError(ErrCircularFeatureRequirement, w.manifest.Name, "",
		fmt.Sprintf("circular feature requirement in %s", w.manifest.Name))
	e.Feature = name
	e.Chain = chain
	return e
}

// selfFeatureRequirements returns the features a dependency list asks
// of its own package. "core" and "default" carry no requirement here.
func selfFeatureRequirements(manifest types.SourceControlFile, deps []types.Dependency, facts types.Facts, cache *QualifierCache) ([]string, error) {
	var out []string
	for _, dep := range deps {
		if shared.NormalizePortName(dep.Name) != shared.NormalizePortName(manifest.Name) || dep.Host {
			continue
		}
		applies, err := cache.Evaluate(dep.Platform, facts)
		if err != nil {
			return nil, err
		}
		if !applies {
			continue
		}
		for _, feature := range dep.Features {
			if feature == types.FeatureCore || feature == types.FeatureDefault {
				continue
			}
			if _, ok := manifest.Feature(feature); !ok {
				return nil, featureNotFoundError(manifest.Name, feature)
			}
			out = append(out, feature)
		}
	}
	return out, nil
}

type dependencyKey struct {
	name    string
	host    bool
	minimum string
}

// dependencyCollector de-duplicates dependencies that name the same
// package on the same triplet with the same minimum, unioning their
// requested features.
type dependencyCollector struct {
	self     string
	order    []dependencyKey
	merged   map[dependencyKey]types.Dependency
	features map[dependencyKey]map[string]struct{}
}

func newDependencyCollector(self string) *dependencyCollector {
	return &dependencyCollector{
		self:     shared.NormalizePortName(self),
		merged:   map[dependencyKey]types.Dependency{},
		features: map[dependencyKey]map[string]struct{}{},
	}
}

func (c *dependencyCollector) add(deps []types.Dependency, facts types.Facts, cache *QualifierCache) error {
	for _, dep := range deps {
		if shared.NormalizePortName(dep.Name) == c.self && !dep.Host {
			continue
		}
		applies, err := cache.Evaluate(dep.Platform, facts)
		if err != nil {
			return err
		}
		if !applies {
			continue
		}
		key := dependencyKey{name: shared.NormalizePortName(dep.Name), host: dep.Host}
		if dep.Minimum != nil {
			key.minimum = string(dep.Minimum.Scheme) + ":" + dep.Minimum.String()
		}
		existing, ok := c.merged[key]
		if !ok {
			existing = types.Dependency{Name: dep.Name, Minimum: dep.Minimum, Host: dep.Host}
			no := false
			existing.DefaultFeatures = &no
			c.order = append(c.order, key)
			c.features[key] = map[string]struct{}{}
		}
		if dep.WantsDefaultFeatures() {
			existing.DefaultFeatures = nil
		}
		for _, feature := range dep.Features {
			c.features[key][feature] = struct{}{}
		}
		c.merged[key] = existing
	}
	return nil
}

func (c *dependencyCollector) list() []types.Dependency {
	keys := append([]dependencyKey(nil), c.order...)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		if keys[i].host != keys[j].host {
			return !keys[i].host
		}
		return keys[i].minimum < keys[j].minimum
	})
	out := make([]types.Dependency, 0, len(keys))
	for _, key := range keys {
		dep := c.merged[key]
		dep.Features = sortedSet(c.features[key])
		out = append(out, dep)
	}
	return out
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for value := range set {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func featureNotFoundError(pkg string, feature string) *ResolutionError {
	e := newResolutionError(ErrFeatureNotFound, pkg, "",
		fmt.Sprintf("feature %s not found in %s", feature, pkg))
	e.Feature = feature
	return e
}
