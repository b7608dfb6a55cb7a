package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
	goversion "github.com/hashicorp/go-version"

	"portsmith/internal/policies"
	"portsmith/internal/shared"
	"portsmith/internal/types"
)

const dateLayout = "2006-01-02"

var relaxedSegments = regexp.MustCompile(`^[0-9A-Za-z]+(\.[0-9A-Za-z]+)*$`)

// ParseVersion checks that text is well formed under scheme and returns
// the version value. An empty scheme means relaxed.
func ParseVersion(text string, scheme types.VersionScheme, portVersion int) (types.Version, error) {
	text = strings.TrimSpace(text)
	if scheme == "" {
		scheme = types.VersionSchemeRelaxed
	}
	v := types.Version{Text: text, Scheme: scheme, PortVersion: portVersion}
	if text == "" {
		return types.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty version text")
	}
	if portVersion < 0 {
		return types.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("negative port version for %s", text))
	}
	var err error
	switch scheme {
	case types.VersionSchemeRelaxed:
		if _, perr := goversion.NewVersion(text); perr != nil && !relaxedSegments.MatchString(text) {
			err = perr
		}
	case types.VersionSchemeSemver:
		_, err = semver.StrictNewVersion(text)
	case types.VersionSchemeDate:
		_, _, err = parseDateVersion(text)
	case types.VersionSchemeString:
	default:
		return types.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown version scheme: %s", scheme))
	}
	if err != nil {
		return types.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid %s version: %s", scheme, text)).
			WithCause(err)
	}
	return v, nil
}

// ParseVersionText splits an optional "#port-version" suffix off text
// before parsing it under scheme.
func ParseVersionText(text string, scheme types.VersionScheme) (types.Version, error) {
	base, suffix, found := strings.Cut(strings.TrimSpace(text), "#")
	if !found {
		return ParseVersion(base, scheme, 0)
	}
	portVersion, err := strconv.Atoi(suffix)
	if err != nil {
		return types.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid port version in %s", text)).
			WithCause(err)
	}
	return ParseVersion(base, scheme, portVersion)
}

// CompareVersions orders a against b under their scheme. Text ties fall
// through to the port version.
func CompareVersions(a types.Version, b types.Version) types.Ordering {
	schemeA := normalizedScheme(a.Scheme)
	schemeB := normalizedScheme(b.Scheme)
	if schemeA != schemeB {
		if a.Text == b.Text && a.PortVersion == b.PortVersion {
			return types.OrderingEqual
		}
		return types.OrderingIncomparable
	}
	var textOrder types.Ordering
	switch schemeA {
	case types.VersionSchemeRelaxed:
		textOrder = compareRelaxed(a.Text, b.Text)
	case types.VersionSchemeSemver:
		textOrder = compareSemver(a.Text, b.Text)
	case types.VersionSchemeDate:
		textOrder = compareDate(a.Text, b.Text)
	case types.VersionSchemeString:
		if a.Text != b.Text {
			return types.OrderingIncomparable
		}
		textOrder = types.OrderingEqual
	default:
		return types.OrderingIncomparable
	}
	if textOrder != types.OrderingEqual {
		return textOrder
	}
	return orderInts(a.PortVersion, b.PortVersion)
}

func normalizedScheme(scheme types.VersionScheme) types.VersionScheme {
	if scheme == "" {
		return types.VersionSchemeRelaxed
	}
	return scheme
}

// compareRelaxed orders relaxed versions element-wise on their dot
// segments. There is no prerelease notion: "1.2a" sorts above "1.2".
func compareRelaxed(a string, b string) types.Ordering {
	return compareSegments(strings.Split(a, "."), strings.Split(b, "."))
}

// compareSegments orders dot segments element-wise. Numeric segments
// sort before alphanumeric ones; missing trailing segments read as "0".
func compareSegments(a []string, b []string) types.Ordering {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		sa, sb := "0", "0"
		if i < len(a) {
			sa = a[i]
		}
		if i < len(b) {
			sb = b[i]
		}
		na, errA := strconv.ParseUint(sa, 10, 64)
		nb, errB := strconv.ParseUint(sb, 10, 64)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return types.OrderingLess
				}
				return types.OrderingGreater
			}
		case errA == nil:
			return types.OrderingLess
		case errB == nil:
			return types.OrderingGreater
		default:
			if cmp := strings.Compare(sa, sb); cmp != 0 {
				return orderInts(cmp, 0)
			}
		}
	}
	return types.OrderingEqual
}

func compareSemver(a string, b string) types.Ordering {
	va, err := semver.StrictNewVersion(a)
	if err != nil {
		return types.OrderingIncomparable
	}
	vb, err := semver.StrictNewVersion(b)
	if err != nil {
		return types.OrderingIncomparable
	}
	return orderInts(va.Compare(vb), 0)
}

func compareDate(a string, b string) types.Ordering {
	da, restA, err := parseDateVersion(a)
	if err != nil {
		return types.OrderingIncomparable
	}
	db, restB, err := parseDateVersion(b)
	if err != nil {
		return types.OrderingIncomparable
	}
	switch {
	case da.Before(db):
		return types.OrderingLess
	case da.After(db):
		return types.OrderingGreater
	}
	return compareSegments(restA, restB)
}

// parseDateVersion reads "YYYY-MM-DD" plus optional ".N" numeric
// segments.
func parseDateVersion(text string) (time.Time, []string, error) {
	if len(text) < len(dateLayout) {
		return time.Time{}, nil, fmt.Errorf("date version too short: %q", text)
	}
	date, err := time.Parse(dateLayout, text[:len(dateLayout)])
	if err != nil {
		return time.Time{}, nil, err
	}
	rest := text[len(dateLayout):]
	if rest == "" {
		return date, nil, nil
	}
	if !strings.HasPrefix(rest, ".") {
		return time.Time{}, nil, fmt.Errorf("date version suffix must start with '.': %q", text)
	}
	segments := strings.Split(rest[1:], ".")
	for _, segment := range segments {
		if _, err := strconv.ParseUint(segment, 10, 64); err != nil {
			return time.Time{}, nil, fmt.Errorf("date version suffix must be numeric: %q", text)
		}
	}
	return date, segments, nil
}

func orderInts(a int, b int) types.Ordering {
	switch {
	case a < b:
		return types.OrderingLess
	case a > b:
		return types.OrderingGreater
	default:
		return types.OrderingEqual
	}
}

// VersionSelection is one requester's view of which version a package
// should resolve to. Pinned is false when nothing constrained the pick
// and the manifest's own version should be used.
type VersionSelection struct {
	Version types.Version
	Pinned  bool
	Source  string
}

// SelectVersion picks the version of name for one requester: the
// override, else the baseline entry, else the requester's own minimum.
// A minimum above (or incomparable with) an override or baseline pick
// fails with UnsatisfiableVersion; precedence decides whether override
// picks are checked at all.
func SelectVersion(name string, scheme types.VersionScheme, baseline types.Baseline, overrides types.Baseline, minimum *types.Version, precedence policies.Precedence) (VersionSelection, error) {
	scheme = normalizedScheme(scheme)
	var min *types.Version
	if minimum != nil {
		m := *minimum
		if m.Scheme == "" {
			m.Scheme = scheme
		}
		min = &m
	}

	if pinned, ok := lookupPin(overrides, name); ok {
		pick, err := adoptScheme(name, pinned, scheme)
		if err != nil {
			return VersionSelection{}, err
		}
		if min != nil && precedence.ChecksOverride() {
			if err := checkMinimum(name, *min, pick); err != nil {
				return VersionSelection{}, err
			}
		}
		return VersionSelection{Version: pick, Pinned: true, Source: "override"}, nil
	}
	if pinned, ok := lookupPin(baseline, name); ok {
		pick, err := adoptScheme(name, pinned, scheme)
		if err != nil {
			return VersionSelection{}, err
		}
		if min != nil {
			if err := checkMinimum(name, *min, pick); err != nil {
				return VersionSelection{}, err
			}
		}
		return VersionSelection{Version: pick, Pinned: true, Source: "baseline"}, nil
	}
	if min != nil {
		return VersionSelection{Version: *min, Pinned: true, Source: "minimum"}, nil
	}
	return VersionSelection{}, nil
}

// lookupPin finds name in pins, falling back to its normalized spelling.
func lookupPin(pins types.Baseline, name string) (types.Version, bool) {
	if pinned, ok := pins[name]; ok {
		return pinned, true
	}
	pinned, ok := pins[shared.NormalizePortName(name)]
	return pinned, ok
}

// adoptScheme gives a baseline or override entry the manifest's scheme.
// An entry that declares a different scheme cannot be compared.
func adoptScheme(name string, pinned types.Version, scheme types.VersionScheme) (types.Version, error) {
	if pinned.Scheme == "" {
		pinned.Scheme = scheme
		return pinned, nil
	}
	if normalizedScheme(pinned.Scheme) != scheme {
		return types.Version{}, unsatisfiableVersionError(name,
			pinned.String(), string(pinned.Scheme), pinned.String(), string(scheme))
	}
	return pinned, nil
}

func checkMinimum(name string, minimum types.Version, pick types.Version) error {
	switch CompareVersions(minimum, pick) {
	case types.OrderingGreater, types.OrderingIncomparable:
		return unsatisfiableVersionError(name,
			minimum.String(), string(minimum.Scheme), pick.String(), string(pick.Scheme))
	default:
		return nil
	}
}
