package types

type VersionScheme string

const (
	VersionSchemeRelaxed VersionScheme = "relaxed"
	VersionSchemeSemver  VersionScheme = "semver"
	VersionSchemeDate    VersionScheme = "date"
	VersionSchemeString  VersionScheme = "string"
)

// Ordering is the result of comparing two versions. Incomparable is
// returned when the schemes cannot order the pair at all.
type Ordering int

const (
	OrderingLess Ordering = iota - 1
	OrderingEqual
	OrderingGreater
	OrderingIncomparable
)

func (o Ordering) String() string {
	switch o {
	case OrderingLess:
		return "less"
	case OrderingEqual:
		return "equal"
	case OrderingGreater:
		return "greater"
	default:
		return "incomparable"
	}
}

type Classification string

const (
	ClassificationNeedsBuild       Classification = "needs-build"
	ClassificationAlreadySatisfied Classification = "already-satisfied"
	ClassificationSkip             Classification = "skip"
	ClassificationExpectFail       Classification = "expect-fail"
)

type ExclusionState string

const (
	ExclusionSkip ExclusionState = "skip"
	ExclusionFail ExclusionState = "fail"
	ExclusionPass ExclusionState = "pass"
)

// Feature pseudo-names accepted in requests.
const (
	FeatureCore    = "core"
	FeatureDefault = "default"
	FeatureAll     = "*"
)
