package app

import "portsmith/internal/types"

// ResolveRequest carries everything a resolution needs. Empty fields
// fall back to the project file's defaults.
type ResolveRequest struct {
	ProjectPath      string
	Packages         []string
	PortsDir         string
	OverlayPorts     []string
	TripletDirs      []string
	BaselinePath     string
	BaselineName     string
	InstalledPath    string
	Triplet          string
	HostTriplet      string
	OutputDir        string
	Precedence       string
	AllowUnsupported bool
}

type ResolveResult struct {
	ProjectName string
	Plan        types.OrderedPlan
	OutputDir   string
	Hints       []string
}

type CIRequest struct {
	ResolveRequest
	CIBaselinePath string
}

type CIResult struct {
	Plan             types.OrderedPlan
	OutputDir        string
	Skipped          []string
	ExpectedFailures []string
	Hints            []string
}

type ValidateRequest struct {
	PortsDir     string
	OverlayPorts []string

	// Ports limits validation to the named ports; empty means all.
	Ports []string
}

type ValidateFailure struct {
	Port    string
	Message string
}

type ValidateResult struct {
	Validated int
	Failures  []ValidateFailure
}

type InspectRequest struct {
	PlanPath string
}

type InspectResult struct {
	TargetTriplet string
	HostTriplet   string
	Total         int
	Summary       map[types.Classification]int
	Requested     []string
	Replacing     []string
	Order         []string
}

type InstallRecordRequest struct {
	PlanPath      string
	InstalledPath string
}

type InstallRecordResult struct {
	Recorded int
	Skipped  int
}
