package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portsmith/internal/adapters"
	"portsmith/internal/core"
	"portsmith/internal/policies"
	"portsmith/internal/ports"
	"portsmith/internal/types"
)

func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	started := s.now()
	project, plan, req, hints, err := s.resolvePlan(ctx, req)
	if err != nil {
		s.observeFailure("resolve", err)
		return ResolveResult{}, err
	}
	if err := s.writePlan(req.OutputDir, plan); err != nil {
		return ResolveResult{}, err
	}
	s.observePlan("resolve", plan, started)
	return ResolveResult{
		ProjectName: project.Name,
		Plan:        plan,
		OutputDir:   req.OutputDir,
		Hints:       hints,
	}, nil
}

// resolvePlan loads the project (if any), merges its requests with the
// command line ones and runs the resolver. It returns the request with
// project defaults applied.
func (s Service) resolvePlan(ctx context.Context, req ResolveRequest) (types.ProjectManifest, types.OrderedPlan, ResolveRequest, []string, error) {
	var project types.ProjectManifest
	var hints []string
	projectPath := strings.TrimSpace(req.ProjectPath)
	if projectPath == "" && len(req.Packages) == 0 {
		projectPath = discoverProject(s.FS)
	}
	if projectPath != "" {
		loaded, err := adapters.NewProjectFileAdapter(s.FS).LoadProject(projectPath)
		if err != nil {
			return project, types.OrderedPlan{}, req, nil, err
		}
		project = loaded
		hints = checkResolveDefaultsHints(req, project.Defaults)
		req = applyProjectDefaults(req, project, filepath.Dir(projectPath))
	}

	roots := append([]types.Request(nil), project.Dependencies...)
	for _, raw := range req.Packages {
		request, err := core.ParsePackageSpec(raw)
		if err != nil {
			return project, types.OrderedPlan{}, req, nil, err
		}
		roots = append(roots, request)
	}
	if len(roots) == 0 {
		return project, types.OrderedPlan{}, req, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no packages requested; pass package specs or a project file")
	}
	if strings.TrimSpace(req.PortsDir) == "" {
		return project, types.OrderedPlan{}, req, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("ports directory is required")
	}
	if strings.TrimSpace(req.Triplet) == "" {
		return project, types.OrderedPlan{}, req, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("target triplet is required")
	}
	policy, err := policies.ParsePrecedence(req.Precedence)
	if err != nil {
		return project, types.OrderedPlan{}, req, nil, err
	}

	var installed ports.InstalledStateOracle
	if req.InstalledPath != "" {
		installed = adapters.NewInstalledDBAdapter(s.FS, req.InstalledPath)
	}
	resolver := core.NewResolver(
		adapters.NewPortTreeAdapter(s.FS, req.PortsDir, req.OverlayPorts...),
		adapters.NewBaselineFileAdapter(s.FS, req.BaselinePath, req.BaselineName, project.Overrides),
		adapters.NewTripletDirAdapter(s.FS, req.TripletDirs...),
		installed,
	)
	resolver.Policy = policy
	resolver.AllowUnsupported = req.AllowUnsupported

	log.Ctx(ctx).Debug().
		Int("roots", len(roots)).
		Str("triplet", req.Triplet).
		Str("host_triplet", req.HostTriplet).
		Str("precedence", string(policy)).
		Msg("resolving")
	plan, err := resolver.Resolve(ctx, roots, req.Triplet, req.HostTriplet)
	if err != nil {
		return project, types.OrderedPlan{}, req, nil, err
	}
	return project, plan, req, hints, nil
}

func (s Service) writePlan(outputDir string, plan types.OrderedPlan) error {
	if strings.TrimSpace(outputDir) == "" {
		return nil
	}
	return adapters.NewPlanFileAdapter(s.FS, outputDir).WritePlan(plan)
}
