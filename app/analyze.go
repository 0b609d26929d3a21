// Package app wires the components built under internal/ into the single
// analyze() use case (§3/§4 "Component Map", §6 External Interfaces).
// Grounded on service/dead_code_service.go's Analyze(ctx, req) orchestration
// shape (select-based ctx cancellation between steps, warnings/errors
// accumulated onto a response envelope) and app/analyze_usecase.go's
// use-case struct wrapping a sequence of narrower services behind one
// Execute method; generalized from the teacher's fixed
// complexity+dead-code pipeline to this package's scan -> graph -> reach
// -> finders -> ignore pipeline (§4.1-§4.9).
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/entrypoint"
	"github.com/kiron0/unreach/internal/finders"
	"github.com/kiron0/unreach/internal/graph"
	"github.com/kiron0/unreach/internal/ignore"
	"github.com/kiron0/unreach/internal/jsconfig"
	"github.com/kiron0/unreach/internal/manifest"
	"github.com/kiron0/unreach/internal/reachability"
)

// AnalyzeUseCase orchestrates the full pipeline behind the public Analyze
// entry point: config loading, entry-point detection, graph construction,
// reachability, the eleven finders and the ignore filter (§4).
type AnalyzeUseCase struct{}

// NewAnalyzeUseCase constructs an AnalyzeUseCase. It holds no state; the
// type exists so the use case can be wired the same way as the teacher's
// other *UseCase types (app/analyze_usecase.go) and extended later without
// changing callers.
func NewAnalyzeUseCase() *AnalyzeUseCase {
	return &AnalyzeUseCase{}
}

// Execute runs analyze() end to end (§6) and returns a populated
// domain.ScanResult. incremental enables the cache-aware graph build path
// (§4.5 step 2); the CLI's analyze command passes its --incremental flag,
// which defaults to true.
func (uc *AnalyzeUseCase) Execute(ctx context.Context, opts *domain.AnalyzeOptions, incremental bool) (*domain.ScanResult, error) {
	root, err := validateProjectRoot(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}
	opts.ProjectRoot = root

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := jsconfig.Load(root, opts.NoConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		opts.Config = cfg
	}

	pkg, pkgErr := manifest.LoadPackage(filepath.Join(root, "package.json"))
	if pkgErr != nil {
		opts.Warn(fmt.Sprintf("package.json not readable: %v", pkgErr))
		pkg = &manifest.Package{Raw: map[string]any{}}
	}

	var tsconfig *manifest.TSConfig
	if tc, tsErr := manifest.LoadTSConfig(filepath.Join(root, "tsconfig.json")); tsErr == nil {
		tsconfig = tc
	}

	entries := opts.CLIEntries
	if len(entries) == 0 {
		entries = cfg.EntryPoints
	}
	entryPoints, err := entrypoint.Detect(root, cfg, entries)
	if err != nil {
		return nil, err
	}
	if len(entryPoints) == 0 {
		return nil, domain.NewAnalysisError(domain.ErrEntryPointMissing, root, "no entry points detected", nil)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	built, err := graph.Build(ctx, root, cfg, entryPoints, incremental, opts)
	if err != nil {
		return nil, err
	}
	defer built.Graph.ReleaseResolutionCache()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	state := reachability.New(built.Graph).Run(entryPoints)
	defer state.Release()
	for name := range entrypoint.SeedFromScripts(root, pkg).UsedPackages {
		state.UsedPackages[name] = struct{}{}
	}

	in := &finders.Inputs{
		ProjectRoot: root,
		Graph:       built.Graph,
		State:       state,
		Config:      cfg,
		Package:     pkg,
		TSConfig:    tsconfig,
		StyleFiles:  built.StyleFiles,
	}

	result := domain.NewScanResult()

	if cfg.RuleEnabled("unusedPackages") {
		result.UnusedPackages = ignore.Filter(finders.UnusedPackages(in), cfg.Ignore.Packages, func(v domain.UnusedPackage) string { return v.Name })
	}
	if cfg.RuleEnabled("unusedImports") {
		result.UnusedImports = ignore.Filter(finders.UnusedImports(in), cfg.Ignore.Imports, func(v domain.UnusedImport) string { return v.ImportPath })
	}
	if cfg.RuleEnabled("unusedExports") {
		result.UnusedExports = ignore.Filter(finders.UnusedExports(in), cfg.Ignore.Exports, func(v domain.UnusedExport) string { return v.ExportName })
	}
	if cfg.RuleEnabled("unusedFunctions") {
		result.UnusedFunctions = ignore.Filter(finders.UnusedFunctions(in), cfg.Ignore.Functions, func(v domain.UnusedFunction) string { return v.FunctionName })
	}
	if cfg.RuleEnabled("unusedVariables") {
		result.UnusedVariables = ignore.Filter(finders.UnusedVariables(in), cfg.Ignore.Variables, func(v domain.UnusedVariable) string { return v.VariableName })
	}
	if cfg.RuleEnabled("unusedFiles") {
		result.UnusedFiles = ignore.Filter(finders.UnusedFiles(in), cfg.Ignore.Files, func(v domain.UnusedFile) string { return v.Path })
	}
	if cfg.RuleEnabled("unusedTypes") {
		result.UnusedTypes = ignore.Filter(finders.UnusedTypes(in), cfg.Ignore.Types, func(v domain.UnusedType) string { return v.TypeName })
	}
	if cfg.RuleEnabled("unusedCSSClasses") {
		result.UnusedCSSClasses = ignore.Filter(finders.UnusedCSSClasses(in), cfg.Ignore.CSSClasses, func(v domain.UnusedCSSClass) string { return v.ClassName })
	}
	if cfg.RuleEnabled("unusedAssets") {
		result.UnusedAssets = ignore.Filter(finders.UnusedAssets(in), cfg.Ignore.Assets, func(v domain.UnusedAsset) string { return v.AssetPath })
	}
	if cfg.RuleEnabled("unusedConfigs") {
		result.UnusedConfigs = finders.UnusedConfigs(in)
	}
	if cfg.RuleEnabled("unusedScripts") {
		result.UnusedScripts = finders.UnusedScripts(in)
	}

	return result, nil
}

// Analyze is the package-level convenience entry point (§6): construct an
// AnalyzeUseCase and run it in one call, for callers (cmd/unreach) that
// don't need to hold onto the use case across invocations.
func Analyze(ctx context.Context, opts *domain.AnalyzeOptions, incremental bool) (*domain.ScanResult, error) {
	return NewAnalyzeUseCase().Execute(ctx, opts, incremental)
}

func validateProjectRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", domain.NewAnalysisError(domain.ErrDirectoryNotFound, root, "cannot resolve project root", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", domain.NewAnalysisError(domain.ErrDirectoryNotFound, abs, "project root does not exist", err)
	}
	if !info.IsDir() {
		return "", domain.NewAnalysisError(domain.ErrNotADirectory, abs, "project root is not a directory", nil)
	}
	return abs, nil
}
