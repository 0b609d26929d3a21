package finders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/manifest"
)

func newInputs(root string) (*Inputs, *domain.DependencyGraph, *domain.ReachabilityState) {
	g := domain.NewDependencyGraph()
	state := domain.NewReachabilityState()
	in := &Inputs{
		ProjectRoot: root,
		Graph:       g,
		State:       state,
		Config:      domain.DefaultConfig(),
	}
	return in, g, state
}

func TestUnusedPackages(t *testing.T) {
	in, _, state := newInputs(t.TempDir())
	in.Package = &manifest.Package{Raw: map[string]any{
		"dependencies":    map[string]any{"react": "^18.0.0", "lodash": "^4.0.0"},
		"devDependencies": map[string]any{"@types/node": "^20.0.0", "typescript": "^5.0.0"},
	}}
	state.UsedPackages["react"] = struct{}{}
	state.UsedPackages["typescript"] = struct{}{}

	got := UnusedPackages(in)

	names := make(map[string]bool)
	for _, p := range got {
		names[p.Name] = true
	}
	if !names["lodash"] {
		t.Errorf("expected lodash reported unused, got %v", got)
	}
	if names["react"] {
		t.Errorf("react is used, should not be reported")
	}
	if names["@types/node"] {
		t.Errorf("@types/node should be suppressed because typescript is used")
	}
}

func TestUnusedImports(t *testing.T) {
	in, g, state := newInputs(t.TempDir())
	entry := filepath.Join(in.ProjectRoot, "entry.ts")
	fs := domain.NewFileSummary(entry)
	fs.Imports = append(fs.Imports, "./used", "./unused")
	g.AddFile(fs)
	state.MarkFileReachable(entry)
	state.AddUsedImport(entry, "./used")

	got := UnusedImports(in)
	if len(got) != 1 || got[0].ImportPath != "./unused" {
		t.Errorf("UnusedImports() = %v, want only ./unused", got)
	}
}

func TestUnusedImports_UnreachableFileSkipped(t *testing.T) {
	in, g, _ := newInputs(t.TempDir())
	entry := filepath.Join(in.ProjectRoot, "orphan.ts")
	fs := domain.NewFileSummary(entry)
	fs.Imports = append(fs.Imports, "./whatever")
	g.AddFile(fs)

	if got := UnusedImports(in); len(got) != 0 {
		t.Errorf("UnusedImports() = %v, want empty for an unreachable file", got)
	}
}

func TestUnusedExports(t *testing.T) {
	in, g, state := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "util.ts")
	fs := domain.NewFileSummary(path)
	fs.Exports["used"] = domain.ExportInfo{Type: domain.ExportNamed}
	fs.Exports["unused"] = domain.ExportInfo{Type: domain.ExportNamed}
	fs.Exports["Component"] = domain.ExportInfo{Type: domain.ExportNamed}
	g.AddFile(fs)
	state.AddReachableExport(path, "used")

	got := UnusedExports(in)
	if len(got) != 1 || got[0].ExportName != "unused" {
		t.Errorf("UnusedExports() = %v, want only 'unused' ('Component' suppressed by the uppercase heuristic)", got)
	}
}

func TestUnusedExports_EntryPointSkipped(t *testing.T) {
	in, g, _ := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "index.ts")
	fs := domain.NewFileSummary(path)
	fs.IsEntryPoint = true
	fs.Exports["anything"] = domain.ExportInfo{Type: domain.ExportNamed}
	g.AddFile(fs)

	if got := UnusedExports(in); len(got) != 0 {
		t.Errorf("UnusedExports() = %v, want empty for an entry point", got)
	}
}

func TestUnusedExports_ConfigFileSkipped(t *testing.T) {
	in, g, _ := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "vite.config.ts")
	fs := domain.NewFileSummary(path)
	fs.Exports["default"] = domain.ExportInfo{Type: domain.ExportDefault}
	g.AddFile(fs)

	if got := UnusedExports(in); len(got) != 0 {
		t.Errorf("UnusedExports() = %v, want empty for a .config. file", got)
	}
}

// TestUnusedExports_OrphanedFileStillReported covers a file that nothing
// imports at all (never marked reachable): §4.8 lists five exclusions for
// UnusedExports and reachability is not one of them, so an export on a
// fully orphaned file must still be reported, same as UnusedFunctions.
func TestUnusedExports_OrphanedFileStillReported(t *testing.T) {
	in, g, _ := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "orphan.ts")
	fs := domain.NewFileSummary(path)
	fs.Exports["neverImported"] = domain.ExportInfo{Type: domain.ExportNamed}
	g.AddFile(fs)

	got := UnusedExports(in)
	if len(got) != 1 || got[0].ExportName != "neverImported" {
		t.Errorf("UnusedExports() = %v, want 'neverImported' reported even though the file is unreachable", got)
	}
}

func TestUnusedFunctions(t *testing.T) {
	in, g, state := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "lib.ts")
	fs := domain.NewFileSummary(path)
	fs.Functions["helper"] = domain.Declaration{IsExported: false}
	fs.Functions["dead"] = domain.Declaration{IsExported: false}
	g.AddFile(fs)
	state.AddReachableFunction(path, "helper")

	got := UnusedFunctions(in)
	if len(got) != 1 || got[0].FunctionName != "dead" {
		t.Errorf("UnusedFunctions() = %v, want only 'dead'", got)
	}
}

func TestUnusedFunctions_CalledAsValueSkipped(t *testing.T) {
	in, g, _ := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "lib.ts")
	fs := domain.NewFileSummary(path)
	fs.Functions["helper"] = domain.Declaration{IsExported: false}
	fs.FunctionCalls["helper"] = struct{}{}
	g.AddFile(fs)

	if got := UnusedFunctions(in); len(got) != 0 {
		t.Errorf("UnusedFunctions() = %v, want empty when called", got)
	}
}

func TestUnusedVariables(t *testing.T) {
	in, g, state := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "lib.ts")
	fs := domain.NewFileSummary(path)
	fs.Variables["used"] = domain.Declaration{IsExported: false}
	fs.Variables["exported"] = domain.Declaration{IsExported: true}
	fs.Variables["dead"] = domain.Declaration{IsExported: false}
	fs.VariableReferences["used"] = struct{}{}
	g.AddFile(fs)
	state.MarkFileReachable(path)

	got := UnusedVariables(in)
	if len(got) != 1 || got[0].VariableName != "dead" {
		t.Errorf("UnusedVariables() = %v, want only 'dead'", got)
	}
}

func TestUnusedFiles(t *testing.T) {
	in, g, state := newInputs(t.TempDir())
	reachable := filepath.Join(in.ProjectRoot, "reachable.ts")
	orphan := filepath.Join(in.ProjectRoot, "orphan.ts")
	pkgJSON := filepath.Join(in.ProjectRoot, "package.json")

	g.AddFile(domain.NewFileSummary(reachable))
	g.AddFile(domain.NewFileSummary(orphan))
	g.AddFile(domain.NewFileSummary(pkgJSON))
	state.MarkFileReachable(reachable)

	got := UnusedFiles(in)
	if len(got) != 1 || got[0].Path != orphan {
		t.Errorf("UnusedFiles() = %v, want only orphan.ts (package.json fixed-excluded)", got)
	}
}

func TestUnusedFiles_ConventionGlobSkipped(t *testing.T) {
	in, g, _ := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "app", "layout.tsx")
	g.AddFile(domain.NewFileSummary(path))

	if got := UnusedFiles(in); len(got) != 0 {
		t.Errorf("UnusedFiles() = %v, want app/layout.tsx excluded by convention", got)
	}
}

func TestUnusedTypes(t *testing.T) {
	in, g, state := newInputs(t.TempDir())
	path := filepath.Join(in.ProjectRoot, "types.ts")
	fs := domain.NewFileSummary(path)
	fs.Types["Used"] = domain.Declaration{IsExported: false}
	fs.Types["Dead"] = domain.Declaration{IsExported: false}
	g.AddFile(fs)
	state.MarkFileReachable(path)
	state.AddUsedType(path, "Used")

	got := UnusedTypes(in)
	if len(got) != 1 || got[0].TypeName != "Dead" {
		t.Errorf("UnusedTypes() = %v, want only 'Dead'", got)
	}
}

func TestUnusedCSSClasses(t *testing.T) {
	in, g, state := newInputs(t.TempDir())
	stylePath := filepath.Join(in.ProjectRoot, "styles.css")
	g.SetStyleClasses(stylePath, map[string]struct{}{"used": {}, "dead": {}})
	state.UsedCSSClasses["used"] = struct{}{}

	got := UnusedCSSClasses(in)
	if len(got) != 1 || got[0].ClassName != "dead" {
		t.Errorf("UnusedCSSClasses() = %v, want only 'dead'", got)
	}
}

func TestUnusedAssets(t *testing.T) {
	root := t.TempDir()
	in, g, state := newInputs(root)

	if err := os.WriteFile(filepath.Join(root, "logo.png"), []byte("stub"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "hero.png"), []byte("stub"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	path := filepath.Join(root, "app.ts")
	fs := domain.NewFileSummary(path)
	fs.Imports = append(fs.Imports, "./logo.png", "./hero.png")
	g.AddFile(fs)
	state.UsedAssets[filepath.Join(root, "logo.png")] = struct{}{}

	got := UnusedAssets(in)
	if len(got) != 1 || got[0].AssetPath != filepath.Join(root, "hero.png") {
		t.Errorf("UnusedAssets() = %v, want only hero.png", got)
	}
	if got[0].Kind != domain.AssetImage {
		t.Errorf("UnusedAssets()[0].Kind = %v, want image", got[0].Kind)
	}
}

func TestUnusedConfigs_PackageJSONKeys(t *testing.T) {
	in, _, _ := newInputs(t.TempDir())
	in.Package = &manifest.Package{Raw: map[string]any{
		"name":        "demo",
		"version":     "1.0.0",
		"description": "",
	}}

	got := UnusedConfigs(in)
	found := false
	for _, c := range got {
		if c.File == "package.json" && c.Key == "description" {
			found = true
		}
	}
	if !found {
		t.Errorf("UnusedConfigs() = %v, want package.json/description flagged", got)
	}
}

func TestUnusedConfigs_TSConfigCompilerOptionKeys(t *testing.T) {
	in, _, _ := newInputs(t.TempDir())
	in.TSConfig = &manifest.TSConfig{
		Raw:             map[string]any{},
		CompilerOptions: map[string]any{"baseUrl": ""},
	}

	got := UnusedConfigs(in)
	found := false
	for _, c := range got {
		if c.File == "tsconfig.json" && c.Key == "compilerOptions.baseUrl" {
			found = true
		}
	}
	if !found {
		t.Errorf("UnusedConfigs() = %v, want tsconfig.json/compilerOptions.baseUrl flagged", got)
	}
}

func TestUnusedScripts(t *testing.T) {
	in, _, state := newInputs(t.TempDir())
	in.Package = &manifest.Package{Raw: map[string]any{
		"scripts": map[string]any{
			"build":       "tsup src/index.ts",
			"test":        "vitest run",
			"prerelease":  "npm run release-prep",
			"release-prep": "echo preparing",
			"deploy":      "node scripts/deploy.js",
			"lintconfigs": "eslint .",
		},
	}}
	state.UsedPackages["eslint"] = struct{}{}

	got := UnusedScripts(in)

	names := make(map[string]bool)
	for _, s := range got {
		names[s.Name] = true
	}
	if names["build"] || names["test"] {
		t.Errorf("build/test are in the common allowlist, should not be reported, got %v", got)
	}
	if names["release-prep"] {
		t.Errorf("release-prep is referenced via 'npm run release-prep', should not be reported")
	}
	if !names["deploy"] {
		t.Errorf("expected deploy reported unused (not referenced, no recognized tool), got %v", got)
	}
	if names["lintconfigs"] {
		t.Errorf("lintconfigs invokes eslint, a recognized tool, should not be reported")
	}
}

func TestUnusedScripts_NoPackageReturnsNil(t *testing.T) {
	in, _, _ := newInputs(t.TempDir())
	if got := UnusedScripts(in); got != nil {
		t.Errorf("UnusedScripts() = %v, want nil with no package.json", got)
	}
}
