package reachability

import (
	"testing"

	"github.com/kiron0/unreach/domain"
)

// newFile is a small constructor keeping the table-driven cases below
// readable: it builds a FileSummary for path and runs setup against it.
func newFile(path string, setup func(*domain.FileSummary)) *domain.FileSummary {
	fs := domain.NewFileSummary(path)
	if setup != nil {
		setup(fs)
	}
	return fs
}

// TestRun_DirectImport mirrors scenario S1 (§8): an entry point imports a
// named export from a sibling file; both files become reachable and only
// the imported name is marked as a reachable export.
func TestRun_DirectImport(t *testing.T) {
	g := domain.NewDependencyGraph()

	entry := newFile("/proj/entry.js", func(fs *domain.FileSummary) {
		fs.AddImportSpecifier("./util.js", "used", false, false, false, 1, 0)
	})
	util := newFile("/proj/util.js", func(fs *domain.FileSummary) {
		fs.Exports["used"] = domain.ExportInfo{Type: domain.ExportNamed}
		fs.Exports["unused"] = domain.ExportInfo{Type: domain.ExportNamed}
	})
	g.AddFile(entry)
	g.AddFile(util)
	g.MarkEntryPoint(entry.Path)

	state := New(g).Run([]string{entry.Path})

	if !state.IsFileReachable(entry.Path) || !state.IsFileReachable(util.Path) {
		t.Fatalf("expected both files reachable")
	}
	if !state.HasReachableExport(util.Path, "used") {
		t.Errorf("expected %q reachable on util.js", "used")
	}
	if state.HasReachableExport(util.Path, "unused") {
		t.Errorf("did not expect %q reachable on util.js", "unused")
	}
}

// TestRun_ReExportChain mirrors scenario S2: entry -> barrel (export {x}
// from target) -> target. The name must be marked reachable on the
// original defining file, not just the barrel.
func TestRun_ReExportChain(t *testing.T) {
	g := domain.NewDependencyGraph()

	entry := newFile("/proj/entry.js", func(fs *domain.FileSummary) {
		fs.AddImportSpecifier("./barrel.js", "widget", false, false, false, 1, 0)
	})
	barrel := newFile("/proj/barrel.js", func(fs *domain.FileSummary) {
		fs.ReExports["widget"] = domain.ReExportTarget{SourceFile: "./target.js", ExportedName: "widget"}
	})
	target := newFile("/proj/target.js", func(fs *domain.FileSummary) {
		fs.Exports["widget"] = domain.ExportInfo{Type: domain.ExportNamed}
	})
	g.AddFile(entry)
	g.AddFile(barrel)
	g.AddFile(target)
	g.MarkEntryPoint(entry.Path)

	state := New(g).Run([]string{entry.Path})

	if !state.IsFileReachable(target.Path) {
		t.Fatalf("expected target.js reachable through the re-export chain")
	}
	if !state.HasReachableExport(target.Path, "widget") {
		t.Errorf("expected widget reachable on target.js")
	}
}

// TestRun_NamespaceStarReExport mirrors scenario S3: a namespace import of
// a barrel that re-exports everything (`export * from`) must mark every
// export of the wildcard target reachable.
func TestRun_NamespaceStarReExport(t *testing.T) {
	g := domain.NewDependencyGraph()

	entry := newFile("/proj/entry.js", func(fs *domain.FileSummary) {
		fs.AddImportSpecifier("./barrel.js", "ns", false, true, false, 1, 0)
	})
	barrel := newFile("/proj/barrel.js", func(fs *domain.FileSummary) {
		fs.ReExports["*"] = domain.ReExportTarget{SourceFile: "./target.js", ExportedName: "*"}
	})
	target := newFile("/proj/target.js", func(fs *domain.FileSummary) {
		fs.Exports["a"] = domain.ExportInfo{Type: domain.ExportNamed}
		fs.Exports["b"] = domain.ExportInfo{Type: domain.ExportNamed}
	})
	g.AddFile(entry)
	g.AddFile(barrel)
	g.AddFile(target)
	g.MarkEntryPoint(entry.Path)

	state := New(g).Run([]string{entry.Path})

	if !state.HasReachableExport(target.Path, "a") || !state.HasReachableExport(target.Path, "b") {
		t.Fatalf("expected every export of the wildcard target reachable")
	}
}

// TestRun_UnreachableFileStaysUnreached ensures a file with no import edge
// from any reachable file is left out of ReachableFiles entirely.
func TestRun_UnreachableFileStaysUnreached(t *testing.T) {
	g := domain.NewDependencyGraph()

	entry := newFile("/proj/entry.js", nil)
	orphan := newFile("/proj/orphan.js", func(fs *domain.FileSummary) {
		fs.Exports["x"] = domain.ExportInfo{Type: domain.ExportNamed}
	})
	g.AddFile(entry)
	g.AddFile(orphan)
	g.MarkEntryPoint(entry.Path)

	state := New(g).Run([]string{entry.Path})

	if state.IsFileReachable(orphan.Path) {
		t.Errorf("orphan.js should not be reachable")
	}
}

// TestRun_CyclicModuleGraph checks the documented cyclic-graph behavior:
// symbol propagation from an importer still runs even though the target
// of the cycle was already visited first (markReachable's per-file guard
// only blocks re-walking the target's own body, not propagation into it).
func TestRun_CyclicModuleGraph(t *testing.T) {
	g := domain.NewDependencyGraph()

	a := newFile("/proj/a.js", func(fs *domain.FileSummary) {
		fs.AddImportSpecifier("./b.js", "fromB", false, false, false, 1, 0)
	})
	b := newFile("/proj/b.js", func(fs *domain.FileSummary) {
		fs.AddImportSpecifier("./a.js", "fromA", false, false, false, 1, 0)
		fs.Exports["fromB"] = domain.ExportInfo{Type: domain.ExportNamed}
	})
	a.Exports["fromA"] = domain.ExportInfo{Type: domain.ExportNamed}
	g.AddFile(a)
	g.AddFile(b)
	g.MarkEntryPoint(a.Path)

	state := New(g).Run([]string{a.Path})

	if !state.HasReachableExport(b.Path, "fromB") {
		t.Errorf("expected fromB reachable on b.js")
	}
	if !state.HasReachableExport(a.Path, "fromA") {
		t.Errorf("expected fromA reachable on a.js despite the cycle")
	}
}

// TestRun_DynamicImportTemplateLiteral checks that a template-literal
// dynamic import records only the bare package-name prefix, with no file
// resolution attempted.
func TestRun_DynamicImportTemplateLiteral(t *testing.T) {
	g := domain.NewDependencyGraph()
	entry := newFile("/proj/entry.js", func(fs *domain.FileSummary) {
		fs.DynamicImports = append(fs.DynamicImports, domain.DynamicImport{
			Path:              "lodash/${name}",
			IsTemplateLiteral: true,
		})
	})
	g.AddFile(entry)
	g.MarkEntryPoint(entry.Path)

	state := New(g).Run([]string{entry.Path})

	if _, ok := state.UsedPackages["lodash"]; !ok {
		t.Errorf("expected lodash recorded as used from the template-literal prefix")
	}
}

// TestRun_SecondPropagationPass checks that a named import used only as a
// function call (not referenced directly as a bare variable) still
// triggers the second propagation pass into the defining file.
func TestRun_SecondPropagationPass(t *testing.T) {
	g := domain.NewDependencyGraph()

	entry := newFile("/proj/entry.js", func(fs *domain.FileSummary) {
		fs.AddImportSpecifier("./util.js", "helper", false, false, false, 1, 0)
		fs.FunctionCalls["helper"] = struct{}{}
	})
	util := newFile("/proj/util.js", func(fs *domain.FileSummary) {
		fs.Exports["helper"] = domain.ExportInfo{Type: domain.ExportNamed}
		fs.Functions["helper"] = domain.Declaration{IsExported: true, Kind: domain.DeclFunction}
	})
	g.AddFile(entry)
	g.AddFile(util)
	g.MarkEntryPoint(entry.Path)

	state := New(g).Run([]string{entry.Path})

	if !state.HasReachableFunction(util.Path, "helper") {
		t.Errorf("expected helper reachable as a function on util.js")
	}
}
