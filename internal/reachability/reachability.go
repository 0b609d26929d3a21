// Package reachability implements the Reachability Engine component (C8,
// §4.7): a symbol-level DFS from entry points that propagates usage
// through re-exports, namespace imports and dynamic imports. The
// teacher's own "reachability" concept (internal/analyzer/dead_code.go's
// ReachabilityAnalyzer) is CFG-level intra-function analysis, a different
// problem; only its naming idiom survives here (see DESIGN.md). The
// actual symbol-level, re-export-chasing, cycle-safe DFS is grounded on
// other_examples/ben-ranford-lopper/internal/lang/js/adapter.go's
// re-export resolver (candidate selection, visited-set cycle guard,
// trail-based provenance), adapted into the single-threaded, in-memory
// walk the spec describes (§5: no suspension points, one DFS pass).
package reachability

import (
	"path/filepath"
	"strings"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/graph"
)

// assetExtensions is the fixed set recognized for relative asset imports (§4.7).
var assetExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {},
	".ico": {}, ".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
}

// styleExtensions mirrors internal/scanner's style-file extension set.
var styleExtensions = map[string]struct{}{
	".css": {}, ".scss": {}, ".sass": {}, ".less": {}, ".styl": {},
}

// Engine runs the reachability DFS over a single DependencyGraph.
type Engine struct {
	graph *domain.DependencyGraph
	state *domain.ReachabilityState
}

// New returns an Engine over g with a fresh ReachabilityState.
func New(g *domain.DependencyGraph) *Engine {
	return &Engine{graph: g, state: domain.NewReachabilityState()}
}

// Run seeds markReachable for every entry file and returns the resulting
// state once the DFS reaches its fixed point (§4.7: "the fixed point is
// reached in one DFS").
func (e *Engine) Run(entryFiles []string) *domain.ReachabilityState {
	for _, entry := range entryFiles {
		e.markReachable(entry)
	}
	return e.state
}

// markReachable is the §4.7 entry point: idempotent on the file itself
// (children of an already-visited node are not re-walked), but symbol
// propagation into a node from a *different* importer always runs,
// because that propagation lives in processImports (called once per
// importer), not inside this guard (see the "Cyclic module graphs" design
// note).
func (e *Engine) markReachable(path string) {
	if !e.state.MarkFileReachable(path) {
		return
	}
	fs := e.graph.Get(path)
	if fs == nil {
		return
	}
	for class := range fs.CSSClasses {
		e.state.UsedCSSClasses[class] = struct{}{}
	}

	e.processImports(fs)
	e.processDynamicImports(fs)
	e.finalizeWithinFile(fs)
}

// processImports walks fs.Imports in source order, handling asset, style,
// bare-package and relative specifiers per §4.7.
func (e *Engine) processImports(fs *domain.FileSummary) {
	for _, specifier := range fs.Imports {
		detail := fs.ImportDetails[specifier]

		if graph.IsRelativeSpecifier(specifier) {
			if ext := strings.ToLower(filepath.Ext(specifier)); isAssetExt(ext) {
				abs := filepath.Clean(filepath.Join(filepath.Dir(fs.Path), specifier))
				e.state.UsedAssets[abs] = struct{}{}
				continue
			}
			if ext := strings.ToLower(filepath.Ext(specifier)); isStyleExt(ext) {
				abs := filepath.Clean(filepath.Join(filepath.Dir(fs.Path), specifier))
				if e.graph.StyleClasses[abs] != nil {
					e.state.AddUsedImport(fs.Path, specifier)
				}
				continue
			}

			resolved := graph.Resolve(e.graph, fs.Path, specifier)
			if !resolved.Ok {
				continue
			}
			e.state.AddUsedImport(fs.Path, specifier)
			e.markReachable(resolved.Path)
			if detail != nil {
				e.propagateImport(fs.Path, resolved.Path, detail)
			}
			continue
		}

		// Bare specifier: record the package name, no file resolution (§4.7).
		e.state.UsedPackages[graph.PackageName(specifier)] = struct{}{}
	}
}

func isAssetExt(ext string) bool {
	_, ok := assetExtensions[ext]
	return ok
}

func isStyleExt(ext string) bool {
	_, ok := styleExtensions[ext]
	return ok
}

// propagateImport applies the §4.7 import-kind propagation table for one
// resolved relative import edge fromFile -> targetFile, then records every
// named specifier in importedSymbols[fromFile].
func (e *Engine) propagateImport(fromFile, targetFile string, detail *domain.ImportDetail) {
	target := e.graph.Get(targetFile)
	if target == nil {
		return
	}

	for name := range detail.Specifiers {
		e.state.AddImportedSymbol(fromFile, name)
	}
	for name := range detail.TypeSpecifiers {
		e.state.AddImportedSymbol(fromFile, name)
	}

	if detail.IsNamespace {
		e.propagateNamespace(fromFile, targetFile, target)
	}
	if detail.IsDefault {
		e.propagateDefault(targetFile, target)
	}
	if !detail.IsNamespace {
		for name := range detail.Specifiers {
			e.propagateNamedValue(fromFile, targetFile, target, name)
		}
		for name := range detail.TypeSpecifiers {
			e.propagateNamedType(fromFile, targetFile, target, name)
		}
		if len(detail.Specifiers) > 0 || len(detail.TypeSpecifiers) > 0 {
			if _, hasDefault := target.Exports["default"]; hasDefault {
				e.state.AddReachableExport(targetFile, "default")
			}
		}
	}
}

// propagateNamespace implements the Namespace row of §4.7's table.
func (e *Engine) propagateNamespace(fromFile, targetFile string, target *domain.FileSummary) {
	for name := range target.Exports {
		e.state.AddReachableExport(targetFile, name)
		if _, isFn := target.Functions[name]; isFn {
			e.state.AddReachableFunction(targetFile, name)
		}
	}
	for name, rt := range target.ReExports {
		e.followReExport(targetFile, name, rt)
	}
}

// propagateDefault implements the Default row of §4.7's table.
func (e *Engine) propagateDefault(targetFile string, target *domain.FileSummary) {
	if _, ok := target.Exports["default"]; ok {
		e.state.AddReachableExport(targetFile, "default")
	}
	for name, info := range target.Exports {
		if info.Type == domain.ExportDefault {
			e.state.AddReachableExport(targetFile, name)
		}
	}
}

// propagateNamedValue implements the value-specifier half of the
// Named/type-only row of §4.7's table.
func (e *Engine) propagateNamedValue(fromFile, targetFile string, target *domain.FileSummary, name string) {
	if _, ok := target.Exports[name]; ok {
		e.state.AddReachableExport(targetFile, name)
	}
	if _, ok := target.Functions[name]; ok {
		e.state.AddReachableFunction(targetFile, name)
	}
	if _, ok := target.Types[name]; ok {
		e.state.AddUsedType(targetFile, name)
	}
	if rt, ok := target.ReExports[name]; ok {
		e.followReExport(targetFile, name, rt)
		return
	}
	if _, hasStar := target.ReExports["*"]; hasStar {
		e.chaseExportStar(targetFile, target, name)
	}
}

// propagateNamedType implements the type-specifier half of the
// Named/type-only row: same rules, skipping reachableFunctions, always
// recording usedTypes.
func (e *Engine) propagateNamedType(fromFile, targetFile string, target *domain.FileSummary, name string) {
	if _, ok := target.Exports[name]; ok {
		e.state.AddReachableExport(targetFile, name)
	}
	e.state.AddUsedType(targetFile, name)
	if rt, ok := target.ReExports[name]; ok {
		e.followReExport(targetFile, name, rt)
		return
	}
	if _, hasStar := target.ReExports["*"]; hasStar {
		e.chaseExportStar(targetFile, target, name)
	}
}

// followReExport resolves a re-export target and marks the corresponding
// exported name reachable there, recursively chasing further re-export
// chains (e.g. a barrel re-exporting another barrel).
func (e *Engine) followReExport(fromFile, localName string, rt domain.ReExportTarget) {
	if rt.ExportedName == "*" {
		e.chaseWildcardTarget(fromFile, rt.SourceFile)
		return
	}
	resolved := graph.Resolve(e.graph, fromFile, rt.SourceFile)
	if !resolved.Ok {
		return
	}
	e.markReachable(resolved.Path)
	src := e.graph.Get(resolved.Path)
	if src == nil {
		return
	}
	name := rt.ExportedName
	if _, ok := src.Exports[name]; ok {
		e.state.AddReachableExport(resolved.Path, name)
	}
	if _, ok := src.Functions[name]; ok {
		e.state.AddReachableFunction(resolved.Path, name)
	}
	if _, ok := src.Types[name]; ok {
		e.state.AddUsedType(resolved.Path, name)
	}
	if nested, ok := src.ReExports[name]; ok {
		e.followReExport(resolved.Path, name, nested)
	}
}

// chaseExportStar implements "If G contains an export *, scan G's relative
// imports; for each whose resolved file defines a as an export (or
// function), mark it reachable transitively (one hop)" (§4.7).
func (e *Engine) chaseExportStar(fromFile string, g *domain.FileSummary, name string) {
	for _, specifier := range g.Imports {
		if !graph.IsRelativeSpecifier(specifier) {
			continue
		}
		resolved := graph.Resolve(e.graph, fromFile, specifier)
		if !resolved.Ok {
			continue
		}
		candidate := e.graph.Get(resolved.Path)
		if candidate == nil {
			continue
		}
		_, isExport := candidate.Exports[name]
		_, isFunc := candidate.Functions[name]
		if !isExport && !isFunc {
			continue
		}
		e.markReachable(resolved.Path)
		if isExport {
			e.state.AddReachableExport(resolved.Path, name)
		}
		if isFunc {
			e.state.AddReachableFunction(resolved.Path, name)
		}
	}
}

// chaseWildcardTarget resolves a bare `export * from "X"` target and marks
// every one of its exports reachable (one hop), used when a namespace
// import's re-export chasing or a type/value propagation meets a "*" key.
func (e *Engine) chaseWildcardTarget(fromFile, specifier string) {
	resolved := graph.Resolve(e.graph, fromFile, specifier)
	if !resolved.Ok {
		return
	}
	e.markReachable(resolved.Path)
	target := e.graph.Get(resolved.Path)
	if target == nil {
		return
	}
	for name := range target.Exports {
		e.state.AddReachableExport(resolved.Path, name)
		if _, isFn := target.Functions[name]; isFn {
			e.state.AddReachableFunction(resolved.Path, name)
		}
	}
}

// processDynamicImports implements §4.7's dynamic-import handling.
func (e *Engine) processDynamicImports(fs *domain.FileSummary) {
	for _, di := range fs.DynamicImports {
		switch {
		case di.IsTemplateLiteral:
			prefix := templateLiteralPrefix(di.Path)
			if prefix == "" {
				continue
			}
			if graph.IsRelativeSpecifier(prefix) {
				continue
			}
			e.state.UsedPackages[graph.PackageName(prefix)] = struct{}{}
		case strings.HasPrefix(di.Path, "__dirname") || strings.HasPrefix(di.Path, "__filename"):
			rest := stripDirnameSentinel(di.Path)
			if rest == "" {
				continue
			}
			specifier := "." + rest
			e.handleStaticSpecifier(fs.Path, specifier)
		default:
			e.handleStaticSpecifier(fs.Path, di.Path)
		}
	}
}

// handleStaticSpecifier treats a resolved dynamic-import path like a
// static relative/bare specifier, using namespace-style propagation since
// the set of destructured names is unknown (§1 Non-goals: ambiguous
// references are treated as used).
func (e *Engine) handleStaticSpecifier(fromFile, specifier string) {
	if !graph.IsRelativeSpecifier(specifier) {
		e.state.UsedPackages[graph.PackageName(specifier)] = struct{}{}
		return
	}
	resolved := graph.Resolve(e.graph, fromFile, specifier)
	if !resolved.Ok {
		return
	}
	e.state.AddUsedImport(fromFile, specifier)
	e.markReachable(resolved.Path)
	target := e.graph.Get(resolved.Path)
	if target == nil {
		return
	}
	e.propagateNamespace(fromFile, resolved.Path, target)
}

func templateLiteralPrefix(raw string) string {
	if idx := strings.Index(raw, "${"); idx >= 0 {
		raw = raw[:idx]
	}
	raw = strings.Trim(raw, "`")
	return raw
}

func stripDirnameSentinel(raw string) string {
	for _, sentinel := range []string{"__dirname", "__filename"} {
		if strings.HasPrefix(raw, sentinel) {
			rest := raw[len(sentinel):]
			rest = strings.TrimPrefix(rest, "+")
			rest = strings.Trim(rest, "'\"` ")
			if !strings.HasPrefix(rest, "/") {
				return ""
			}
			return rest
		}
	}
	return ""
}

// finalizeWithinFile implements §4.7's "after import propagation, within F
// itself" paragraph: entry-point function seeding, local-call/export
// reachable-function marking, JSX local-name and re-propagation handling,
// and recording variable references.
func (e *Engine) finalizeWithinFile(fs *domain.FileSummary) {
	if fs.IsEntryPoint {
		for name := range fs.Functions {
			e.state.AddReachableFunction(fs.Path, name)
		}
	}

	for name := range fs.Functions {
		if _, exported := fs.Exports[name]; exported && e.state.HasReachableExport(fs.Path, name) {
			e.state.AddReachableFunction(fs.Path, name)
		}
	}

	for name := range fs.FunctionCalls {
		if _, ok := fs.Functions[name]; ok {
			e.state.AddReachableFunction(fs.Path, name)
		}
	}

	for name := range fs.JSXElements {
		if _, ok := fs.Functions[name]; ok {
			e.state.AddReachableFunction(fs.Path, name)
		}
		e.rePropagateUsedSpecifier(fs, name)
	}
	for name := range fs.FunctionCalls {
		e.rePropagateUsedSpecifier(fs, name)
	}
	for name := range fs.VariableReferences {
		e.rePropagateUsedSpecifier(fs, name)
	}

	for name := range fs.VariableReferences {
		e.state.AddReachableVariable(fs.Path, name)
	}
}

// rePropagateUsedSpecifier implements the second propagation pass for a
// name used as a call, reference or JSX tag that matches one of fs's
// imported symbols: it re-runs the named-specifier propagation (including
// re-export/export-star chasing) into the specifier's resolved file.
func (e *Engine) rePropagateUsedSpecifier(fs *domain.FileSummary, name string) {
	imported, ok := e.state.ImportedSymbols[fs.Path]
	if !ok {
		return
	}
	if _, used := imported[name]; !used {
		return
	}
	specifier, detail := findSpecifierFor(fs, name)
	if specifier == "" || !graph.IsRelativeSpecifier(specifier) {
		return
	}
	resolved := graph.Resolve(e.graph, fs.Path, specifier)
	if !resolved.Ok {
		return
	}
	target := e.graph.Get(resolved.Path)
	if target == nil {
		return
	}
	if _, isType := detail.TypeSpecifiers[name]; isType {
		e.propagateNamedType(fs.Path, resolved.Path, target, name)
		return
	}
	e.propagateNamedValue(fs.Path, resolved.Path, target, name)
}

func findSpecifierFor(fs *domain.FileSummary, name string) (string, *domain.ImportDetail) {
	for specifier, detail := range fs.ImportDetails {
		if _, ok := detail.Specifiers[name]; ok {
			return specifier, detail
		}
		if _, ok := detail.TypeSpecifiers[name]; ok {
			return specifier, detail
		}
	}
	return "", nil
}
