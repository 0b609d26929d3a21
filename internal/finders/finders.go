// Package finders implements the eleven Unused<Kind> detectors (C9, §4.8).
// Each finder is a pure function over the already-built domain.DependencyGraph
// and domain.ReachabilityState, plus a few on-disk checks: existence tests
// for assets and tool config files, a read of reachable sources when looking
// for decorators, and the script seeding UnusedConfigs runs. Grounded on internal/analyzer/unused_code.go's
// DetectUnusedImports/DetectUnusedExports/DetectOrphanFiles/
// DetectUnusedExportedFunctions (generalized from file/import-level checks
// to the spec's symbol-level, ReachabilityState-driven rules) and on
// other_examples/ben-ranford-lopper/internal/lang/js/adapter.go's
// buildUnusedExports/countUsedExports shape for the surface-vs-used
// bookkeeping pattern.
package finders

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/entrypoint"
	"github.com/kiron0/unreach/internal/manifest"
)

// Inputs bundles everything a finder needs (§4.8).
type Inputs struct {
	ProjectRoot string
	Graph       *domain.DependencyGraph
	State       *domain.ReachabilityState
	Config      *domain.Config
	Package     *manifest.Package
	TSConfig    *manifest.TSConfig
	StyleFiles  []string
}

func (in *Inputs) rel(path string) string {
	r, err := filepath.Rel(in.ProjectRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

func sortedFiles(files map[string]*domain.FileSummary) []string {
	out := make([]string, 0, len(files))
	for k := range files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UnusedPackages implements §4.8's rule: dependencies ∪ devDependencies ∪
// peerDependencies, minus usedPackages, with the @types/* TypeScript carve-out.
func UnusedPackages(in *Inputs) []domain.UnusedPackage {
	if in.Package == nil {
		return nil
	}
	typescriptUsed := false
	if _, ok := in.State.UsedPackages["typescript"]; ok {
		typescriptUsed = true
	}
	if _, ok := in.Package.AllDependencyNames()["typescript"]; ok {
		typescriptUsed = true
	}

	var out []domain.UnusedPackage
	for name := range in.Package.AllDependencyNames() {
		if _, used := in.State.UsedPackages[name]; used {
			continue
		}
		if strings.HasPrefix(name, "@types/") && typescriptUsed {
			continue
		}
		out = append(out, domain.UnusedPackage{Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UnusedImports implements §4.8: a relative, non-asset specifier is
// unused if it never resolved into usedImports[file], or resolved outside
// reachableFiles.
func UnusedImports(in *Inputs) []domain.UnusedImport {
	var out []domain.UnusedImport
	for _, path := range sortedFiles(in.Graph.Files) {
		if !in.State.IsFileReachable(path) {
			continue
		}
		fs := in.Graph.Files[path]
		used := in.State.UsedImports[path]
		for _, specifier := range fs.Imports {
			if !isRelative(specifier) {
				continue
			}
			ext := strings.ToLower(filepath.Ext(specifier))
			_, isImage := imageExts[ext]
			_, isFont := fontExts[ext]
			if isImage || isFont {
				if _, err := os.Stat(filepath.Join(filepath.Dir(fs.Path), specifier)); err == nil {
					continue
				}
			}
			if used != nil {
				if _, ok := used[specifier]; ok {
					continue
				}
			}
			out = append(out, domain.UnusedImport{File: path, ImportPath: specifier})
		}
	}
	return out
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".."
}

var configFileRe = regexp.MustCompile(`\.config\.[^./]+$`)

func isConfigFile(name string) bool {
	return configFileRe.MatchString(name)
}

func isVitepressTheme(relPath string) bool {
	return strings.Contains(relPath, ".vitepress/theme/")
}

// UnusedExports implements §4.8's export-level rule with its five exclusions.
func UnusedExports(in *Inputs) []domain.UnusedExport {
	var out []domain.UnusedExport
	for _, path := range sortedFiles(in.Graph.Files) {
		fs := in.Graph.Files[path]
		if fs.IsEntryPoint {
			continue
		}
		rel := in.rel(path)
		base := filepath.Base(path)
		if isConfigFile(base) {
			continue
		}
		if isVitepressTheme(rel) {
			continue
		}

		names := make([]string, 0, len(fs.Exports))
		for name := range fs.Exports {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if name == "*" {
				continue
			}
			if in.State.HasReachableExport(path, name) {
				continue
			}
			if isUppercaseHeuristic(name) {
				continue
			}
			if name == "default" && strings.Contains(rel, ".vitepress") {
				continue
			}
			out = append(out, domain.UnusedExport{File: path, ExportName: name})
		}
	}
	return out
}

func isUppercaseHeuristic(name string) bool {
	if name == "" {
		return false
	}
	r := rune(name[0])
	return r >= 'A' && r <= 'Z'
}

// UnusedFunctions implements §4.8's function-level rule.
func UnusedFunctions(in *Inputs) []domain.UnusedFunction {
	var out []domain.UnusedFunction
	for _, path := range sortedFiles(in.Graph.Files) {
		fs := in.Graph.Files[path]
		if fs.IsEntryPoint {
			continue
		}
		names := make([]string, 0, len(fs.Functions))
		for name := range fs.Functions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			decl := fs.Functions[name]
			if in.State.HasReachableFunction(path, name) {
				continue
			}
			if decl.IsExported && in.State.HasReachableExport(path, name) {
				continue
			}
			if _, ok := fs.FunctionCalls[name]; ok {
				continue
			}
			if _, ok := fs.VariableReferences[name]; ok {
				continue
			}
			if _, ok := fs.JSXElements[name]; ok {
				continue
			}
			out = append(out, domain.UnusedFunction{File: path, FunctionName: name})
		}
	}
	return out
}

// UnusedVariables implements §4.8: reachable files only, non-exported
// variables not referenced.
func UnusedVariables(in *Inputs) []domain.UnusedVariable {
	var out []domain.UnusedVariable
	for _, path := range sortedFiles(in.Graph.Files) {
		if !in.State.IsFileReachable(path) {
			continue
		}
		fs := in.Graph.Files[path]
		names := make([]string, 0, len(fs.Variables))
		for name := range fs.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			decl := fs.Variables[name]
			if decl.IsExported {
				continue
			}
			if in.State.HasReachableVariable(path, name) {
				continue
			}
			if _, ok := fs.VariableReferences[name]; ok {
				continue
			}
			out = append(out, domain.UnusedVariable{File: path, VariableName: name})
		}
	}
	return out
}

// unusedFilesFixedSet is §4.8's fixed basename exclusion list.
var unusedFilesFixedSet = map[string]struct{}{
	"tsconfig.json": {}, "package.json": {}, ".gitignore": {}, ".npmignore": {},
	"README.md": {}, "LICENSE": {},
}

var unusedFileConventionGlobs = []string{
	"**/.vitepress/theme/index.*",
	"app/{layout,page,loading,error,not-found}.*",
	"**/app/{layout,page,loading,error,not-found}.*",
	"routes/**.{tsx,ts,jsx,js}",
	"**/routes/**.{tsx,ts,jsx,js}",
}

// UnusedFiles implements §4.8: every file not in reachableFiles, minus the
// fixed basename set and convention-based globs.
func UnusedFiles(in *Inputs) []domain.UnusedFile {
	var out []domain.UnusedFile
	for _, path := range sortedFiles(in.Graph.Files) {
		if in.State.IsFileReachable(path) {
			continue
		}
		base := filepath.Base(path)
		if _, ok := unusedFilesFixedSet[base]; ok {
			continue
		}
		rel := in.rel(path)
		if matchesAnyConvention(rel) {
			continue
		}
		out = append(out, domain.UnusedFile{Path: path})
	}
	return out
}

func matchesAnyConvention(rel string) bool {
	for _, pattern := range unusedFileConventionGlobs {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

var decoratorRe = regexp.MustCompile(`\s@\w+\s*\(?`)

// UnusedTypes implements §4.8's type-level rule.
func UnusedTypes(in *Inputs) []domain.UnusedType {
	var out []domain.UnusedType
	for _, path := range sortedFiles(in.Graph.Files) {
		if !in.State.IsFileReachable(path) {
			continue
		}
		fs := in.Graph.Files[path]
		if fs.IsEntryPoint {
			continue
		}
		names := make([]string, 0, len(fs.Types))
		for name := range fs.Types {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			decl := fs.Types[name]
			if in.State.HasUsedType(path, name) {
				continue
			}
			if decl.IsExported && in.State.HasReachableExport(path, name) {
				continue
			}
			if _, ok := fs.VariableReferences[name]; ok {
				continue
			}
			if _, ok := fs.FunctionCalls[name]; ok {
				continue
			}
			out = append(out, domain.UnusedType{File: path, TypeName: name})
		}
	}
	return out
}

// UnusedCSSClasses implements §4.8: every class defined in a style file but
// not referenced from any reachable source file.
func UnusedCSSClasses(in *Inputs) []domain.UnusedCSSClass {
	var out []domain.UnusedCSSClass
	styleFiles := make([]string, 0, len(in.Graph.StyleClasses))
	for path := range in.Graph.StyleClasses {
		styleFiles = append(styleFiles, path)
	}
	sort.Strings(styleFiles)
	for _, path := range styleFiles {
		classes := make([]string, 0, len(in.Graph.StyleClasses[path]))
		for name := range in.Graph.StyleClasses[path] {
			classes = append(classes, name)
		}
		sort.Strings(classes)
		for _, name := range classes {
			if _, ok := in.State.UsedCSSClasses[name]; ok {
				continue
			}
			out = append(out, domain.UnusedCSSClass{File: path, ClassName: name})
		}
	}
	return out
}

var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
}
var fontExts = map[string]struct{}{
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
}

func classifyAsset(path string) domain.AssetKind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExts[ext]; ok {
		return domain.AssetImage
	}
	if _, ok := fontExts[ext]; ok {
		return domain.AssetFont
	}
	return domain.AssetOther
}

// UnusedAssets implements §4.8: every relative asset import target, from
// any file in the graph (not only reachable ones — an asset imported only
// from an unreachable file resolves and exists on disk but is never added
// to usedAssets, since the reachability walk never visits that importer),
// whose resolved path exists on disk but was never recorded in usedAssets.
func UnusedAssets(in *Inputs) []domain.UnusedAsset {
	candidates := make(map[string]struct{})
	for _, fs := range in.Graph.Files {
		for _, specifier := range fs.Imports {
			if !isRelative(specifier) {
				continue
			}
			ext := strings.ToLower(filepath.Ext(specifier))
			if _, ok := imageExts[ext]; !ok {
				if _, ok := fontExts[ext]; !ok {
					continue
				}
			}
			abs := filepath.Clean(filepath.Join(filepath.Dir(fs.Path), specifier))
			if _, err := os.Stat(abs); err != nil {
				continue
			}
			candidates[abs] = struct{}{}
		}
	}

	var out []domain.UnusedAsset
	for path := range candidates {
		if _, ok := in.State.UsedAssets[path]; ok {
			continue
		}
		out = append(out, domain.UnusedAsset{AssetPath: path, Kind: classifyAsset(path)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetPath < out[j].AssetPath })
	return out
}

// UnusedConfigs implements §4.8/§6's package.json + tsconfig.json taxonomy.
func UnusedConfigs(in *Inputs) []domain.UnusedConfig {
	var out []domain.UnusedConfig
	if in.Package != nil {
		keys := in.Package.UnusedKeys()
		sort.Strings(keys)
		for _, key := range keys {
			out = append(out, domain.UnusedConfig{File: "package.json", Key: key})
		}
	}
	if in.TSConfig != nil {
		hasDecorator := anyReachableFileHasDecorator(in)
		keys := in.TSConfig.UnusedCompilerOptions(hasDecorator)
		sort.Strings(keys)
		for _, key := range keys {
			out = append(out, domain.UnusedConfig{File: "tsconfig.json", Key: "compilerOptions." + key})
		}
		top := in.TSConfig.TopLevelUnusedKeys()
		sort.Strings(top)
		for _, key := range top {
			out = append(out, domain.UnusedConfig{File: "tsconfig.json", Key: key})
		}
	}

	if in.Package != nil {
		seed := entrypoint.SeedFromScripts(in.ProjectRoot, in.Package)
		for tool, files := range toolConfigCandidates(in.ProjectRoot) {
			if _, used := seed.UsedPackages[tool]; used {
				continue
			}
			if _, used := in.State.UsedPackages[tool]; used {
				continue
			}
			for _, f := range files {
				out = append(out, domain.UnusedConfig{File: f, Key: "(unused tool config)"})
			}
		}
	}
	return out
}

func anyReachableFileHasDecorator(in *Inputs) bool {
	for path := range in.Graph.Files {
		if !in.State.IsFileReachable(path) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if decoratorRe.Match(data) {
			return true
		}
	}
	return false
}

// toolConfigCandidates mirrors entrypoint's tool->config-file table, only
// for files that exist on disk, for the UnusedConfigs cross-check (§4.8:
// "tool-specific config files ... reported as unused when the
// corresponding tool package is not in usedPackages").
func toolConfigCandidates(projectRoot string) map[string][]string {
	out := make(map[string][]string)
	for tool, files := range toolConfigFiles {
		var existing []string
		for _, f := range files {
			if _, err := os.Stat(filepath.Join(projectRoot, f)); err == nil {
				existing = append(existing, f)
			}
		}
		if len(existing) > 0 {
			out[tool] = existing
		}
	}
	return out
}

// toolConfigFiles duplicates entrypoint's table; kept local to avoid an
// exported dependency from entrypoint on an internal lookup table that
// only this finder needs in map form.
var toolConfigFiles = map[string][]string{
	"tsup":      {"tsup.config.ts", "tsup.config.js"},
	"vite":      {"vite.config.ts", "vite.config.js", "vite.config.mts"},
	"webpack":   {"webpack.config.js", "webpack.config.ts"},
	"rollup":    {"rollup.config.js", "rollup.config.mjs", "rollup.config.ts"},
	"esbuild":   {"esbuild.config.js"},
	"prettier":  {".prettierrc", ".prettierrc.json", ".prettierrc.js", "prettier.config.js"},
	"eslint":    {".eslintrc", ".eslintrc.json", ".eslintrc.js", "eslint.config.js"},
	"jest":      {"jest.config.js", "jest.config.ts"},
	"vitest":    {"vitest.config.ts", "vitest.config.js"},
	"vitepress": {".vitepress/config.ts", ".vitepress/config.js"},
}

// commonScriptAllowlist is §4.8's fixed common-script allowlist.
var commonScriptAllowlist = map[string]struct{}{
	"start": {}, "build": {}, "dev": {}, "test": {}, "lint": {}, "format": {},
	"prepare": {}, "prepublishOnly": {}, "postinstall": {}, "preinstall": {},
	"install": {}, "clean": {}, "release": {}, "watch": {}, "serve": {},
}

var scriptReferenceRe = regexp.MustCompile(`\b(?:npm|yarn|pnpm|bun)\s+run\s+([\w:.-]+)|\b(?:npm|yarn|pnpm|bun)\s+([\w:.-]+)`)

// UnusedScripts implements §4.8's script-level rule.
func UnusedScripts(in *Inputs) []domain.UnusedScript {
	if in.Package == nil {
		return nil
	}
	scripts := in.Package.Scripts()
	referenced := make(map[string]struct{})
	for _, cmd := range scripts {
		for _, m := range scriptReferenceRe.FindAllStringSubmatch(cmd, -1) {
			if m[1] != "" {
				referenced[m[1]] = struct{}{}
			}
			if m[2] != "" {
				referenced[m[2]] = struct{}{}
			}
		}
	}
	binNames := make(map[string]struct{})
	for _, name := range in.Package.BinNames() {
		binNames[name] = struct{}{}
	}

	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []domain.UnusedScript
	for _, name := range names {
		if _, ok := commonScriptAllowlist[name]; ok {
			continue
		}
		if _, ok := referenced[name]; ok {
			continue
		}
		if _, ok := binNames[name]; ok {
			continue
		}
		if entrypoint.MentionsRecognizedTool(scripts[name]) {
			continue
		}
		out = append(out, domain.UnusedScript{Name: name})
	}
	return out
}
