// Package entrypoint implements the Entry-Point Detector and Build-Tool
// Seeder components (C6/C7, §4.6): computing the initial reachability
// seed set and, separately, the packages/config-files a project's
// package.json scripts imply are used. No teacher file performs
// entry-point auto-detection (jscan always takes explicit file
// arguments); this package is grounded on the general "read package.json,
// recurse into nested values" idiom of app/file_helper.go and on
// internal/config/config.go's upward-directory-search style, generalized
// to the spec's field-walk/glob/convention rules.
package entrypoint

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kiron0/unreach/domain"
	"github.com/kiron0/unreach/internal/manifest"
)

// sourceDirNames is the fixed candidate set of source directories used by
// both the build-directory source-path rewrite and the common-pattern
// scan (§4.6 steps 2 and 4).
var sourceDirNames = []string{"src", "source", "lib", "app", "packages", "modules"}

// buildExtensionRewrite maps a build-path extension to the candidate
// source extensions tried, in order, during the source-path rewrite
// (§4.6 step 2).
var buildExtensionRewrite = map[string][]string{
	".js":  {".tsx", ".ts", ".jsx", ".js"},
	".jsx": {".tsx", ".jsx"},
	".mjs": {".mts", ".mjs"},
	".cjs": {".cts", ".cjs"},
}

var buildDirSegment = regexp.MustCompile(`(^|/)(dist|build|out|output|\.next|\.nuxt|\.output|bundle|compiled|coverage|reports)(/|$)`)

// commonEntryNames is the §4.6 step 4 common-pattern base name list.
var commonEntryNames = []string{"index", "main", "app", "server", "client", "entry", "start"}
var commonEntryExts = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// frameworkGlobCap is the per-pattern cap on framework-convention matches
// (§4.6 step 5, §6 "framework entry-point ceilings" open question).
const frameworkGlobCap = 10

// includeGlobCap is the per-include-glob cap on tsconfig matches (§4.6
// step 3, §6 open question).
const includeGlobCap = 5

// frameworkGlobs is the fixed set of framework-convention globs scanned
// in step 5, each capped at frameworkGlobCap matches.
var frameworkGlobs = []string{
	"pages/**/*.{ts,tsx,js,jsx}",
	"app/**/*.{ts,tsx,js,jsx}",
	"pages.config.*",
	"nuxt.config.*",
	"src/routes/**/*.svelte",
	"src/pages/**/*.astro",
	"gatsby-node.*",
	"app/routes/**/*.{ts,tsx,js,jsx}",
	"src/main.{ts,tsx,js,jsx}",
	"src/main.ts",
	"src/app/**/*.ts",
}

// Detect computes the deduplicated entry-point seed set (§4.6). If cliOrConfigEntries
// is non-empty, it is used verbatim (step 1) and nothing else is scanned.
func Detect(projectRoot string, cfg *domain.Config, cliOrConfigEntries []string) ([]string, error) {
	if len(cliOrConfigEntries) > 0 {
		deduped := dedupeAbs(projectRoot, cliOrConfigEntries)
		for _, abs := range deduped {
			if _, err := os.Stat(abs); err != nil {
				return nil, domain.NewAnalysisError(domain.ErrEntryPointMissing, abs, "entry point does not exist", err)
			}
		}
		return deduped, nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		abs := absPath(projectRoot, path)
		if _, ok := seen[abs]; ok {
			return
		}
		if _, err := os.Stat(abs); err != nil {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}

	// Step 2: package manifest fields.
	if pm, err := manifest.LoadPackage(filepath.Join(projectRoot, "package.json")); err == nil {
		for _, raw := range pm.EntryPointStrings() {
			add(rewriteBuildPath(projectRoot, raw))
		}
	}

	// Step 3: tsconfig.json files[]/include[].
	if tc, err := manifest.LoadTSConfig(filepath.Join(projectRoot, "tsconfig.json")); err == nil {
		for _, f := range tc.Files {
			add(f)
		}
		for _, pattern := range tc.Include {
			matches, _ := doublestar.Glob(os.DirFS(projectRoot), pattern)
			for i, m := range matches {
				if i >= includeGlobCap {
					break
				}
				add(m)
			}
		}
	}

	// Step 4: common entry patterns under each source directory, then root.
	dirs := append(append([]string{}, sourceDirNames...), ".")
	for _, dir := range dirs {
		found := false
		for _, name := range commonEntryNames {
			for _, ext := range commonEntryExts {
				candidate := filepath.Join(dir, name+ext)
				if fileExists(projectRoot, candidate) {
					add(candidate)
					found = true
				}
				candidate = filepath.Join(dir, name, "index"+ext)
				if fileExists(projectRoot, candidate) {
					add(candidate)
					found = true
				}
			}
			if found {
				break
			}
		}
	}

	// Step 5: framework-convention files, capped per pattern.
	for _, pattern := range frameworkGlobs {
		matches, _ := doublestar.Glob(os.DirFS(projectRoot), pattern)
		for i, m := range matches {
			if i >= frameworkGlobCap {
				break
			}
			add(m)
		}
	}

	// Step 6: every file matching the configured test patterns.
	if cfg != nil {
		for _, pattern := range cfg.TestFileDetection.Patterns {
			matches, _ := doublestar.Glob(os.DirFS(projectRoot), pattern)
			for _, m := range matches {
				add(m)
			}
		}
	}

	return out, nil
}

func absPath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(root, p))
}

func dedupeAbs(root string, paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	var out []string
	for _, p := range paths {
		abs := absPath(root, p)
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out
}

func fileExists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, rel))
	return err == nil
}

// rewriteBuildPath implements §4.6 step 2's source-path rewrite: if the
// resolved manifest path lies under a detected build-directory segment,
// try replacing that segment with each source directory name and
// swapping the extension per buildExtensionRewrite, returning the first
// candidate that exists on disk, else the original build path.
func rewriteBuildPath(projectRoot, raw string) string {
	if !buildDirSegment.MatchString(raw) {
		return raw
	}
	ext := filepath.Ext(raw)
	candidateExts, ok := buildExtensionRewrite[ext]
	if !ok {
		return raw
	}
	loc := buildDirSegment.FindStringSubmatchIndex(raw)
	if loc == nil {
		return raw
	}
	// loc[4:6] is the captured directory-name group.
	before := raw[:loc[4]]
	after := raw[loc[5]:]

	for _, srcDir := range sourceDirNames {
		rewritten := before + srcDir + after
		base := strings.TrimSuffix(rewritten, ext)
		for _, candExt := range candidateExts {
			candidate := base + candExt
			if fileExists(projectRoot, candidate) {
				return candidate
			}
		}
	}
	return raw
}

// --- Build-tool seeder (C7, §4.6) -----------------------------------

// toolSet is the fixed set of recognized build tools (§4.6).
var toolSet = []string{
	"tsup", "vite", "webpack", "rollup", "esbuild", "prettier", "eslint",
	"jest", "vitest", "vitepress", "tsx", "terser",
}

// toolConfigFiles maps a recognized tool to its canonical configuration
// file glob candidates.
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
	"tsx":       {},
	"terser":    {},
}

// toolWordRe caches a compiled word-boundary regex per tool name, shared
// by SeedUsedPackages (what got invoked) and MentionsRecognizedTool (used
// to suppress an unused-script report) per §9's intentional double use of
// the same pattern set.
var toolWordRe = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(toolSet))
	for _, tool := range toolSet {
		m[tool] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tool) + `\b`)
	}
	return m
}()

var tscRe = regexp.MustCompile(`\b(tsc|typescript)\b`)
var terserOrMinifyRe = regexp.MustCompile(`\b(terser|minify)\b`)

// SeedResult is C7's output: packages to add to usedPackages, and
// project-relative configuration file paths to mark reachable.
type SeedResult struct {
	UsedPackages     map[string]struct{}
	ReachableConfigs []string
}

// SeedFromScripts reads pm.Scripts(), concatenates every command, and for
// each recognized tool mentioned as a whole word adds the tool's package
// name to UsedPackages and its canonical config files (when present on
// disk) to ReachableConfigs (§4.6).
func SeedFromScripts(projectRoot string, pm *manifest.Package) *SeedResult {
	result := &SeedResult{UsedPackages: make(map[string]struct{})}
	if pm == nil {
		return result
	}
	var combined strings.Builder
	for _, cmd := range pm.Scripts() {
		combined.WriteString(cmd)
		combined.WriteString(" ")
	}
	text := combined.String()

	for _, tool := range toolSet {
		if toolWordRe[tool].MatchString(text) {
			result.UsedPackages[tool] = struct{}{}
			for _, cfgFile := range toolConfigFiles[tool] {
				if fileExists(projectRoot, cfgFile) {
					result.ReachableConfigs = append(result.ReachableConfigs, cfgFile)
				}
			}
		}
	}

	if tscRe.MatchString(text) {
		result.UsedPackages["typescript"] = struct{}{}
		if fileExists(projectRoot, "tsconfig.json") {
			result.ReachableConfigs = append(result.ReachableConfigs, "tsconfig.json")
		}
	}

	if toolWordRe["tsup"].MatchString(text) {
		result.UsedPackages["typescript"] = struct{}{}
		if peekTsupConfigMentionsMinify(projectRoot) || terserOrMinifyRe.MatchString(text) {
			result.UsedPackages["terser"] = struct{}{}
		}
	}

	return result
}

func peekTsupConfigMentionsMinify(projectRoot string) bool {
	for _, name := range []string{"tsup.config.ts", "tsup.config.js"} {
		data, err := os.ReadFile(filepath.Join(projectRoot, name))
		if err != nil {
			continue
		}
		if terserOrMinifyRe.Match(data) {
			return true
		}
	}
	return false
}

// MentionsRecognizedTool reports whether command mentions any recognized
// tool name, tsc/typescript, as a whole word — the same pattern set used
// by SeedFromScripts, reused deliberately per §9 to suppress an
// unused-script report for scripts that merely invoke a known tool.
func MentionsRecognizedTool(command string) bool {
	if tscRe.MatchString(command) {
		return true
	}
	for _, tool := range toolSet {
		if toolWordRe[tool].MatchString(command) {
			return true
		}
	}
	return false
}
