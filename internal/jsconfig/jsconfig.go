// Package jsconfig implements the Configuration Loader component (C11,
// §4.10): sandboxed evaluation of unreach.config.{js,ts} with goja, schema
// validation (§6) and default-merging. No teacher file evaluates
// user-supplied JavaScript (jscan's own config is a static YAML/JSON file
// loaded by internal/config/config.go via viper); the sandboxing technique
// — a fresh goja.Runtime per call, an interrupt-based execution budget, no
// Node builtins registered — is grounded on the general "untrusted script,
// bounded VM" idiom used across the pack wherever goja appears (see
// DESIGN.md for the specific citation), generalized to the CommonJS-style
// `module.exports = {...}` shape §6 specifies.
package jsconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dop251/goja"

	"github.com/kiron0/unreach/domain"
)

const executionBudget = 2 * time.Second

// Load reads at most one of unreach.config.js / unreach.config.ts at
// projectRoot, evaluates it in a sandboxed goja runtime, validates the
// result against §6's schema and merges defaults. A missing file returns
// DefaultConfig() with no error. noConfig, when true, skips loading
// entirely and returns DefaultConfig() (§4.10: "--no-config").
func Load(projectRoot string, noConfig bool) (*domain.Config, error) {
	if noConfig {
		return domain.DefaultConfig(), nil
	}

	path, source, ok := findConfigFile(projectRoot)
	if !ok {
		return domain.DefaultConfig(), nil
	}

	raw, err := evaluate(path, source)
	if err != nil {
		return nil, domain.NewAnalysisError(domain.ErrConfigError, path, "evaluation failed", err)
	}

	cfg, err := validateAndBuild(raw)
	if err != nil {
		return nil, domain.NewAnalysisError(domain.ErrConfigError, path, err.Error(), nil)
	}
	cfg.MergeDefaults()
	return cfg, nil
}

// DefaultFileName is where `unreach init` scaffolds a new config file.
const DefaultFileName = "unreach.config.js"

// Template returns a documented starter unreach.config.js matching
// domain.DefaultConfig()'s defaults (§4.10/§6), grounded on
// internal/config.GetFullConfigTemplate's "every field present, commented"
// idiom, generalized from jscan's JSON template to this package's
// CommonJS module.exports shape.
func Template() string {
	return `// unreach configuration
// https://github.com/kiron0/unreach
module.exports = {
  // Glob patterns to exclude from the dependency graph entirely (§4.1).
  excludePatterns: [],

  // Explicit entry points. Leave empty to let unreach auto-detect them
  // from package.json "main"/"module"/"exports"/"bin", tsconfig "include",
  // common file-name conventions and framework directory conventions (§4.6).
  entryPoints: [],

  // Suppress individual findings by name/path glob, per finder category (§4.9).
  ignore: {
    files: [],
    packages: [],
    exports: [],
    functions: [],
    variables: [],
    imports: [],
    types: [],
    cssClasses: [],
    assets: [],
  },

  // Toggle individual finders. All default to true.
  rules: {
    unusedPackages: true,
    unusedImports: true,
    unusedExports: true,
    unusedFunctions: true,
    unusedVariables: true,
    unusedFiles: true,
    unusedConfigs: true,
    unusedScripts: true,
    unusedTypes: true,
    unusedCSSClasses: true,
    unusedAssets: true,
  },

  // Skip test files during scanning (§4.1).
  testFileDetection: {
    enabled: false,
    patterns: ["**/*.test.*", "**/*.spec.*", "**/__tests__/**", "**/test/**"],
  },

  // Files larger than this (bytes) are skipped with a warning (§4.3).
  maxFileSize: 10 * 1024 * 1024,

  // Placeholder: auto-fix is not implemented (§1 Non-goals).
  fix: {
    enabled: false,
    backup: false,
    interactive: false,
  },
}
`
}

func findConfigFile(projectRoot string) (path string, source []byte, ok bool) {
	for _, name := range []string{"unreach.config.js", "unreach.config.ts"} {
		p := filepath.Join(projectRoot, name)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, true
		}
	}
	return "", nil, false
}

// evaluate runs source in a fresh sandboxed runtime and returns the value
// assigned to module.exports, as a generic Go value (map[string]any etc).
// No Node builtins, filesystem or network access is exposed (§4.10): the
// runtime only ever sees an empty global object plus `module`/`exports`.
func evaluate(path string, source []byte) (any, error) {
	vm := goja.New()

	timer := time.AfterFunc(executionBudget, func() {
		vm.Interrupt("unreach.config execution budget exceeded")
	})
	defer timer.Stop()

	moduleObj := vm.NewObject()
	exportsObj := vm.NewObject()
	_ = moduleObj.Set("exports", exportsObj)
	_ = vm.Set("module", moduleObj)
	_ = vm.Set("exports", exportsObj)

	wrapped := stripTypeAnnotations(string(source))
	if _, err := vm.RunScript(path, wrapped); err != nil {
		return nil, err
	}

	exported := moduleObj.Get("exports")
	if exported == nil || goja.IsUndefined(exported) {
		return nil, fmt.Errorf("unreach.config: module.exports was not assigned")
	}
	return exported.Export(), nil
}

// stripTypeAnnotations is a minimal best-effort pass allowing
// unreach.config.ts to declare `export default {...}` or typed object
// literals without a full TypeScript compiler: it rewrites a leading
// `export default` to `module.exports =`, which covers the common
// single-object-literal config shape (§6) without pulling in a TS
// transpiler dependency for a sandboxed, schema-validated config file.
func stripTypeAnnotations(src string) string {
	const marker = "export default"
	for i := 0; i+len(marker) <= len(src); i++ {
		if src[i:i+len(marker)] == marker {
			return src[:i] + "module.exports =" + src[i+len(marker):]
		}
	}
	return src
}

func validateAndBuild(raw any) (*domain.Config, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unreach.config: expected an object, got %T", raw)
	}

	cfg := &domain.Config{}

	if v, ok := m["ignore"]; ok {
		ignoreMap, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unreach.config: ignore must be an object")
		}
		ic, err := buildIgnore(ignoreMap)
		if err != nil {
			return nil, err
		}
		cfg.Ignore = *ic
	}

	if v, ok := m["entryPoints"]; ok {
		s, err := stringSlice("entryPoints", v)
		if err != nil {
			return nil, err
		}
		cfg.EntryPoints = s
	}

	if v, ok := m["excludePatterns"]; ok {
		s, err := stringSlice("excludePatterns", v)
		if err != nil {
			return nil, err
		}
		cfg.ExcludePatterns = s
	}

	if v, ok := m["rules"]; ok {
		rulesMap, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unreach.config: rules must be an object")
		}
		rc, err := buildRules(rulesMap)
		if err != nil {
			return nil, err
		}
		cfg.Rules = *rc
	}

	if v, ok := m["fix"]; ok {
		fixMap, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unreach.config: fix must be an object")
		}
		cfg.Fix = domain.FixConfig{
			Enabled:     boolField(fixMap, "enabled"),
			Backup:      boolField(fixMap, "backup"),
			Interactive: boolField(fixMap, "interactive"),
		}
	}

	if v, ok := m["testFileDetection"]; ok {
		tfdMap, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unreach.config: testFileDetection must be an object")
		}
		tfd := domain.TestFileDetectionConfig{}
		if e, ok := tfdMap["enabled"]; ok {
			b, ok := e.(bool)
			if !ok {
				return nil, fmt.Errorf("unreach.config: testFileDetection.enabled must be a boolean")
			}
			tfd.Enabled = domain.BoolPtr(b)
		}
		if p, ok := tfdMap["patterns"]; ok {
			s, err := stringSlice("testFileDetection.patterns", p)
			if err != nil {
				return nil, err
			}
			tfd.Patterns = s
		}
		cfg.TestFileDetection = tfd
	}

	if v, ok := m["maxFileSize"]; ok {
		n, ok := v.(int64)
		if !ok {
			if f, isFloat := v.(float64); isFloat {
				n = int64(f)
			} else {
				return nil, fmt.Errorf("unreach.config: maxFileSize must be a positive number")
			}
		}
		if n <= 0 {
			return nil, fmt.Errorf("unreach.config: maxFileSize must be a positive number")
		}
		cfg.MaxFileSize = n
	}

	if v, ok := m["watchRateLimit"]; ok {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("unreach.config: watchRateLimit must be a positive number")
		}
		if f <= 0 {
			return nil, fmt.Errorf("unreach.config: watchRateLimit must be a positive number")
		}
		cfg.WatchRateLimit = f
	}

	for key := range m {
		if !inSet(validTopLevelKeys, key) {
			return nil, fmt.Errorf("unreach.config: unknown top-level key %q", key)
		}
	}

	return cfg, nil
}

var validTopLevelKeys = map[string]struct{}{
	"ignore": {}, "entryPoints": {}, "excludePatterns": {}, "rules": {},
	"fix": {}, "testFileDetection": {}, "maxFileSize": {}, "watchRateLimit": {},
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

var ignoreFields = []string{
	"files", "packages", "exports", "functions", "variables",
	"imports", "types", "cssClasses", "assets",
}

func buildIgnore(m map[string]any) (*domain.IgnoreConfig, error) {
	ic := &domain.IgnoreConfig{}
	for _, field := range ignoreFields {
		v, ok := m[field]
		if !ok {
			continue
		}
		s, err := stringSlice("ignore."+field, v)
		if err != nil {
			return nil, err
		}
		switch field {
		case "files":
			ic.Files = s
		case "packages":
			ic.Packages = s
		case "exports":
			ic.Exports = s
		case "functions":
			ic.Functions = s
		case "variables":
			ic.Variables = s
		case "imports":
			ic.Imports = s
		case "types":
			ic.Types = s
		case "cssClasses":
			ic.CSSClasses = s
		case "assets":
			ic.Assets = s
		}
	}
	return ic, nil
}

var ruleFields = []string{
	"unusedPackages", "unusedImports", "unusedExports", "unusedFunctions",
	"unusedVariables", "unusedFiles", "unusedConfigs", "unusedScripts",
	"unusedTypes", "unusedCSSClasses", "unusedAssets",
}

func buildRules(m map[string]any) (*domain.RulesConfig, error) {
	rc := &domain.RulesConfig{}
	for _, field := range ruleFields {
		v, ok := m[field]
		if !ok {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("unreach.config: rules.%s must be a boolean", field)
		}
		ptr := domain.BoolPtr(b)
		switch field {
		case "unusedPackages":
			rc.UnusedPackages = ptr
		case "unusedImports":
			rc.UnusedImports = ptr
		case "unusedExports":
			rc.UnusedExports = ptr
		case "unusedFunctions":
			rc.UnusedFunctions = ptr
		case "unusedVariables":
			rc.UnusedVariables = ptr
		case "unusedFiles":
			rc.UnusedFiles = ptr
		case "unusedConfigs":
			rc.UnusedConfigs = ptr
		case "unusedScripts":
			rc.UnusedScripts = ptr
		case "unusedTypes":
			rc.UnusedTypes = ptr
		case "unusedCSSClasses":
			rc.UnusedCSSClasses = ptr
		case "unusedAssets":
			rc.UnusedAssets = ptr
		}
	}
	return rc, nil
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func stringSlice(field string, v any) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("unreach.config: %s must be an array of strings", field)
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("unreach.config: %s must be an array of strings", field)
		}
		out = append(out, s)
	}
	return out, nil
}
