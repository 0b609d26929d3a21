package domain

import "github.com/kiron0/unreach/internal/constants"

// IgnoreConfig lists glob suppressions per finder category (§4.9, §6).
type IgnoreConfig struct {
	Files      []string `json:"files,omitempty"`
	Packages   []string `json:"packages,omitempty"`
	Exports    []string `json:"exports,omitempty"`
	Functions  []string `json:"functions,omitempty"`
	Variables  []string `json:"variables,omitempty"`
	Imports    []string `json:"imports,omitempty"`
	Types      []string `json:"types,omitempty"`
	CSSClasses []string `json:"cssClasses,omitempty"`
	Assets     []string `json:"assets,omitempty"`
}

// RulesConfig toggles each finder; all default to true (§4.10).
type RulesConfig struct {
	UnusedPackages   *bool `json:"unusedPackages,omitempty"`
	UnusedImports    *bool `json:"unusedImports,omitempty"`
	UnusedExports    *bool `json:"unusedExports,omitempty"`
	UnusedFunctions  *bool `json:"unusedFunctions,omitempty"`
	UnusedVariables  *bool `json:"unusedVariables,omitempty"`
	UnusedFiles      *bool `json:"unusedFiles,omitempty"`
	UnusedConfigs    *bool `json:"unusedConfigs,omitempty"`
	UnusedScripts    *bool `json:"unusedScripts,omitempty"`
	UnusedTypes      *bool `json:"unusedTypes,omitempty"`
	UnusedCSSClasses *bool `json:"unusedCSSClasses,omitempty"`
	UnusedAssets     *bool `json:"unusedAssets,omitempty"`
}

// FixConfig is accepted and validated but is a placeholder — §1 Non-goals:
// "no refactoring (auto-fix is a placeholder)".
type FixConfig struct {
	Enabled     bool `json:"enabled,omitempty"`
	Backup      bool `json:"backup,omitempty"`
	Interactive bool `json:"interactive,omitempty"`
}

// TestFileDetectionConfig controls whether test files are scanned at all (§4.1).
type TestFileDetectionConfig struct {
	Enabled  *bool    `json:"enabled,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
}

// Config is the validated, defaulted shape of unreach.config.{js,ts} (§6).
type Config struct {
	Ignore            IgnoreConfig            `json:"ignore,omitempty"`
	EntryPoints       []string                `json:"entryPoints,omitempty"`
	ExcludePatterns   []string                `json:"excludePatterns,omitempty"`
	Rules             RulesConfig             `json:"rules,omitempty"`
	Fix               FixConfig               `json:"fix,omitempty"`
	TestFileDetection TestFileDetectionConfig `json:"testFileDetection,omitempty"`
	MaxFileSize       int64                   `json:"maxFileSize,omitempty"`
	WatchRateLimit    float64                 `json:"watchRateLimit,omitempty"`
}

// DefaultTestFilePatterns mirrors common JS/TS test-file conventions.
var DefaultTestFilePatterns = []string{
	"**/*.test.*", "**/*.spec.*", "**/__tests__/**", "**/test/**",
}

// DefaultConfig returns the configuration defaults named in §4.10/§6: all
// eleven rules true, a default test-pattern list, 10 MiB max file size and
// a 1 scan/sec watch rate limit.
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			UnusedPackages:   BoolPtr(true),
			UnusedImports:    BoolPtr(true),
			UnusedExports:    BoolPtr(true),
			UnusedFunctions:  BoolPtr(true),
			UnusedVariables:  BoolPtr(true),
			UnusedFiles:      BoolPtr(true),
			UnusedConfigs:    BoolPtr(true),
			UnusedScripts:    BoolPtr(true),
			UnusedTypes:      BoolPtr(true),
			UnusedCSSClasses: BoolPtr(true),
			UnusedAssets:     BoolPtr(true),
		},
		TestFileDetection: TestFileDetectionConfig{
			Enabled:  BoolPtr(false),
			Patterns: append([]string(nil), DefaultTestFilePatterns...),
		},
		MaxFileSize:    constants.DefaultMaxFileSizeBytes,
		WatchRateLimit: constants.DefaultWatchRateLimit,
	}
}

// BoolPtr returns a pointer to v; used throughout Config for tri-state
// (unset/true/false) optional boolean fields.
func BoolPtr(v bool) *bool { return &v }

// BoolOr dereferences p, returning def when p is nil.
func BoolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// RuleEnabled reports whether the named rule (matching the RulesConfig JSON
// tag, e.g. "unusedPackages") is enabled, defaulting to true per §4.10.
func (c *Config) RuleEnabled(name string) bool {
	switch name {
	case "unusedPackages":
		return BoolOr(c.Rules.UnusedPackages, true)
	case "unusedImports":
		return BoolOr(c.Rules.UnusedImports, true)
	case "unusedExports":
		return BoolOr(c.Rules.UnusedExports, true)
	case "unusedFunctions":
		return BoolOr(c.Rules.UnusedFunctions, true)
	case "unusedVariables":
		return BoolOr(c.Rules.UnusedVariables, true)
	case "unusedFiles":
		return BoolOr(c.Rules.UnusedFiles, true)
	case "unusedConfigs":
		return BoolOr(c.Rules.UnusedConfigs, true)
	case "unusedScripts":
		return BoolOr(c.Rules.UnusedScripts, true)
	case "unusedTypes":
		return BoolOr(c.Rules.UnusedTypes, true)
	case "unusedCSSClasses":
		return BoolOr(c.Rules.UnusedCSSClasses, true)
	case "unusedAssets":
		return BoolOr(c.Rules.UnusedAssets, true)
	default:
		return true
	}
}

// MergeDefaults fills zero-valued fields of c from DefaultConfig() (§4.10:
// "Missing fields are filled from defaults").
func (c *Config) MergeDefaults() {
	def := DefaultConfig()
	if c.Rules.UnusedPackages == nil {
		c.Rules.UnusedPackages = def.Rules.UnusedPackages
	}
	if c.Rules.UnusedImports == nil {
		c.Rules.UnusedImports = def.Rules.UnusedImports
	}
	if c.Rules.UnusedExports == nil {
		c.Rules.UnusedExports = def.Rules.UnusedExports
	}
	if c.Rules.UnusedFunctions == nil {
		c.Rules.UnusedFunctions = def.Rules.UnusedFunctions
	}
	if c.Rules.UnusedVariables == nil {
		c.Rules.UnusedVariables = def.Rules.UnusedVariables
	}
	if c.Rules.UnusedFiles == nil {
		c.Rules.UnusedFiles = def.Rules.UnusedFiles
	}
	if c.Rules.UnusedConfigs == nil {
		c.Rules.UnusedConfigs = def.Rules.UnusedConfigs
	}
	if c.Rules.UnusedScripts == nil {
		c.Rules.UnusedScripts = def.Rules.UnusedScripts
	}
	if c.Rules.UnusedTypes == nil {
		c.Rules.UnusedTypes = def.Rules.UnusedTypes
	}
	if c.Rules.UnusedCSSClasses == nil {
		c.Rules.UnusedCSSClasses = def.Rules.UnusedCSSClasses
	}
	if c.Rules.UnusedAssets == nil {
		c.Rules.UnusedAssets = def.Rules.UnusedAssets
	}
	if c.TestFileDetection.Enabled == nil {
		c.TestFileDetection.Enabled = def.TestFileDetection.Enabled
	}
	if len(c.TestFileDetection.Patterns) == 0 {
		c.TestFileDetection.Patterns = def.TestFileDetection.Patterns
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = def.MaxFileSize
	}
	if c.WatchRateLimit <= 0 {
		c.WatchRateLimit = def.WatchRateLimit
	}
}
