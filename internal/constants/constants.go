package constants

// Tool identity and ambient settings file naming.
const (
	// ToolName is the name of this tool.
	ToolName = "unreach"

	// CacheDirName is the on-disk cache directory created at the project root (§3/§4.4/§6).
	CacheDirName = ".unreach"

	// ManifestFileName is the cache manifest file inside CacheDirName (§6).
	ManifestFileName = "cache.json"

	// ASTCacheDirName holds one JSON blob per cached FileSummary (§6).
	ASTCacheDirName = "asts"

	// JSConfigFileNameJS is the JS variant of the analysis config file (§4.10/§6).
	JSConfigFileNameJS = "unreach.config.js"

	// JSConfigFileNameTS is the TS variant of the analysis config file.
	JSConfigFileNameTS = "unreach.config.ts"

	// SettingsFileName is the tool's own ambient settings file (SPEC_FULL §1/§3),
	// distinct from the JS/TS analysis config above.
	SettingsFileName = ".unreach.yaml"

	// EnvVarPrefix is the prefix for ambient-settings environment variables.
	EnvVarPrefix = "UNREACH"
)

// Cache policy constants (§4.3/§4.4).
const (
	// CacheStalenessWindowDays is the maximum age of a cached AST blob before
	// it is treated as a miss even on a hash match.
	CacheStalenessWindowDays = 7

	// MaxASTCacheBytes is the eviction threshold for the asts/ directory.
	MaxASTCacheBytes = 100 * 1024 * 1024

	// ASTCacheEvictFraction is the fraction of oldest blobs removed once
	// MaxASTCacheBytes is exceeded.
	ASTCacheEvictFraction = 0.25
)

// DefaultMaxFileSizeBytes is the default parse-size ceiling (§4.3/§6).
const DefaultMaxFileSizeBytes = 10 * 1024 * 1024

// DefaultWatchRateLimit is the default scans-per-second ceiling (§6); the
// watch loop itself lives outside the core (§1).
const DefaultWatchRateLimit = 1

// MaxParseConcurrency bounds the AST-parsing batch regardless of CPU count (§5).
const MaxParseConcurrency = 8
