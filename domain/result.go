package domain

// AssetKind classifies an unused asset by extension (§4.8 UnusedAssets).
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetFont  AssetKind = "font"
	AssetOther AssetKind = "other"
)

type UnusedPackage struct {
	Name string `json:"name"`
}

type UnusedImport struct {
	File      string `json:"file"`
	ImportPath string `json:"importPath"`
}

type UnusedExport struct {
	File       string `json:"file"`
	ExportName string `json:"exportName"`
}

type UnusedFunction struct {
	File         string `json:"file"`
	FunctionName string `json:"functionName"`
}

type UnusedVariable struct {
	File         string `json:"file"`
	VariableName string `json:"variableName"`
}

type UnusedFile struct {
	Path string `json:"path"`
}

type UnusedType struct {
	File     string `json:"file"`
	TypeName string `json:"typeName"`
}

type UnusedCSSClass struct {
	File      string `json:"file"`
	ClassName string `json:"className"`
}

type UnusedAsset struct {
	AssetPath string    `json:"assetPath"`
	Kind      AssetKind `json:"kind"`
}

type UnusedConfig struct {
	File string `json:"file"`
	Key  string `json:"key"`
}

type UnusedScript struct {
	Name string `json:"name"`
}

// ScanResult is the caller-facing output of analyze() (§6).
type ScanResult struct {
	UnusedPackages   []UnusedPackage   `json:"unusedPackages"`
	UnusedImports    []UnusedImport    `json:"unusedImports"`
	UnusedExports    []UnusedExport    `json:"unusedExports"`
	UnusedFunctions  []UnusedFunction  `json:"unusedFunctions"`
	UnusedVariables  []UnusedVariable  `json:"unusedVariables"`
	UnusedFiles      []UnusedFile      `json:"unusedFiles"`
	UnusedConfigs    []UnusedConfig    `json:"unusedConfigs"`
	UnusedScripts    []UnusedScript    `json:"unusedScripts"`
	UnusedTypes      []UnusedType      `json:"unusedTypes"`
	UnusedCSSClasses []UnusedCSSClass  `json:"unusedCSSClasses"`
	UnusedAssets     []UnusedAsset     `json:"unusedAssets"`

	Warnings []string `json:"warnings,omitempty"`
}

// NewScanResult returns a ScanResult with every slice initialized empty
// (never nil, so JSON serialization always emits `[]`, not `null`).
func NewScanResult() *ScanResult {
	return &ScanResult{
		UnusedPackages:   []UnusedPackage{},
		UnusedImports:    []UnusedImport{},
		UnusedExports:    []UnusedExport{},
		UnusedFunctions:  []UnusedFunction{},
		UnusedVariables:  []UnusedVariable{},
		UnusedFiles:      []UnusedFile{},
		UnusedConfigs:    []UnusedConfig{},
		UnusedScripts:    []UnusedScript{},
		UnusedTypes:      []UnusedType{},
		UnusedCSSClasses: []UnusedCSSClass{},
		UnusedAssets:     []UnusedAsset{},
		Warnings:         []string{},
	}
}

// ProgressCallback and WarningCallback are the two callback shapes exposed
// alongside analyze() (§6). err is non-nil on a file-finished callback that
// corresponds to a local ParseFailure (§7).
type ProgressCallback func(event string, path string, err error)
type WarningCallback func(warning string)

// AnalyzeOptions bundles the inputs to analyze() beyond the project root
// and Config: explicit CLI entry points, the --no-config flag, and the two
// callbacks of §6.
type AnalyzeOptions struct {
	ProjectRoot string
	Config      *Config
	NoConfig    bool
	CLIEntries  []string

	// MaxGoroutines bounds the parse-batch worker pool (§5: min(NumCPU, 8)).
	// Zero means the caller left it unset; graph.Build falls back to the
	// spec default itself.
	MaxGoroutines int

	OnProgress ProgressCallback
	OnWarning  WarningCallback
}

func (o *AnalyzeOptions) progress(event, path string, err error) {
	if o != nil && o.OnProgress != nil {
		o.OnProgress(event, path, err)
	}
}

func (o *AnalyzeOptions) warn(message string) {
	if o != nil && o.OnWarning != nil {
		o.OnWarning(message)
	}
}

// FileStarted fires the "file-started" progress callback (§6).
func (o *AnalyzeOptions) FileStarted(path string) { o.progress("file-started", path, nil) }

// FileFinished fires the "file-finished" progress callback (§6), with err
// non-nil when the file produced a ParseFailure.
func (o *AnalyzeOptions) FileFinished(path string, err error) { o.progress("file-finished", path, err) }

// Warn fires the warning callback (§7: "All non-fatal errors are
// additionally emitted through the warning callback").
func (o *AnalyzeOptions) Warn(message string) { o.warn(message) }
