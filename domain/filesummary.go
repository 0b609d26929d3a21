package domain

// ExportKind distinguishes the three export shapes the parser records (§3).
type ExportKind string

const (
	ExportNamed     ExportKind = "named"
	ExportDefault   ExportKind = "default"
	ExportNamespace ExportKind = "namespace"
)

// ImportDetail is the merged view of every import statement that shares a
// specifier within one file (§3: "multiple imports of the same specifier
// within one file are merged").
type ImportDetail struct {
	// Specifiers holds, for default/namespace imports, the local binding
	// name; for named imports, the imported (not local) name — per the
	// parser algorithm in §4.3.
	Specifiers map[string]struct{} `json:"specifiers"`

	// TypeSpecifiers holds type-only imported names (same naming rule as
	// Specifiers, restricted to `import type { ... }` members or a whole
	// `import type` statement).
	TypeSpecifiers map[string]struct{} `json:"typeSpecifiers"`

	IsDefault   bool `json:"isDefault"`
	IsNamespace bool `json:"isNamespace"`
	IsTypeOnly  bool `json:"isTypeOnly"`

	Line   int `json:"line"`
	Column int `json:"column"`
}

func newImportDetail() *ImportDetail {
	return &ImportDetail{
		Specifiers:     make(map[string]struct{}),
		TypeSpecifiers: make(map[string]struct{}),
	}
}

// DynamicImport is one `import(...)` call expression (§3/§4.3).
type DynamicImport struct {
	// Path is the literal string, the raw template text (with ${...}
	// holes preserved) when IsTemplateLiteral, or the verbatim expression
	// text when it begins with __dirname/__filename.
	Path              string `json:"path"`
	IsTemplateLiteral bool   `json:"isTemplateLiteral"`
}

// ExportInfo is the recorded shape of one exported name (§3).
type ExportInfo struct {
	Type   ExportKind `json:"type"`
	Line   int        `json:"line"`
	Column int        `json:"column"`
}

// ReExportTarget is where a re-exported name actually comes from (§3/§4.3).
// The well-known key "*" records a bare `export * from "..."` statement.
type ReExportTarget struct {
	SourceFile   string `json:"sourceFile"`
	ExportedName string `json:"exportedName"`
}

// DeclKind differentiates the declaration forms recorded under Functions,
// Classes, Variables and Types (§4.3: function/class/const-let-var/type/
// interface/enum).
type DeclKind string

const (
	DeclFunction    DeclKind = "function"
	DeclClass       DeclKind = "class"
	DeclVariable    DeclKind = "variable"
	DeclTypeAlias   DeclKind = "type"
	DeclInterface   DeclKind = "interface"
	DeclEnum        DeclKind = "enum"
)

// Declaration is one bound identifier recorded under FileSummary's
// Functions/Classes/Variables/Types maps (§3). Destructuring patterns yield
// one Declaration per bound identifier.
type Declaration struct {
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	IsExported bool     `json:"isExported"`
	Kind       DeclKind `json:"kind,omitempty"`
}

// FileSummary is the parsed view of one source file (§3). It is the sole
// output of C3 and the sole input — besides the project configuration — to
// every later stage of the pipeline.
type FileSummary struct {
	// Path is the canonical absolute path identifying this node (§3 ModulePath).
	Path string `json:"path"`

	// Imports is the ordered sequence of raw specifier strings, one per
	// import statement, including side-effect-only and re-export statements.
	Imports []string `json:"imports"`

	// ImportDetails maps specifier to its merged detail record.
	ImportDetails map[string]*ImportDetail `json:"importDetails"`

	// DynamicImports are the import(...) call sites found in the file.
	DynamicImports []DynamicImport `json:"dynamicImports"`

	// Exports maps exported name to its recorded shape. Type aliases,
	// interfaces and enums are recorded here as named exports regardless
	// of the `export` keyword (§3).
	Exports map[string]ExportInfo `json:"exports"`

	// ReExports maps exported name to where it is re-exported from.
	ReExports map[string]ReExportTarget `json:"reExports"`

	Functions map[string]Declaration `json:"functions"`
	Classes   map[string]Declaration `json:"classes"`
	Variables map[string]Declaration `json:"variables"`
	Types     map[string]Declaration `json:"types"`

	// VariableReferences, FunctionCalls, JSXElements and CSSClasses are
	// unordered sets of identifier names appearing in reference position,
	// call position, as a JSX opening tag name, or as a token inside a
	// className/class JSX attribute literal, respectively (§3).
	VariableReferences map[string]struct{} `json:"variableReferences"`
	FunctionCalls      map[string]struct{} `json:"functionCalls"`
	JSXElements        map[string]struct{} `json:"jsxElements"`
	CSSClasses         map[string]struct{} `json:"cssClasses"`

	// IsEntryPoint is set by the graph after construction (§3).
	IsEntryPoint bool `json:"isEntryPoint"`
}

// NewFileSummary returns an empty, fully-initialized FileSummary for path.
func NewFileSummary(path string) *FileSummary {
	return &FileSummary{
		Path:               path,
		Imports:            make([]string, 0),
		ImportDetails:      make(map[string]*ImportDetail),
		DynamicImports:     make([]DynamicImport, 0),
		Exports:            make(map[string]ExportInfo),
		ReExports:          make(map[string]ReExportTarget),
		Functions:          make(map[string]Declaration),
		Classes:            make(map[string]Declaration),
		Variables:          make(map[string]Declaration),
		Types:              make(map[string]Declaration),
		VariableReferences: make(map[string]struct{}),
		FunctionCalls:      make(map[string]struct{}),
		JSXElements:        make(map[string]struct{}),
		CSSClasses:         make(map[string]struct{}),
	}
}

// detailFor returns the merged ImportDetail for specifier, creating and
// registering it in ImportDetails on first use (§3 invariant 2: every
// ImportDetails key appears in Imports). specifier is appended to the
// ordered Imports slice once per import statement: every call for one
// statement carries that statement's line/column, so a call at the
// location already recorded on the detail appends nothing.
func (fs *FileSummary) detailFor(specifier string, line, col int) *ImportDetail {
	d, ok := fs.ImportDetails[specifier]
	if !ok {
		d = newImportDetail()
		fs.ImportDetails[specifier] = d
	}
	if !ok || d.Line != line || d.Column != col {
		fs.Imports = append(fs.Imports, specifier)
	}
	return d
}

// AddImportSpecifier records one specifier occurrence for a statement.
func (fs *FileSummary) AddImportSpecifier(specifier, name string, isDefault, isNamespace, isTypeOnly bool, line, col int) {
	d := fs.detailFor(specifier, line, col)
	d.Line, d.Column = line, col
	if isDefault {
		d.IsDefault = true
	}
	if isNamespace {
		d.IsNamespace = true
	}
	if name == "" {
		return
	}
	if isTypeOnly {
		d.IsTypeOnly = true
		d.TypeSpecifiers[name] = struct{}{}
		return
	}
	d.Specifiers[name] = struct{}{}
}

// AddSideEffectImport records a side-effect-only `import "X"` (empty specifiers).
func (fs *FileSummary) AddSideEffectImport(specifier string, line, col int) {
	d := fs.detailFor(specifier, line, col)
	d.Line, d.Column = line, col
}
