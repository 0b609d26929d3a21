package parser

import (
	"strings"

	"github.com/kiron0/unreach/domain"
	sitter "github.com/smacker/go-tree-sitter"
)

// builder walks one tree-sitter CST and fills in a domain.FileSummary,
// following the single-pass algorithm of §4.3: parent context (import
// declaration, export wrapper, binding position) is tracked by which
// helper is currently recursing, rather than by parent pointers, since
// each declaration form recurses into exactly the subtrees the spec wants
// treated as references.
type builder struct {
	path    string
	source  []byte
	summary *domain.FileSummary
}

func newBuilder(path string, source []byte) *builder {
	return &builder{
		path:    path,
		source:  source,
		summary: domain.NewFileSummary(path),
	}
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.source)
}

func (b *builder) loc(n *sitter.Node) (line, col int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column)
}

func (b *builder) field(n *sitter.Node, name string) *sitter.Node {
	return n.ChildByFieldName(name)
}

// run performs the single top-level pass over the program.
func (b *builder) run(root *sitter.Node) {
	b.visitStatements(root)
}

// visitStatements walks each named child of a statement container (program
// or statement block), dispatching declarations/imports/exports and
// recursing generically into everything else for references.
func (b *builder) visitStatements(n *sitter.Node) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		b.visit(n.NamedChild(i))
	}
}

// visit is the generic dispatcher: known declaration/import/export/JSX/call
// forms are handled specially (and decide their own recursion); everything
// else recurses into named children looking for nested declarations,
// references, calls and JSX.
func (b *builder) visit(n *sitter.Node) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "import_statement":
		b.handleImport(n)
		return
	case "export_statement":
		b.handleExport(n, false)
		return
	case "lexical_declaration", "variable_declaration":
		b.handleVariableDeclaration(n, false)
		return
	case "function_declaration", "generator_function_declaration":
		b.handleFunctionDecl(n, false)
		return
	case "class_declaration":
		b.handleClassDecl(n, false)
		return
	case "interface_declaration":
		b.handleInterfaceDecl(n, false)
		return
	case "type_alias_declaration":
		b.handleTypeAlias(n, false)
		return
	case "enum_declaration":
		b.handleEnumDecl(n, false)
		return
	case "call_expression":
		b.handleCallExpression(n)
		return
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		b.handleJSX(n)
		return
	case "identifier":
		b.summary.VariableReferences[b.text(n)] = struct{}{}
		return
	case "type_identifier":
		b.summary.VariableReferences[b.text(n)] = struct{}{}
		return
	case "shorthand_property_identifier":
		b.summary.VariableReferences[b.text(n)] = struct{}{}
		return
	}

	b.walkChildren(n)
}

func (b *builder) walkChildren(n *sitter.Node) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		b.visit(n.NamedChild(i))
	}
}

// --- Imports (§4.3) ---------------------------------------------------

func (b *builder) handleImport(n *sitter.Node) {
	sourceNode := b.field(n, "source")
	specifier := unquote(b.text(sourceNode))
	line, col := b.loc(n)

	isTypeOnly := b.hasKeywordChild(n, "type")

	var clause *sitter.Node
	var namespaceAtTop *sitter.Node
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "import_clause":
			clause = c
		case "namespace_import":
			namespaceAtTop = c
		}
	}

	hadSpecifier := false

	if namespaceAtTop != nil {
		b.summary.AddImportSpecifier(specifier, namespaceIdentifier(namespaceAtTop, b), true, true, isTypeOnly, line, col)
		hadSpecifier = true
	}

	if clause != nil {
		hadSpecifier = b.extractImportClause(clause, specifier, isTypeOnly, line, col) || hadSpecifier
	}

	if !hadSpecifier {
		// Side-effect-only import: import "X";
		b.summary.AddSideEffectImport(specifier, line, col)
	}
}

func namespaceIdentifier(nsNode *sitter.Node, b *builder) string {
	count := int(nsNode.NamedChildCount())
	for i := 0; i < count; i++ {
		c := nsNode.NamedChild(i)
		if c != nil && c.Type() == "identifier" {
			return b.text(c)
		}
	}
	return ""
}

// extractImportClause handles the contents of an import_clause: an
// optional default identifier, an optional namespace_import, and/or a
// named_imports block. Returns true if any specifier was recorded.
func (b *builder) extractImportClause(clause *sitter.Node, specifier string, fileTypeOnly bool, line, col int) bool {
	found := false
	count := int(clause.ChildCount())
	for i := 0; i < count; i++ {
		c := clause.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "identifier":
			b.summary.AddImportSpecifier(specifier, b.text(c), true, false, fileTypeOnly, line, col)
			found = true
		case "namespace_import":
			b.summary.AddImportSpecifier(specifier, namespaceIdentifier(c, b), true, true, fileTypeOnly, line, col)
			found = true
		case "named_imports":
			if b.extractNamedImports(c, specifier, fileTypeOnly, line, col) {
				found = true
			}
		}
	}
	return found
}

func (b *builder) extractNamedImports(named *sitter.Node, specifier string, fileTypeOnly bool, line, col int) bool {
	found := false
	count := int(named.NamedChildCount())
	for i := 0; i < count; i++ {
		spec := named.NamedChild(i)
		if spec == nil || spec.Type() != "import_specifier" {
			continue
		}
		specTypeOnly := fileTypeOnly || b.hasKeywordChild(spec, "type")
		imported, _ := b.importSpecifierNames(spec)
		if imported == "" {
			continue
		}
		b.summary.AddImportSpecifier(specifier, imported, false, false, specTypeOnly, line, col)
		found = true
	}
	return found
}

// importSpecifierNames returns (imported, local) for `foo` or `foo as bar`.
func (b *builder) importSpecifierNames(spec *sitter.Node) (imported, local string) {
	if nameNode := b.field(spec, "name"); nameNode != nil {
		imported = b.text(nameNode)
		local = imported
		if aliasNode := b.field(spec, "alias"); aliasNode != nil {
			local = b.text(aliasNode)
		}
		return imported, local
	}
	var idents []*sitter.Node
	count := int(spec.NamedChildCount())
	for i := 0; i < count; i++ {
		c := spec.NamedChild(i)
		if c != nil && (c.Type() == "identifier" || c.Type() == "type_identifier") {
			idents = append(idents, c)
		}
	}
	switch len(idents) {
	case 1:
		imported = b.text(idents[0])
		local = imported
	case 2:
		imported = b.text(idents[0])
		local = b.text(idents[1])
	}
	return imported, local
}

func (b *builder) hasKeywordChild(n *sitter.Node, kw string) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c != nil && c.Type() == kw {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// --- Exports / re-exports (§4.3) --------------------------------------

func (b *builder) handleExport(n *sitter.Node, _ bool) {
	line, col := b.loc(n)
	sourceNode := b.field(n, "source")

	hasDefault := b.hasKeywordChild(n, "default")
	hasWildcard := b.hasKeywordChild(n, "*")

	if sourceNode != nil {
		b.handleReExport(n, sourceNode, hasWildcard, line, col)
		return
	}

	if hasDefault {
		b.handleDefaultExport(n, line, col)
		return
	}

	// export { a, b as c };  (no source — local re-export of bindings
	// already declared in this file)
	var clause *sitter.Node
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c != nil && c.Type() == "export_clause" {
			clause = c
		}
	}
	if clause != nil {
		b.extractExportClause(clause, "")
	}

	if decl := b.field(n, "declaration"); decl != nil {
		b.handleDeclarationExport(decl)
	}
}

func (b *builder) handleReExport(n, sourceNode *sitter.Node, wildcard bool, line, col int) {
	specifier := unquote(b.text(sourceNode))

	if wildcard {
		b.summary.AddImportSpecifier(specifier, "", false, true, false, line, col)
		b.summary.ReExports["*"] = domain.ReExportTarget{SourceFile: specifier, ExportedName: "*"}
		return
	}

	var clause *sitter.Node
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c != nil && c.Type() == "export_clause" {
			clause = c
		}
	}
	if clause == nil {
		return
	}
	b.extractExportClause(clause, specifier)
}

// extractExportClause records `export { a, b as c }` (source == "") and
// `export { a, b as c } from "X"` (source != "") forms.
func (b *builder) extractExportClause(clause *sitter.Node, source string) {
	line, col := b.loc(clause)
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		spec := clause.NamedChild(i)
		if spec == nil || spec.Type() != "export_specifier" {
			continue
		}
		localName, exportedName := b.exportSpecifierNames(spec)
		if exportedName == "" {
			continue
		}
		b.summary.Exports[exportedName] = domain.ExportInfo{Type: domain.ExportNamed, Line: line, Column: col}
		if source != "" {
			b.summary.ReExports[exportedName] = domain.ReExportTarget{SourceFile: source, ExportedName: localName}
			b.summary.AddImportSpecifier(source, localName, false, false, false, line, col)
		}
	}
}

func (b *builder) exportSpecifierNames(spec *sitter.Node) (local, exported string) {
	if nameNode := b.field(spec, "name"); nameNode != nil {
		local = b.text(nameNode)
		exported = local
		if aliasNode := b.field(spec, "alias"); aliasNode != nil {
			exported = b.text(aliasNode)
		}
		return local, exported
	}
	var idents []*sitter.Node
	count := int(spec.NamedChildCount())
	for i := 0; i < count; i++ {
		c := spec.NamedChild(i)
		if c != nil && (c.Type() == "identifier" || c.Type() == "type_identifier") {
			idents = append(idents, c)
		}
	}
	switch len(idents) {
	case 1:
		local = b.text(idents[0])
		exported = local
	case 2:
		local = b.text(idents[0])
		exported = b.text(idents[1])
	}
	return local, exported
}

func (b *builder) handleDefaultExport(n *sitter.Node, line, col int) {
	b.summary.Exports["default"] = domain.ExportInfo{Type: domain.ExportDefault, Line: line, Column: col}

	value := b.field(n, "value")
	if value == nil {
		value = b.field(n, "declaration")
	}
	if value == nil {
		return
	}
	switch value.Type() {
	case "function_declaration", "generator_function_declaration":
		b.handleFunctionDecl(value, true)
	case "class_declaration":
		b.handleClassDecl(value, true)
	default:
		// export default <expr>; — the expression may itself reference
		// identifiers (e.g. `export default connect(mapState)(Widget)`).
		b.visit(value)
	}
}

// handleDeclarationExport handles `export function foo() {}`, `export const
// x = 1`, `export class C {}`, `export interface I {}`, `export type T = …`,
// `export enum E {}`.
func (b *builder) handleDeclarationExport(decl *sitter.Node) {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		b.handleFunctionDecl(decl, true)
	case "class_declaration":
		b.handleClassDecl(decl, true)
	case "lexical_declaration", "variable_declaration":
		b.handleVariableDeclaration(decl, true)
	case "interface_declaration":
		b.handleInterfaceDecl(decl, true)
	case "type_alias_declaration":
		b.handleTypeAlias(decl, true)
	case "enum_declaration":
		b.handleEnumDecl(decl, true)
	default:
		b.visit(decl)
	}
}

// --- Declarations (§4.3, §3 invariant 1) ------------------------------

func (b *builder) declareName(kind domain.DeclKind, name string, n *sitter.Node, exported bool) {
	if name == "" {
		return
	}
	line, col := b.loc(n)
	decl := domain.Declaration{Line: line, Column: col, IsExported: exported, Kind: kind}
	switch kind {
	case domain.DeclFunction:
		b.summary.Functions[name] = decl
	case domain.DeclClass:
		b.summary.Classes[name] = decl
	case domain.DeclVariable:
		b.summary.Variables[name] = decl
	default:
		b.summary.Types[name] = decl
	}
	if exported {
		if _, exists := b.summary.Exports[name]; !exists {
			b.summary.Exports[name] = domain.ExportInfo{Type: domain.ExportNamed, Line: line, Column: col}
		}
	}
}

func (b *builder) handleFunctionDecl(n *sitter.Node, exported bool) {
	nameNode := b.field(n, "name")
	b.declareName(domain.DeclFunction, b.text(nameNode), n, exported)
	if params := b.field(n, "parameters"); params != nil {
		b.walkChildren(params)
	}
	if body := b.field(n, "body"); body != nil {
		b.visitStatements(body)
	}
}

func (b *builder) handleClassDecl(n *sitter.Node, exported bool) {
	nameNode := b.field(n, "name")
	b.declareName(domain.DeclClass, b.text(nameNode), n, exported)
	if heritage := b.field(n, "heritage"); heritage != nil {
		b.walkChildren(heritage)
	}
	if body := b.field(n, "body"); body != nil {
		b.walkChildren(body)
	}
}

func (b *builder) handleInterfaceDecl(n *sitter.Node, exported bool) {
	nameNode := b.field(n, "name")
	name := b.text(nameNode)
	b.declareName(domain.DeclInterface, name, n, exported)
	// §4.3: type aliases/interfaces/enums are recorded as named exports
	// regardless of the export keyword, to match source behavior.
	if name != "" {
		line, col := b.loc(n)
		if _, exists := b.summary.Exports[name]; !exists {
			b.summary.Exports[name] = domain.ExportInfo{Type: domain.ExportNamed, Line: line, Column: col}
		}
	}
	if body := b.field(n, "body"); body != nil {
		b.walkChildren(body)
	}
}

func (b *builder) handleTypeAlias(n *sitter.Node, exported bool) {
	nameNode := b.field(n, "name")
	name := b.text(nameNode)
	b.declareName(domain.DeclTypeAlias, name, n, exported)
	if name != "" {
		line, col := b.loc(n)
		if _, exists := b.summary.Exports[name]; !exists {
			b.summary.Exports[name] = domain.ExportInfo{Type: domain.ExportNamed, Line: line, Column: col}
		}
	}
	if value := b.field(n, "value"); value != nil {
		b.walkChildren(value)
	}
}

func (b *builder) handleEnumDecl(n *sitter.Node, exported bool) {
	nameNode := b.field(n, "name")
	name := b.text(nameNode)
	b.declareName(domain.DeclEnum, name, n, exported)
	if name != "" {
		line, col := b.loc(n)
		if _, exists := b.summary.Exports[name]; !exists {
			b.summary.Exports[name] = domain.ExportInfo{Type: domain.ExportNamed, Line: line, Column: col}
		}
	}
}

// handleVariableDeclaration recurses into each declarator, binding every
// identifier named by (possibly destructured) patterns as a Variable
// declaration, and walking the initializer expression for references.
func (b *builder) handleVariableDeclaration(n *sitter.Node, exported bool) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		decl := n.NamedChild(i)
		if decl == nil || decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := b.field(decl, "name")
		if nameNode != nil {
			b.bindPattern(nameNode, exported)
		}
		if value := b.field(decl, "value"); value != nil {
			b.visit(value)
		}
	}
}

// bindPattern recursively records every identifier bound by a (possibly
// nested, possibly destructured) binding pattern as a Variable declaration
// (§3: "Destructuring patterns yield one entry per bound identifier").
func (b *builder) bindPattern(n *sitter.Node, exported bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		b.declareName(domain.DeclVariable, b.text(n), n, exported)
	case "object_pattern":
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "shorthand_property_identifier_pattern":
				b.declareName(domain.DeclVariable, b.text(c), c, exported)
			case "pair_pattern":
				if value := b.field(c, "value"); value != nil {
					b.bindPattern(value, exported)
				}
			case "rest_pattern":
				b.bindPattern(firstNamedChild(c), exported)
			case "object_assignment_pattern", "assignment_pattern":
				left := b.field(c, "left")
				b.bindPattern(left, exported)
				if right := b.field(c, "right"); right != nil {
					b.visit(right)
				}
			}
		}
	case "array_pattern":
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "rest_pattern":
				b.bindPattern(firstNamedChild(c), exported)
			case "assignment_pattern":
				left := b.field(c, "left")
				b.bindPattern(left, exported)
				if right := b.field(c, "right"); right != nil {
					b.visit(right)
				}
			default:
				b.bindPattern(c, exported)
			}
		}
	case "assignment_pattern":
		left := b.field(n, "left")
		b.bindPattern(left, exported)
		if right := b.field(n, "right"); right != nil {
			b.visit(right)
		}
	case "rest_pattern":
		b.bindPattern(firstNamedChild(n), exported)
	default:
		// Type-annotated or parenthesized pattern forms: recurse into the
		// underlying pattern if present, otherwise treat as a plain ref.
		if inner := firstNamedChild(n); inner != nil {
			b.bindPattern(inner, exported)
		}
	}
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

// --- Calls, dynamic imports (§4.3) -------------------------------------

func (b *builder) handleCallExpression(n *sitter.Node) {
	callee := b.field(n, "function")
	args := b.field(n, "arguments")

	if callee != nil && callee.Type() == "import" {
		b.handleDynamicImport(n, args)
		// still walk the argument for nested references, if any
		if args != nil {
			b.walkChildren(args)
		}
		return
	}

	if callee != nil {
		switch callee.Type() {
		case "identifier":
			name := b.text(callee)
			b.summary.FunctionCalls[name] = struct{}{}
			b.summary.VariableReferences[name] = struct{}{}
		case "member_expression":
			if prop := b.field(callee, "property"); prop != nil {
				b.summary.FunctionCalls[b.text(prop)] = struct{}{}
			}
			if obj := b.field(callee, "object"); obj != nil {
				b.visit(obj)
			}
		default:
			b.visit(callee)
		}
	}

	if args != nil {
		b.walkChildren(args)
	}
}

func (b *builder) handleDynamicImport(n, args *sitter.Node) {
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	arg := args.NamedChild(0)
	switch arg.Type() {
	case "string":
		b.summary.DynamicImports = append(b.summary.DynamicImports, domain.DynamicImport{
			Path: unquote(b.text(arg)),
		})
	case "template_string":
		b.summary.DynamicImports = append(b.summary.DynamicImports, domain.DynamicImport{
			Path:              b.text(arg),
			IsTemplateLiteral: true,
		})
	default:
		txt := b.text(arg)
		if strings.HasPrefix(txt, "__dirname") || strings.HasPrefix(txt, "__filename") {
			b.summary.DynamicImports = append(b.summary.DynamicImports, domain.DynamicImport{Path: txt})
		}
	}
}

// --- JSX (§4.3) ----------------------------------------------------------

func (b *builder) handleJSX(n *sitter.Node) {
	switch n.Type() {
	case "jsx_element":
		if opening := b.field(n, "open_tag"); opening != nil {
			b.recordJSXOpening(opening)
		}
		if children := b.field(n, "children"); children != nil {
			b.walkChildren(children)
		} else {
			b.walkChildren(n)
		}
	case "jsx_self_closing_element":
		b.recordJSXOpening(n)
	case "jsx_fragment":
		b.walkChildren(n)
	}
}

func (b *builder) recordJSXOpening(n *sitter.Node) {
	if nameNode := b.field(n, "name"); nameNode != nil {
		b.summary.JSXElements[b.text(nameNode)] = struct{}{}
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c != nil && c.Type() == "jsx_attribute" {
			b.handleJSXAttribute(c)
		}
	}
}

func (b *builder) handleJSXAttribute(n *sitter.Node) {
	nameNode := b.field(n, "name")
	if nameNode == nil {
		return
	}
	attrName := b.text(nameNode)
	if attrName != "class" && attrName != "className" {
		return
	}
	value := b.field(n, "value")
	if value == nil || value.Type() != "string" {
		return
	}
	literal := unquote(b.text(value))
	for _, tok := range strings.Fields(literal) {
		b.summary.CSSClasses[tok] = struct{}{}
	}
}
