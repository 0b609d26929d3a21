// Package parser implements the AST Parser component (§4.3): it turns one
// source file into a domain.FileSummary by walking a tree-sitter concrete
// syntax tree once. The walking technique (switch on tsNode.Type(), field
// lookups via ChildByFieldName, Location extraction from StartPoint/EndPoint)
// is the teacher's own (internal/parser/ast_builder.go); the targets of that
// walk are now domain.FileSummary's symbol-level slots rather than a generic
// intermediate AST, since the spec's granularity (destructuring bindings,
// JSX attribute literals, dynamic-import template holes, re-export chains)
// has no clean representation in a generic Node and would otherwise be
// rebuilt a second time downstream.
package parser

import (
	"context"
	"fmt"

	"github.com/kiron0/unreach/domain"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Parser parses one JavaScript/TypeScript source buffer into a FileSummary.
// It is not safe for concurrent use by multiple goroutines; callers
// parsing in parallel (§5) should use one Parser per worker.
type Parser struct {
	js  *sitter.Parser
	tsx *sitter.Parser
}

// NewParser returns a Parser ready to handle both plain JS/JSX and
// TS/TSX sources.
func NewParser() *Parser {
	js := sitter.NewParser()
	js.SetLanguage(javascript.GetLanguage())

	ts := sitter.NewParser()
	ts.SetLanguage(tsx.GetLanguage())

	return &Parser{js: js, tsx: ts}
}

// Close releases the underlying tree-sitter parsers.
func (p *Parser) Close() {
	if p.js != nil {
		p.js.Close()
	}
	if p.tsx != nil {
		p.tsx.Close()
	}
}

// isTypeScriptPath reports whether path should be parsed with the
// TypeScript/TSX grammar (which is also a strict superset capable of
// parsing plain JSX, so it is the only grammar this package needs for
// .ts/.tsx/.jsx, falling back to the plain JS grammar only for .js/.mjs/.cjs
// to match the teacher's own dual-parser split).
func isTypeScriptPath(path string) bool {
	for _, ext := range []string{".ts", ".tsx", ".jsx", ".mts", ".cts"} {
		if hasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func hasSuffix(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	return s[len(s)-len(suffix):] == suffix
}

// ParseSource parses source (the content of the file at path, used only to
// select a grammar and to tag locations) into a FileSummary. A tree that
// contains any syntax error is reported as an error, as are a nil tree and a
// missing root node; no partial summary is returned in those cases.
func (p *Parser) ParseSource(path string, source []byte) (*domain.FileSummary, error) {
	sp := p.js
	if isTypeScriptPath(path) {
		sp = p.tsx
	}

	tree, err := sp.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse %s: no tree produced", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: no root node", path)
	}
	if root.HasError() {
		return nil, fmt.Errorf("parse %s: syntax error", path)
	}

	b := newBuilder(path, source)
	b.run(root)
	finalize(b.summary)
	return b.summary, nil
}

// finalize applies the §4.3 post-processing pass: mark isExported on any
// declaration whose name also appears as an exports key, covering forms
// like `export { foo }` where foo's own declaration was seen before the
// export clause.
func finalize(fs *domain.FileSummary) {
	markExported := func(m map[string]domain.Declaration) {
		for name, decl := range m {
			if _, ok := fs.Exports[name]; ok && !decl.IsExported {
				decl.IsExported = true
				m[name] = decl
			}
		}
	}
	markExported(fs.Functions)
	markExported(fs.Classes)
	markExported(fs.Variables)
	markExported(fs.Types)
}
