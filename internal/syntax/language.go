package syntax

import (
	"path/filepath"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language identifies which grammar parses a source file.
type Language uint8

const (
	// LangTSX parses TypeScript with JSX markup. This is the default and the
	// richest grammar: plain TypeScript and JavaScript are near-subsets, so
	// unknown extensions fall back here.
	LangTSX Language = iota
	// LangTypeScript parses TypeScript without JSX. `.ts` files must not use
	// the TSX grammar: `<T>(x)` is a type assertion in TS and markup in TSX.
	LangTypeScript
	// LangJavaScript parses JavaScript, including JSX (the JS grammar
	// ships with JSX productions enabled).
	LangJavaScript
)

func (l Language) String() string {
	switch l {
	case LangTSX:
		return "tsx"
	case LangTypeScript:
		return "typescript"
	case LangJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// Grammar wrappers are immutable after construction and safe to share
// across parsers and goroutines.
var (
	tsxLanguage        = ts.NewLanguage(tree_sitter_typescript.LanguageTSX())
	typescriptLanguage = ts.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	javascriptLanguage = ts.NewLanguage(tree_sitter_javascript.Language())
)

func (l Language) grammar() *ts.Language {
	switch l {
	case LangTypeScript:
		return typescriptLanguage
	case LangJavaScript:
		return javascriptLanguage
	default:
		return tsxLanguage
	}
}

// ForPath picks the grammar for a source path by extension.
func ForPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript
	default:
		return LangTSX
	}
}

// IsSourcePath reports whether path has an extension the compiler accepts.
func IsSourcePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx", ".ts", ".mts", ".cts", ".js", ".mjs", ".cjs":
		return true
	default:
		return false
	}
}
