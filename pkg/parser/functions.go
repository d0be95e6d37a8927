package parser

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// FunctionNode represents a parsed function or method definition.
type FunctionNode struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Exported  bool
	Body      *sitter.Node
}

// Lines returns the function length in source lines.
func (f *FunctionNode) Lines() int {
	return int(f.EndLine-f.StartLine) + 1
}

// GetFunctions extracts all named function definitions from parsed code.
// Anonymous functions (arrow functions, lambdas) are skipped since they
// cannot be referenced by name.
func GetFunctions(result *ParseResult) []FunctionNode {
	var functions []FunctionNode
	root := result.Tree.RootNode()
	funcTypes := functionNodeTypes(result.Language)

	Walk(root, result.Source, func(node *sitter.Node, source []byte) bool {
		for _, ft := range funcTypes {
			if node.Type() == ft {
				if fn := extractFunction(node, source, result.Language); fn.Name != "" {
					functions = append(functions, fn)
				}
				break
			}
		}
		return true
	})

	return functions
}

// functionNodeTypes returns the AST node types for named functions.
func functionNodeTypes(lang Language) []string {
	switch lang {
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	case LangPython:
		return []string{"function_definition"}
	case LangTypeScript, LangJavaScript, LangTSX:
		return []string{"function_declaration", "method_definition"}
	default:
		return nil
	}
}

// extractFunction pulls name, span, and body from a function node.
func extractFunction(node *sitter.Node, source []byte, lang Language) FunctionNode {
	fn := FunctionNode{
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		fn.Name = GetNodeText(nameNode, source)
	}

	fn.Body = node.ChildByFieldName("body")
	if fn.Body == nil {
		fn.Body = node.ChildByFieldName("block")
	}

	fn.Exported = IsExported(fn.Name, lang, hasExportModifier(node))
	return fn
}

// hasExportModifier checks for an `export` keyword on the declaration:
// TS/JS export statements wrap the declaration node.
func hasExportModifier(node *sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Type() == "export_statement"
}

// IsExported reports whether a symbol is visible outside its module.
// Go uses capitalization, Python uses the leading-underscore convention,
// and TS/JS use explicit export statements.
func IsExported(name string, lang Language, exportKeyword bool) bool {
	if name == "" {
		return false
	}
	switch lang {
	case LangGo:
		r := []rune(name)[0]
		return unicode.IsUpper(r)
	case LangPython:
		return !strings.HasPrefix(name, "_")
	case LangTypeScript, LangJavaScript, LangTSX:
		return exportKeyword
	default:
		return true
	}
}
