package symbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/vestigehq/vestige/pkg/parser"
)

const (
	directiveIgnore     = "vestige:ignore"
	directiveIgnoreFile = "vestige:ignore-file"
)

// dynamicNames are identifiers whose presence means the file may reach
// symbols reflectively, so dead-code findings there deserve less trust.
var dynamicNames = map[string]bool{
	"eval":    true,
	"getattr": true,
	"globals": true,
	"Reflect": true,
}

// ExtractFromResult builds a FileInfo from an already parsed file.
func ExtractFromResult(result *parser.ParseResult) *FileInfo {
	info := &FileInfo{
		Path:    result.Path,
		Result:  result,
		Uses:    make(map[string]int),
		Ignores: Ignores{Lines: make(map[uint32]bool)},
	}

	info.Imports = extractImports(result)
	info.Decls = extractDeclarations(result)
	collectUses(result, info)
	collectDirectives(result, info)

	for name := range info.Uses {
		if dynamicNames[name] {
			info.DynamicAccess = true
			break
		}
	}
	for _, imp := range info.Imports {
		if imp.Module == "reflect" {
			info.DynamicAccess = true
		}
	}

	return info
}

// importNodeTypes returns the AST node types for import statements.
func importNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangGo:
		return []string{"import_spec"}
	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		return []string{"import_statement"}
	case parser.LangPython:
		return []string{"import_statement", "import_from_statement"}
	default:
		return nil
	}
}

// extractImports collects the imported modules and the local bindings each
// import introduces.
func extractImports(result *parser.ParseResult) []Import {
	var imports []Import
	root := result.Tree.RootNode()

	for _, it := range importNodeTypes(result.Language) {
		for _, node := range parser.FindNodesByType(root, result.Source, it) {
			imp := extractImport(node, result.Source, result.Language)
			if imp.Module != "" || len(imp.Names) > 0 {
				imports = append(imports, imp)
			}
		}
	}

	return imports
}

func extractImport(node *sitter.Node, source []byte, lang parser.Language) Import {
	imp := Import{Line: node.StartPoint().Row + 1}

	switch lang {
	case parser.LangGo:
		if pathNode := node.ChildByFieldName("path"); pathNode != nil {
			imp.Module = unquote(parser.GetNodeText(pathNode, source))
		}
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			alias := parser.GetNodeText(nameNode, source)
			// Blank and dot imports introduce no checkable binding.
			if alias != "_" && alias != "." {
				imp.Names = []string{alias}
			}
		} else if imp.Module != "" {
			imp.Names = []string{lastSegment(imp.Module)}
		}

	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		if srcNode := node.ChildByFieldName("source"); srcNode != nil {
			imp.Module = unquote(parser.GetNodeText(srcNode, source))
		}
		imp.Names = tsImportBindings(node, source)

	case parser.LangPython:
		if node.Type() == "import_from_statement" {
			if modNode := node.ChildByFieldName("module_name"); modNode != nil {
				imp.Module = parser.GetNodeText(modNode, source)
			}
			imp.Names = pyImportedNames(node, source)
		} else {
			// import a.b.c [as alias] binds the first segment (or alias).
			for i := range int(node.ChildCount()) {
				child := node.Child(i)
				switch child.Type() {
				case "dotted_name":
					name := parser.GetNodeText(child, source)
					imp.Module = name
					imp.Names = append(imp.Names, firstSegment(name))
				case "aliased_import":
					if n := child.ChildByFieldName("name"); n != nil {
						imp.Module = parser.GetNodeText(n, source)
					}
					if a := child.ChildByFieldName("alias"); a != nil {
						imp.Names = append(imp.Names, parser.GetNodeText(a, source))
					}
				}
			}
		}
	}

	return imp
}

// tsImportBindings walks an import_clause for default, named, and
// namespace bindings.
func tsImportBindings(node *sitter.Node, source []byte) []string {
	var names []string

	parser.Walk(node, source, func(n *sitter.Node, src []byte) bool {
		switch n.Type() {
		case "import_specifier":
			// import {x as y}: the local binding is the alias when present.
			if alias := n.ChildByFieldName("alias"); alias != nil {
				names = append(names, parser.GetNodeText(alias, src))
			} else if name := n.ChildByFieldName("name"); name != nil {
				names = append(names, parser.GetNodeText(name, src))
			}
			return false
		case "namespace_import":
			for i := range int(n.ChildCount()) {
				if child := n.Child(i); child.Type() == "identifier" {
					names = append(names, parser.GetNodeText(child, src))
				}
			}
			return false
		case "import_clause":
			// A bare identifier directly under the clause is a default import.
			for i := range int(n.ChildCount()) {
				if child := n.Child(i); child.Type() == "identifier" {
					names = append(names, parser.GetNodeText(child, src))
				}
			}
			return true
		}
		return true
	})

	return names
}

// pyImportedNames collects bindings from `from m import a, b as c`.
func pyImportedNames(node *sitter.Node, source []byte) []string {
	var names []string
	module := node.ChildByFieldName("module_name")

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if module != nil && child == module {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			names = append(names, firstSegment(parser.GetNodeText(child, source)))
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				names = append(names, parser.GetNodeText(alias, source))
			}
		case "wildcard_import":
			// from m import * introduces unknowable bindings; report none.
			return nil
		}
	}

	return names
}

// variableNodeTypes returns per-language declaration node types for
// variables and constants.
func variableNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangGo:
		return []string{"var_spec", "const_spec"}
	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		return []string{"variable_declarator"}
	case parser.LangPython:
		return []string{"assignment"}
	default:
		return nil
	}
}

// classNodeTypes returns per-language class/type declaration node types.
func classNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangGo:
		return []string{"type_spec"}
	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		return []string{"class_declaration"}
	case parser.LangPython:
		return []string{"class_definition"}
	default:
		return nil
	}
}

// extractDeclarations finds function, variable, and class definitions.
func extractDeclarations(result *parser.ParseResult) []Declaration {
	var decls []Declaration
	root := result.Tree.RootNode()
	lang := result.Language

	for _, fn := range parser.GetFunctions(result) {
		decls = append(decls, Declaration{
			Name:     fn.Name,
			File:     result.Path,
			Line:     fn.StartLine,
			EndLine:  fn.EndLine,
			Kind:     SymbolFunction,
			Exported: fn.Exported,
		})
	}

	seen := make(map[string]bool)
	for _, d := range decls {
		seen[d.Name] = true
	}

	addDecl := func(name string, node *sitter.Node, kind SymbolKind) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		decls = append(decls, Declaration{
			Name:     name,
			File:     result.Path,
			Line:     node.StartPoint().Row + 1,
			EndLine:  node.EndPoint().Row + 1,
			Kind:     kind,
			Exported: isExportedDecl(name, node, lang),
		})
	}

	for _, vt := range variableNodeTypes(lang) {
		for _, node := range parser.FindNodesByType(root, result.Source, vt) {
			for _, name := range declaredVarNames(node, result.Source, lang) {
				addDecl(name, node, SymbolVariable)
			}
		}
	}

	for _, ct := range classNodeTypes(lang) {
		for _, node := range parser.FindNodesByType(root, result.Source, ct) {
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				addDecl(parser.GetNodeText(nameNode, result.Source), node, SymbolClass)
			}
		}
	}

	return decls
}

// declaredVarNames extracts the bound names from one variable declaration.
func declaredVarNames(node *sitter.Node, source []byte, lang parser.Language) []string {
	switch lang {
	case parser.LangGo:
		var names []string
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			names = append(names, parser.GetNodeText(nameNode, source))
		} else {
			for i := range int(node.ChildCount()) {
				if child := node.Child(i); child.Type() == "identifier" {
					names = append(names, parser.GetNodeText(child, source))
				}
			}
		}
		return names

	case parser.LangTypeScript, parser.LangJavaScript, parser.LangTSX:
		if nameNode := node.ChildByFieldName("name"); nameNode != nil && nameNode.Type() == "identifier" {
			return []string{parser.GetNodeText(nameNode, source)}
		}
		return nil

	case parser.LangPython:
		if left := node.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
			return []string{parser.GetNodeText(left, source)}
		}
		return nil
	}

	return nil
}

// isExportedDecl determines export status for non-function declarations.
func isExportedDecl(name string, node *sitter.Node, lang parser.Language) bool {
	exportKeyword := false
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "export_statement" {
			exportKeyword = true
			break
		}
	}
	return parser.IsExported(name, lang, exportKeyword)
}

// identifierTypes are node types counted as symbol usages.
var identifierTypes = map[string]bool{
	"identifier":                    true,
	"type_identifier":               true,
	"field_identifier":              true,
	"property_identifier":           true,
	"shorthand_property_identifier": true,
}

// importStatementTypes are node types whose subtrees never count as usage.
var importStatementTypes = map[string]bool{
	"import_declaration":    true,
	"import_statement":      true,
	"import_from_statement": true,
}

// collectUses counts identifier occurrences outside import statements and
// declaration-name positions.
func collectUses(result *parser.ParseResult, info *FileInfo) {
	root := result.Tree.RootNode()

	parser.Walk(root, result.Source, func(node *sitter.Node, source []byte) bool {
		nodeType := node.Type()
		if importStatementTypes[nodeType] {
			return false
		}
		if identifierTypes[nodeType] && !isDeclarationName(node) {
			info.Uses[parser.GetNodeText(node, source)]++
		}
		return true
	})
}

// declarationParents maps declaration node types whose "name" field is the
// symbol being introduced rather than a usage.
var declarationParents = map[string]bool{
	"function_declaration": true,
	"method_declaration":   true,
	"method_definition":    true,
	"function_definition":  true,
	"class_declaration":    true,
	"class_definition":     true,
	"type_spec":            true,
	"var_spec":             true,
	"const_spec":           true,
	"variable_declarator":  true,
}

// isDeclarationName reports whether an identifier node is the name being
// declared rather than a reference to an existing symbol.
func isDeclarationName(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}

	if declarationParents[parent.Type()] {
		if nameNode := parent.ChildByFieldName("name"); nameNode != nil && nameNode == node {
			return true
		}
	}

	// Go short declarations: identifiers on the left of :=
	if parent.Type() == "expression_list" {
		if gp := parent.Parent(); gp != nil && gp.Type() == "short_var_declaration" {
			if left := gp.ChildByFieldName("left"); left != nil && left == parent {
				return true
			}
		}
	}

	// Python assignment targets.
	if parent.Type() == "assignment" {
		if left := parent.ChildByFieldName("left"); left != nil && left == node {
			return true
		}
	}

	return false
}

// collectDirectives scans comments for suppression directives.
func collectDirectives(result *parser.ParseResult, info *FileInfo) {
	root := result.Tree.RootNode()

	parser.Walk(root, result.Source, func(node *sitter.Node, source []byte) bool {
		if node.Type() != "comment" {
			return true
		}
		text := parser.GetNodeText(node, source)
		if strings.Contains(text, directiveIgnoreFile) {
			info.Ignores.File = true
		} else if strings.Contains(text, directiveIgnore) {
			info.Ignores.Lines[node.StartPoint().Row+1] = true
		}
		return false
	})
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

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func firstSegment(dotted string) string {
	if i := strings.Index(dotted, "."); i >= 0 {
		return dotted[:i]
	}
	return dotted
}
