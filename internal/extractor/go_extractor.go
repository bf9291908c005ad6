package extractor

import (
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoLanguage implements LanguageExtractor for Go. Only exported top-level
// symbols are reported.
type GoLanguage struct{}

func (g *GoLanguage) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoLanguage) GetQuery() string {
	return `
		(function_declaration) @func
		(method_declaration) @func
		(type_spec) @type
		(const_spec) @const
		(var_spec) @var
	`
}

func (g *GoLanguage) ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	var unit *CodeUnit
	switch captureName {
	case "func":
		unit = g.extractFunctionUnit(node, sourceCode, filepath)
	case "type":
		unit = g.extractTypeUnit(node, sourceCode, filepath)
	case "const":
		unit = g.extractValueUnit(node, sourceCode, filepath, "const", "constant")
	case "var":
		unit = g.extractValueUnit(node, sourceCode, filepath, "var", "variable")
	}
	if unit == nil || !isTopLevel(node) || !isExported(unit.Name) || (unit.Receiver != "" && !isExported(unit.Receiver)) {
		return nil
	}
	return unit
}

func (g *GoLanguage) extractTypeUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	docNode := node
	if decl := declarationOf(node); decl != nil && decl.Type() == "type_declaration" && decl.NamedChildCount() == 1 {
		docNode = decl
	}

	unitType := "type"
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		switch typeNode.Type() {
		case "struct_type":
			unitType = "struct"
		case "interface_type":
			unitType = "interface"
		}
	}

	return &CodeUnit{
		ID:          unitID(filepath, name, node),
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		UnitType:    unitType,
		Name:        name,
		Signature:   "type " + node.Content(sourceCode),
		Description: extractDocComment(docNode, sourceCode),
	}
}

func (g *GoLanguage) extractFunctionUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	unit := &CodeUnit{
		ID:          unitID(filepath, name, node),
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		UnitType:    "function",
		Name:        name,
		Description: extractDocComment(node, sourceCode),
	}

	if node.Type() == "method_declaration" {
		unit.UnitType = "method"
		if receiverNode := node.ChildByFieldName("receiver"); receiverNode != nil {
			unit.Receiver = receiverTypeName(receiverNode.Content(sourceCode))
		}
	}

	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		unit.Signature = strings.TrimSpace(string(sourceCode[node.StartByte():bodyNode.StartByte()]))
	} else {
		unit.Signature = node.Content(sourceCode)
	}
	return unit
}

// extractValueUnit handles const and var specs. Grouped declarations fall
// back to the group's doc comment when the spec has none.
func (g *GoLanguage) extractValueUnit(node *sitter.Node, sourceCode []byte, filepath, keyword, unitType string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	docComment := extractDocComment(node, sourceCode)
	if decl := declarationOf(node); docComment == "" && decl != nil {
		docComment = extractDocComment(decl, sourceCode)
	}

	return &CodeUnit{
		ID:          unitID(filepath, name, node),
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		UnitType:    unitType,
		Name:        name,
		Signature:   keyword + " " + node.Content(sourceCode),
		Description: docComment,
	}
}

// isTopLevel reports whether the declaration holding node sits directly in
// the source file rather than in a function body.
func isTopLevel(node *sitter.Node) bool {
	for n := node.Parent(); n != nil; n = n.Parent() {
		switch n.Type() {
		case "source_file":
			return true
		case "block", "func_literal":
			return false
		}
	}
	return false
}

// declarationOf returns the const/var/type declaration enclosing a spec.
func declarationOf(spec *sitter.Node) *sitter.Node {
	n := spec.Parent()
	for n != nil && strings.HasSuffix(n.Type(), "_list") {
		n = n.Parent()
	}
	return n
}

func unitID(filepath, name string, node *sitter.Node) string {
	return fmt.Sprintf("%s:%s:%d", filepath, name, node.StartPoint().Row+1)
}

func extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var commentLines []string
	currentNode := node
	for {
		prevSibling := currentNode.PrevSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" {
			break
		}
		commentLines = append([]string{prevSibling.Content(sourceCode)}, commentLines...)
		currentNode = prevSibling
	}
	return cleanDocComment(strings.Join(commentLines, "\n"))
}

// receiverTypeName reduces "(u *User[T])" to "User".
func receiverTypeName(receiver string) string {
	r := strings.Trim(strings.TrimSpace(receiver), "()")
	if i := strings.Index(r, "["); i >= 0 {
		r = r[:i]
	}
	fields := strings.Fields(r)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[len(fields)-1], "*")
}

func isExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

func cleanDocComment(rawComment string) string {
	if rawComment == "" {
		return ""
	}
	lines := strings.Split(rawComment, "\n")
	var cleaned []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		cleaned = append(cleaned, strings.TrimSpace(l))
	}
	return strings.Join(cleaned, "\n")
}
