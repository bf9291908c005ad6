package extractor

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parser runs a language extractor over source files.
type Parser struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewParser creates a parser for a given language.
func NewParser(lang string) (*Parser, error) {
	var langExt LanguageExtractor
	switch lang {
	case "go":
		langExt = &GoLanguage{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Parser{langExtractor: langExt, langName: lang}, nil
}

// ParseFile parses a single source file and extracts its documented units.
func (p *Parser) ParseFile(ctx context.Context, filepath string) (*FileUnits, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return p.ParseSource(ctx, filepath, sourceCode)
}

// ParseSource is ParseFile on in-memory source.
func (p *Parser) ParseSource(ctx context.Context, filepath string, sourceCode []byte) (*FileUnits, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	defer tree.Close()

	result := &FileUnits{Path: filepath}
	result.Package, result.PackageDoc = p.detectPackage(tree.RootNode(), sourceCode)

	query, err := sitter.NewQuery([]byte(p.langExtractor.GetQuery()), p.langExtractor.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			captureName := query.CaptureNameForId(c.Index)
			unit := p.langExtractor.ExtractUnit(captureName, c.Node, sourceCode, filepath)
			if unit != nil {
				unit.Package = result.Package
				result.Units = append(result.Units, unit)
			}
		}
	}

	return result, nil
}

func (p *Parser) detectPackage(root *sitter.Node, sourceCode []byte) (string, string) {
	if p.langName != "go" {
		return "", ""
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "package_clause" {
			continue
		}
		var name string
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if id := child.NamedChild(j); id.Type() == "package_identifier" {
				name = id.Content(sourceCode)
			}
		}
		return name, extractDocComment(child, sourceCode)
	}
	return "", ""
}
