package extractor

import sitter "github.com/smacker/go-tree-sitter"

// CodeUnit is one documented symbol of a source file.
type CodeUnit struct {
	ID          string `json:"id"`
	Filepath    string `json:"filepath"`
	Package     string `json:"package"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	UnitType    string `json:"unit_type"` // function, method, struct, interface, type, constant, variable
	Name        string `json:"name"`
	Receiver    string `json:"receiver,omitempty"`
	Signature   string `json:"signature"`
	Description string `json:"description"`
}

// QualifiedName is the name used in headings: methods are prefixed with
// their receiver type.
func (u *CodeUnit) QualifiedName() string {
	if u.Receiver != "" {
		return u.Receiver + "." + u.Name
	}
	return u.Name
}

// FileUnits is everything extracted from a single file.
type FileUnits struct {
	Path       string
	Package    string
	PackageDoc string
	Units      []*CodeUnit
}

// LanguageExtractor is implemented by each supported source language.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit
}
