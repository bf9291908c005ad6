package example

import "strings"

// Separator delimits blocks in an example file: two blank lines between sections.
const Separator = "\n\n\n"

// BlockKind tells how a block is rendered.
type BlockKind int

const (
	Prose BlockKind = iota
	Code
)

func (k BlockKind) String() string {
	if k == Prose {
		return "prose"
	}
	return "code"
}

// Block is a maximal span of source text between two separators.
type Block struct {
	Text  string
	Index int
}

// Lines returns the block split on single newlines.
// A block made only of whitespace has no lines.
func (b Block) Lines() []string {
	if strings.TrimSpace(b.Text) == "" {
		return nil
	}
	return strings.Split(b.Text, "\n")
}

// Segment splits text on the exact separator. Empty blocks produced by
// adjacent separators are kept as-is.
func Segment(text string) []Block {
	parts := strings.Split(text, Separator)
	blocks := make([]Block, len(parts))
	for i, p := range parts {
		blocks[i] = Block{Text: p, Index: i}
	}
	return blocks
}

// Join reverses Segment.
func Join(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, Separator)
}

// Classify returns Prose when every line of the block starts with the
// comment marker, Code otherwise.
func Classify(b Block, marker string) BlockKind {
	if all(b.Lines(), func(l string) bool { return strings.HasPrefix(l, marker) }) {
		return Prose
	}
	return Code
}

func all(lines []string, pred func(string) bool) bool {
	for _, l := range lines {
		if !pred(l) {
			return false
		}
	}
	return true
}
