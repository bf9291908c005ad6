package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int
	Text  string
}

// Outline parses a markdown body and returns its headings in order.
// Headings inside code blocks are not reported.
func Outline(body []byte) []Heading {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	headings := make([]Heading, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		headings = append(headings, Heading{Level: h.Level, Text: headingText(h, body)})
		return gmast.WalkSkipChildren, nil
	})
	return headings
}

func headingText(h *gmast.Heading, source []byte) string {
	var sb strings.Builder
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimSpace(sb.String())
}

// Problem describes a structural issue in an outline.
type Problem struct {
	Heading Heading
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %q: %s", strings.Repeat("#", p.Heading.Level), p.Heading.Text, p.Message)
}

// Check reports outline problems of a generated page: more than one
// level-one heading, and headings that skip a level on the way down.
func Check(headings []Heading) []Problem {
	var problems []Problem
	titles := 0
	prev := 0
	for _, h := range headings {
		if h.Level == 1 {
			titles++
			if titles > 1 {
				problems = append(problems, Problem{Heading: h, Message: "additional level-one heading"})
			}
		}
		if prev > 0 && h.Level > prev+1 {
			problems = append(problems, Problem{Heading: h, Message: fmt.Sprintf("jumps from level %d to %d", prev, h.Level)})
		}
		prev = h.Level
	}
	return problems
}

// Render prints an indented outline.
func Render(headings []Heading) string {
	var sb strings.Builder
	for _, h := range headings {
		sb.WriteString(strings.Repeat("  ", h.Level-1))
		sb.WriteString("- " + h.Text + "\n")
	}
	return sb.String()
}
