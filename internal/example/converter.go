package example

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Options controls how an example file is turned into markdown.
type Options struct {
	Title           string
	Language        string
	CommentMarker   string
	FormatDirective string
}

// DefaultOptions matches a Python example file formatted with black.
func DefaultOptions() Options {
	return Options{
		Title:           "Example Usage",
		Language:        "python",
		CommentMarker:   "#",
		FormatDirective: "# fmt: off",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Language == "" {
		o.Language = d.Language
	}
	if o.CommentMarker == "" {
		o.CommentMarker = d.CommentMarker
	}
	return o
}

// Converter renders example source files as markdown pages.
type Converter struct {
	opts   Options
	logger *log.Logger
}

// NewConverter creates a converter. A nil logger discards debug output.
func NewConverter(opts Options, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Converter{opts: opts.withDefaults(), logger: logger}
}

// Convert turns the example source into a markdown document that alternates
// prose sections and fenced code blocks in source order.
func (c *Converter) Convert(src []byte) string {
	text := Preprocess(string(src), c.opts.FormatDirective)

	rendered := []string{"# " + c.opts.Title}
	for _, b := range Segment(text) {
		kind := Classify(b, c.opts.CommentMarker)
		c.logger.Debug("example block", "index", b.Index, "kind", kind, "lines", len(b.Lines()))
		if kind == Prose {
			rendered = append(rendered, c.renderProse(b))
		} else {
			rendered = append(rendered, c.renderCode(b))
		}
	}
	return strings.Join(rendered, "\n\n")
}

// Convert renders src with the given options.
func Convert(src []byte, opts Options) string {
	return NewConverter(opts, nil).Convert(src)
}

// Preprocess trims the document and drops every line that equals the
// formatter directive exactly.
func Preprocess(text, directive string) string {
	text = strings.Trim(text, " \n\t")
	if directive == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l != directive {
			kept = append(kept, l)
		}
	}
	// the directive usually sits on the first line
	return strings.Trim(strings.Join(kept, "\n"), " \n\t")
}

func (c *Converter) renderProse(b Block) string {
	lines := b.Lines()
	out := make([]string, len(lines))
	for i, l := range lines {
		l = strings.TrimPrefix(l, c.opts.CommentMarker)
		out[i] = strings.TrimPrefix(l, " ")
	}
	return strings.Join(out, "\n")
}

func (c *Converter) renderCode(b Block) string {
	return "```" + c.opts.Language + "\n" + b.Text + "\n```"
}
