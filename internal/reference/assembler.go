package reference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrExtract marks a failure of the external extraction tool.
var ErrExtract = errors.New("extract failed")

// Extractor produces the raw markdown documentation of one module.
type Extractor interface {
	Extract(ctx context.Context, module string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, module string) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, module string) (string, error) {
	return f(ctx, module)
}

// Options controls normalization and assembly.
type Options struct {
	Title        string
	AnchorPrefix string
	// Offset is added to the level of every submodule heading.
	Offset int
}

// DefaultOptions nests submodules one level below the page title.
func DefaultOptions() Options {
	return Options{
		Title:        "API Reference",
		AnchorPrefix: DefaultAnchorPrefix,
		Offset:       1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.AnchorPrefix == "" {
		o.AnchorPrefix = d.AnchorPrefix
	}
	if o.Offset <= 0 {
		o.Offset = d.Offset
	}
	return o
}

// Fragment is the normalized documentation of one module.
type Fragment struct {
	Module   string
	Markdown string
	// Overflow holds headings shifted past level 6, which render as text.
	Overflow []string
}

// Assembler builds the API reference page from one fragment per module.
type Assembler struct {
	extractor Extractor
	opts      Options
	logger    *log.Logger
}

// NewAssembler creates an assembler around an extractor.
func NewAssembler(ext Extractor, opts Options, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Assembler{extractor: ext, opts: opts.withDefaults(), logger: logger}
}

// Fragments fetches and normalizes every module in order. modules[0] is the
// package root. The first extraction error aborts the whole run.
func (a *Assembler) Fragments(ctx context.Context, modules []string) ([]Fragment, error) {
	if len(modules) == 0 {
		return nil, fmt.Errorf("no modules to document")
	}

	fragments := make([]Fragment, 0, len(modules))
	for i, module := range modules {
		raw, err := a.extractor.Extract(ctx, module)
		if err != nil {
			return nil, fmt.Errorf("%w: module %s: %w", ErrExtract, module, err)
		}

		f := Fragment{Module: module}
		if i == 0 {
			f.Markdown = NormalizeRoot(raw, module, a.opts)
		} else {
			f.Markdown = Normalize(raw, module, a.opts)
			f.Overflow = OverflowHeadings(raw, a.opts.Offset)
		}
		for _, h := range f.Overflow {
			a.logger.Warn("heading shifted past level 6", "module", module, "heading", h)
		}
		a.logger.Debug("normalized fragment", "module", module, "root", i == 0, "bytes", len(f.Markdown))
		fragments = append(fragments, f)
	}
	return fragments, nil
}

// Assemble returns the full API reference page.
func (a *Assembler) Assemble(ctx context.Context, modules []string) (string, error) {
	fragments, err := a.Fragments(ctx, modules)
	if err != nil {
		return "", err
	}
	return a.Page(fragments), nil
}

// Page joins already normalized fragments under the configured title.
func (a *Assembler) Page(fragments []Fragment) string {
	return Concat(a.opts.Title, fragments)
}

// Concat joins fragments under a title line without adding separators.
func Concat(title string, fragments []Fragment) string {
	var sb strings.Builder
	sb.WriteString("# " + title + "\n")
	for _, f := range fragments {
		sb.WriteString(f.Markdown)
	}
	return sb.String()
}
