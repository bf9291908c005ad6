package generator

import (
	"context"
	"fmt"
	"io"
	"os"

	"docsync/internal/config"
	"docsync/internal/example"
	"docsync/internal/extractor"
	"docsync/internal/markdown"
	"docsync/internal/reference"

	"github.com/charmbracelet/log"
)

// Page is one rendered documentation page.
type Page struct {
	Name    string
	Path    string
	Content []byte
}

// Pages holds everything a run produces, in write order.
type Pages struct {
	Overview  Page
	Example   Page
	Reference Page
}

// All returns the pages in write order.
func (p *Pages) All() []Page {
	return []Page{p.Overview, p.Example, p.Reference}
}

// Result summarizes a completed run.
type Result struct {
	Modules []string
	Pages   []PageDigest
}

// Pipeline regenerates the documentation pages of one project.
type Pipeline struct {
	cfg       *config.Config
	converter *example.Converter
	assembler *reference.Assembler
	modules   []string
	logger    *log.Logger
}

// NewPipeline wires a pipeline around an extractor. modules lists the package
// root first.
func NewPipeline(cfg *config.Config, ext reference.Extractor, modules []string, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	conv := example.NewConverter(example.Options{
		Title:           cfg.Example.Title,
		Language:        cfg.Example.Language,
		CommentMarker:   cfg.Example.CommentMarker,
		FormatDirective: cfg.Example.FormatDirective,
	}, logger)
	asm := reference.NewAssembler(ext, reference.Options{
		Title:        cfg.Reference.Title,
		AnchorPrefix: cfg.Reference.AnchorPrefix,
		Offset:       cfg.Reference.HeadingShift,
	}, logger)
	return &Pipeline{
		cfg:       cfg,
		converter: conv,
		assembler: asm,
		modules:   modules,
		logger:    logger,
	}
}

// NewFromConfig builds the configured extractor and a pipeline using it.
// With the go extractor and no configured modules, every package of the
// module is documented.
func NewFromConfig(cfg *config.Config, logger *log.Logger) (*Pipeline, error) {
	root := cfg.Project.Root
	modules := cfg.Reference.Modules

	var ext reference.Extractor
	switch cfg.Reference.Extractor.Kind {
	case config.ExtractorGo:
		goExt, err := extractor.NewGoExtractor(root, logger)
		if err != nil {
			return nil, err
		}
		if len(modules) == 0 {
			if modules, err = goExt.Packages(); err != nil {
				return nil, err
			}
		}
		ext = goExt
	case config.ExtractorCommand:
		cmdExt, err := extractor.NewCommandExtractor(cfg.Reference.Extractor.Command, root, logger)
		if err != nil {
			return nil, err
		}
		ext = cmdExt
	default:
		return nil, fmt.Errorf("%w: unknown extractor %q", config.ErrInvalid, cfg.Reference.Extractor.Kind)
	}
	return NewPipeline(cfg, ext, modules, logger), nil
}

// Modules returns the modules documented by the reference page.
func (p *Pipeline) Modules() []string {
	return p.modules
}

// Render produces every page in memory. Nothing is written.
func (p *Pipeline) Render(ctx context.Context) (*Pages, error) {
	return p.render(ctx, nil)
}

func (p *Pipeline) render(ctx context.Context, report *Report) (*Pages, error) {
	stage := report.BeginStage("sources")
	overview, err := os.ReadFile(p.cfg.Path(p.cfg.Overview.Source))
	if err != nil {
		err = fmt.Errorf("failed to read overview: %w", err)
		report.EndStage(stage, nil, err)
		return nil, err
	}
	exampleRaw, err := os.ReadFile(p.cfg.Path(p.cfg.Example.Source))
	if err != nil {
		err = fmt.Errorf("failed to read example: %w", err)
		report.EndStage(stage, nil, err)
		return nil, err
	}
	report.EndStage(stage, map[string]float64{
		"overview_bytes": float64(len(overview)),
		"example_bytes":  float64(len(exampleRaw)),
	}, nil)

	stage = report.BeginStage("example")
	examplePage := p.converter.Convert(exampleRaw)
	blocks := example.Segment(example.Preprocess(string(exampleRaw), p.cfg.Example.FormatDirective))
	report.EndStage(stage, map[string]float64{"blocks": float64(len(blocks))}, nil)

	stage = report.BeginStage("reference")
	p.logger.Info("extracting reference", "modules", len(p.modules))
	fragments, err := p.assembler.Fragments(ctx, p.modules)
	if err != nil {
		report.EndStage(stage, nil, err)
		report.AddSignal("extract_failed", "reference", "critical", err.Error())
		return nil, err
	}
	for _, f := range fragments {
		for _, h := range f.Overflow {
			report.AddSignal("heading_overflow", "reference", "warning",
				fmt.Sprintf("module %s: %q shifted past level 6", f.Module, h))
		}
	}
	referencePage := p.assembler.Page(fragments)
	for _, problem := range markdown.Check(markdown.Outline([]byte(referencePage))) {
		p.logger.Warn("reference outline", "problem", problem.String())
		report.AddSignal("outline", "reference", "warning", problem.String())
	}
	report.EndStage(stage, map[string]float64{"modules": float64(len(p.modules))}, nil)

	return &Pages{
		Overview:  Page{Name: "overview", Path: p.cfg.Path(p.cfg.Overview.Output), Content: overview},
		Example:   Page{Name: "example", Path: p.cfg.Path(p.cfg.Example.Output), Content: []byte(examplePage)},
		Reference: Page{Name: "reference", Path: p.cfg.Path(p.cfg.Reference.Output), Content: []byte(referencePage)},
	}, nil
}

// Write replaces every page on disk.
func (p *Pipeline) Write(pages *Pages) ([]PageDigest, error) {
	return p.write(pages, nil)
}

func (p *Pipeline) write(pages *Pages, report *Report) ([]PageDigest, error) {
	stage := report.BeginStage("write")
	digests := make([]PageDigest, 0, 3)
	for _, page := range pages.All() {
		if err := WriteFileAtomic(page.Path, page.Content); err != nil {
			err = fmt.Errorf("failed to write %s page: %w", page.Name, err)
			report.EndStage(stage, nil, err)
			return nil, err
		}
		d := DigestBytes(page.Path, page.Content)
		p.logger.Debug("wrote page", "page", page.Name, "path", page.Path, "sha256", d.SHA256)
		report.AddPage(PageMetric{
			Name:     page.Name,
			Path:     page.Path,
			Size:     d.Size,
			SHA256:   d.SHA256,
			Headings: len(markdown.Outline(page.Content)),
		})
		digests = append(digests, d)
	}
	report.EndStage(stage, map[string]float64{"pages": float64(len(digests))}, nil)
	return digests, nil
}

// Run renders all pages and only then writes them.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	return p.RunWithReport(ctx, nil)
}

// RunWithReport is Run that also records stage timings, page metrics and
// outline warnings into report. report may be nil.
func (p *Pipeline) RunWithReport(ctx context.Context, report *Report) (*Result, error) {
	if report != nil {
		report.Modules = p.modules
	}
	pages, err := p.render(ctx, report)
	if err != nil {
		return nil, err
	}
	digests, err := p.write(pages, report)
	if err != nil {
		return nil, err
	}
	return &Result{Modules: p.modules, Pages: digests}, nil
}
