package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docsync/internal/crawler"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/modfile"
)

// GoExtractor documents Go packages in-process. Its output follows the same
// layout as pydoc-markdown: an anchor and a level-one title for the package,
// then an anchor and a level-two heading per exported symbol.
type GoExtractor struct {
	root       string
	modulePath string
	parser     *Parser
	crawler    *crawler.Crawler
	logger     *log.Logger
}

// NewGoExtractor creates an extractor for the Go module rooted at root.
func NewGoExtractor(root string, logger *log.Logger) (*GoExtractor, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	parser, err := NewParser("go")
	if err != nil {
		return nil, err
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		return nil, err
	}
	return &GoExtractor{
		root:       root,
		modulePath: modulePath,
		parser:     parser,
		crawler:    crawler.NewCrawler(),
		logger:     logger,
	}, nil
}

// ModulePath is the path declared in go.mod.
func (g *GoExtractor) ModulePath() string {
	return g.modulePath
}

// Packages lists the import paths of every package under the root, root
// package first.
func (g *GoExtractor) Packages() ([]string, error) {
	dirs, err := g.crawler.ScanPackages(g.root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", g.root, err)
	}
	modules := make([]string, len(dirs))
	for i, d := range dirs {
		if d == "." {
			modules[i] = g.modulePath
		} else {
			modules[i] = g.modulePath + "/" + d
		}
	}
	return modules, nil
}

// Extract renders the documentation of one package. module is an import
// path below the module path, or a directory relative to the root.
func (g *GoExtractor) Extract(ctx context.Context, module string) (string, error) {
	dir := g.packageDir(module)
	files, err := g.crawler.PackageFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no Go files in %s", dir)
	}

	var parsed []*FileUnits
	for _, f := range files {
		fu, err := g.parser.ParseFile(ctx, f)
		if err != nil {
			return "", err
		}
		parsed = append(parsed, fu)
	}
	g.logger.Debug("parsed package", "module", module, "files", len(files))
	return RenderFragment(module, parsed), nil
}

func (g *GoExtractor) packageDir(module string) string {
	rel := module
	switch {
	case module == g.modulePath:
		rel = "."
	case strings.HasPrefix(module, g.modulePath+"/"):
		rel = strings.TrimPrefix(module, g.modulePath+"/")
	}
	return filepath.Join(g.root, filepath.FromSlash(rel))
}

// RenderFragment writes the markdown for one package.
func RenderFragment(module string, files []*FileUnits) string {
	var sb strings.Builder
	sb.WriteString(anchor(module))
	sb.WriteString("# " + module + "\n\n")
	for _, f := range files {
		if f.PackageDoc != "" {
			sb.WriteString(f.PackageDoc + "\n\n")
			break
		}
	}

	var units []*CodeUnit
	for _, f := range files {
		units = append(units, f.Units...)
	}
	// files arrive sorted, keep source order inside each file
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].Filepath != units[j].Filepath {
			return units[i].Filepath < units[j].Filepath
		}
		return units[i].StartLine < units[j].StartLine
	})

	for _, u := range units {
		name := u.QualifiedName()
		sb.WriteString(anchor(module + "." + name))
		sb.WriteString("## " + name + "\n\n")
		sb.WriteString("```go\n" + u.Signature + "\n```\n\n")
		if u.Description != "" {
			sb.WriteString(u.Description + "\n\n")
		}
	}
	return sb.String()
}

func anchor(id string) string {
	return `<a id="` + id + `"></a>` + "\n\n"
}

func readModulePath(gomod string) (string, error) {
	data, err := os.ReadFile(gomod)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", gomod, err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("no module directive in %s", gomod)
	}
	return path, nil
}
