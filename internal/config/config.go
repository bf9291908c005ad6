package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anmitsu/go-shlex"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when the configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

const (
	ExtractorCommand = "command"
	ExtractorGo      = "go"
)

type Page struct {
	Source string `yaml:"source" json:"source,omitempty"`
	Output string `yaml:"output" json:"output"`
}

type Example struct {
	Page            `yaml:",inline"`
	Title           string `yaml:"title" json:"title"`
	Language        string `yaml:"language" json:"language"`
	CommentMarker   string `yaml:"comment_marker" json:"comment_marker"`
	FormatDirective string `yaml:"format_directive" json:"format_directive"`
}

type Extractor struct {
	Kind    string   `yaml:"kind" json:"kind"`
	Command []string `yaml:"command" json:"command,omitempty"`
}

type Reference struct {
	Output       string    `yaml:"output" json:"output"`
	Title        string    `yaml:"title" json:"title"`
	AnchorPrefix string    `yaml:"anchor_prefix" json:"anchor_prefix"`
	HeadingShift int       `yaml:"heading_shift" json:"heading_shift"`
	Modules      []string  `yaml:"modules" json:"modules"`
	Extractor    Extractor `yaml:"extractor" json:"extractor"`
}

type Config struct {
	Project struct {
		Root string `yaml:"root" json:"root"`
	} `yaml:"project" json:"project"`
	Overview  Page      `yaml:"overview" json:"overview"`
	Example   Example   `yaml:"example" json:"example"`
	Reference Reference `yaml:"reference" json:"reference"`
	State     struct {
		DB string `yaml:"db" json:"db"`
	} `yaml:"state" json:"state"`
}

// Default returns the layout of a Python package documented with
// pydoc-markdown: README.md and example.py rendered into docs/pages.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Overview = Page{Source: "README.md", Output: "docs/pages/index.mdx"}
	cfg.Example = Example{
		Page:            Page{Source: "example.py", Output: "docs/pages/examples.mdx"},
		Title:           "Example Usage",
		Language:        "python",
		CommentMarker:   "#",
		FormatDirective: "# fmt: off",
	}
	cfg.Reference = Reference{
		Output:       "docs/pages/api-reference.mdx",
		Title:        "API Reference",
		AnchorPrefix: `<a id="`,
		HeadingShift: 1,
		Extractor: Extractor{
			Kind:    ExtractorCommand,
			Command: []string{"pydoc-markdown", "--module={module}"},
		},
	}
	cfg.State.DB = ".docsync.db"
	return cfg
}

// LoadConfig reads the YAML file at path on top of the defaults. A missing
// file is not an error: the defaults are used as-is.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if root := os.Getenv("DOCSYNC_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if kind := os.Getenv("DOCSYNC_EXTRACTOR"); kind != "" {
		cfg.Reference.Extractor.Kind = kind
	}
	if command := os.Getenv("DOCSYNC_EXTRACTOR_COMMAND"); command != "" {
		args, err := shlex.Split(command, true)
		if err != nil {
			return nil, fmt.Errorf("%w: DOCSYNC_EXTRACTOR_COMMAND: %w", ErrInvalid, err)
		}
		cfg.Reference.Extractor.Command = args
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path resolves a configured path against the project root.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Project.Root, p)
}

// Outputs lists every page the generator owns, in write order.
func (c *Config) Outputs() []string {
	return []string{
		c.Path(c.Overview.Output),
		c.Path(c.Example.Output),
		c.Path(c.Reference.Output),
	}
}
