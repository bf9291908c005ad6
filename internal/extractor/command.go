package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// ModulePlaceholder is replaced by the module name in command arguments.
const ModulePlaceholder = "{module}"

// DefaultCommand invokes pydoc-markdown for one module.
var DefaultCommand = []string{"pydoc-markdown", "--module=" + ModulePlaceholder}

// CommandExtractor runs an external documentation tool once per module and
// returns its standard output.
type CommandExtractor struct {
	command []string
	dir     string
	logger  *log.Logger
}

// NewCommandExtractor creates an extractor running command in dir.
func NewCommandExtractor(command []string, dir string, logger *log.Logger) (*CommandExtractor, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, fmt.Errorf("extractor command is empty")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CommandExtractor{command: command, dir: dir, logger: logger}, nil
}

// Extract runs the command for module. A non-zero exit status is an error
// carrying the tool's stderr.
func (c *CommandExtractor) Extract(ctx context.Context, module string) (string, error) {
	args := make([]string, len(c.command))
	for i, a := range c.command {
		args[i] = strings.ReplaceAll(a, ModulePlaceholder, module)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("running extractor", "module", module, "args", args)
	output, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%s failed: %w", args[0], err)
		}
		return "", fmt.Errorf("%s failed: %w: %s", args[0], err, msg)
	}
	return string(output), nil
}
