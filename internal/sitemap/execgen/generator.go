// Package execgen wraps an out-of-process sitemap generator, typically a
// browser-driven tool that can map dynamically rendered sites the link walk
// cannot see.
package execgen

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// urlPlaceholder marks where the base URL is substituted into the command.
const urlPlaceholder = "{url}"

// Config describes the external command and where it writes its sitemap.
type Config struct {
	// Command is the argv to run. Occurrences of {url} are replaced with
	// the base URL; if no placeholder is present the URL is appended.
	Command []string
	// OutputFile is the sitemap path the command is expected to produce.
	OutputFile string
}

// Generator invokes the external command.
type Generator struct {
	cfg    Config
	logger *zap.Logger
}

// New constructs a Generator.
func New(cfg Config, logger *zap.Logger) (*Generator, error) {
	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("generator command is required")
	}
	if strings.TrimSpace(cfg.OutputFile) == "" {
		return nil, fmt.Errorf("output file is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cfg: cfg, logger: logger}, nil
}

// Generate runs the command for baseURL and returns the configured output
// path. A non-zero exit is a hard failure; there is nothing to fall back to
// beyond this generator.
func (g *Generator) Generate(ctx context.Context, baseURL string) (string, error) {
	argv := g.buildArgv(baseURL)
	g.logger.Info("running sitemap generator", zap.Strings("argv", argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) // #nosec G204 -- command comes from operator configuration.
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("sitemap generator %q: %w (output: %s)", argv[0], err, tail(output))
	}
	return g.cfg.OutputFile, nil
}

func (g *Generator) buildArgv(baseURL string) []string {
	argv := make([]string, 0, len(g.cfg.Command)+1)
	substituted := false
	for _, arg := range g.cfg.Command {
		if strings.Contains(arg, urlPlaceholder) {
			arg = strings.ReplaceAll(arg, urlPlaceholder, baseURL)
			substituted = true
		}
		argv = append(argv, arg)
	}
	if !substituted {
		argv = append(argv, baseURL)
	}
	return argv
}

// tail keeps error messages readable when the tool is chatty.
func tail(output []byte) string {
	const max = 512
	text := strings.TrimSpace(string(output))
	if len(text) <= max {
		return text
	}
	return "..." + text[len(text)-max:]
}
