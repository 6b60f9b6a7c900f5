package llm

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CLI shells out to `ollama run <model>` for hosts without an
// API-compatible endpoint enabled.
type CLI struct {
	model   string
	timeout time.Duration

	// run is swappable for tests.
	run func(ctx context.Context, prompt string) (string, error)
}

// NewCLI creates the exec-based client.
func NewCLI(model string, timeout time.Duration) *CLI {
	c := &CLI{model: model, timeout: timeout}
	c.run = c.exec
	return c
}

// Generate implements Generator.
func (c *CLI) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.run(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("ollama timed out after %s", c.timeout)
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *CLI) exec(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, "ollama", "run", c.model, prompt)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("ollama not found in PATH: %w", err)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("ollama run: %s: %w", detail, err)
	}
	return stdout.String(), nil
}
