package assess

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"repodoctor/internal/pipeline"
)

// AnalyzerConfig describes one external static-analysis pass.
type AnalyzerConfig struct {
	Name    string
	Command string // shell command with a {file} placeholder
	Parser  string
	Timeout time.Duration
}

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, command string) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner by shelling out.
type ExecRunner struct{}

// Run executes command through the shell in dir.
func (e *ExecRunner) Run(ctx context.Context, dir string, command string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec: %w", err)
		}
	}
	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// shellNotFound is the exit status shells report for a missing command.
const shellNotFound = 127

// Runner writes candidate content to a throwaway file, executes an
// analyzer against it, and normalizes the output through the configured
// parser. Temporary artifacts are removed on every exit path.
type Runner struct {
	cmd     CommandRunner
	parsers map[string]Parser
}

// NewRunner creates a Runner with the built-in parsers registered.
func NewRunner(cmd CommandRunner) *Runner {
	return &Runner{
		cmd: cmd,
		parsers: map[string]Parser{
			"flake8": &Flake8Parser{},
			"pylint": &PylintParser{},
		},
	}
}

// Run executes one analyzer pass over content. pathHint names the temp
// file so analyzer output stays recognizable. A missing analyzer binary
// degrades to no issues with exit status 0 rather than failing the run.
func (r *Runner) Run(ctx context.Context, content, pathHint string, cfg AnalyzerConfig) pipeline.AnalyzerResult {
	parser, ok := r.parsers[cfg.Parser]
	if !ok {
		return pipeline.AnalyzerResult{Stderr: fmt.Sprintf("unknown parser %q", cfg.Parser)}
	}

	dir, err := os.MkdirTemp("", "repodoctor-*")
	if err != nil {
		return pipeline.AnalyzerResult{ExitCode: 1, Stderr: fmt.Sprintf("create temp dir: %v", err)}
	}
	defer os.RemoveAll(dir)

	name := strings.ReplaceAll(pathHint, "/", "_")
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return pipeline.AnalyzerResult{ExitCode: 1, Stderr: fmt.Sprintf("write temp file: %v", err)}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := strings.ReplaceAll(cfg.Command, "{file}", "'"+path+"'")
	stdout, stderr, exitCode, err := r.cmd.Run(runCtx, dir, command)

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return pipeline.AnalyzerResult{ExitCode: exitCode, Stderr: fmt.Sprintf("%s timed out after %s", cfg.Name, timeout)}
	case err != nil:
		// Shell itself unavailable; treat like a missing tool.
		return pipeline.AnalyzerResult{Stderr: fmt.Sprintf("%s unavailable: %v", cfg.Name, err)}
	case exitCode == shellNotFound:
		return pipeline.AnalyzerResult{Stderr: fmt.Sprintf("%s not installed", cfg.Name)}
	}

	return pipeline.AnalyzerResult{
		ExitCode: exitCode,
		Issues:   parser.Parse(stdout, stderr, exitCode),
		Stderr:   strings.TrimSpace(stderr),
	}
}
