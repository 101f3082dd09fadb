// Package runner executes external toolchain commands with a per-command
// timeout and captures their output. Tool failures are data, not errors: a
// missing binary or a timeout comes back as a synthesized exit code so the
// harness can degrade that side and keep going.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/effortless-metrics/mtpcompat/internal/logger"
)

// Exit codes synthesized for failures that never reach the child process,
// matching shell conventions.
const (
	ExitNotFound = 127
	ExitTimeout  = 124
)

// Result is the captured outcome of one command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output returns stdout and stderr concatenated, the raw log shape the
// evidence bundle stores.
func (r Result) Output() string {
	return r.Stdout + r.Stderr
}

// Runner executes commands with a shared timeout.
type Runner struct {
	Timeout time.Duration
	Dir     string
	log     logger.Logger
}

// New creates a runner. A zero timeout means no limit.
func New(timeout time.Duration, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{Timeout: timeout, log: log}
}

// Run executes name with args and returns the captured result. Non-zero
// exits are normal results, never errors.
func (r *Runner) Run(ctx context.Context, name string, args ...string) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	r.log.Debug("exec", logger.String("command", name+" "+strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.ExitCode = ExitTimeout
		result.Stderr += fmt.Sprintf("timed out after %s: %s %s", r.Timeout, name, strings.Join(args, " "))
	case errors.Is(err, exec.ErrNotFound):
		result.ExitCode = ExitNotFound
		result.Stderr += fmt.Sprintf("command not found: %s", name)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Stderr += err.Error()
		}
	}

	return result
}

// LookTool reports whether name resolves on PATH.
func LookTool(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ToolVersion returns a short version string for name, trying the common
// version flags in order. Empty when none of them succeed.
func (r *Runner) ToolVersion(ctx context.Context, name string) string {
	for _, flag := range []string{"--version", "-V", "version"} {
		res := r.Run(ctx, name, flag)
		if res.ExitCode != 0 {
			continue
		}
		out := strings.TrimSpace(res.Stdout)
		if out == "" {
			out = strings.TrimSpace(res.Stderr)
		}
		if out == "" {
			return "?"
		}
		if idx := strings.IndexByte(out, '\n'); idx >= 0 {
			out = out[:idx]
		}
		return out
	}
	return ""
}
