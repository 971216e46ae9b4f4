package fccli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/partner-up-dev/fclayer/internal/errors"
	"github.com/partner-up-dev/fclayer/internal/logging"
)

// Runner runs an external program and returns what it wrote to stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs on the host with os/exec.
type ExecRunner struct {
	// Stderr receives the program's stderr in addition to the error tail.
	// Defaults to os.Stderr; set to io.Discard to silence it.
	Stderr io.Writer
	Logger *zap.Logger
}

// NewExecRunner creates an ExecRunner that forwards stderr to os.Stderr.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	return &ExecRunner{Stderr: os.Stderr, Logger: logging.OrNop(logger)}
}

// Run executes name with args and captures stdout. A non-zero exit is
// returned as a command error carrying the exit status and the end of stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := logging.OrNop(r.Logger)
	logger.Debug("running command", zap.String("program", name), zap.Strings("args", args))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("%s %s failed", name, strings.Join(args, " "))
		if tail := lastLines(stderr.String(), 5); tail != "" {
			msg = fmt.Sprintf("%s: %s", msg, tail)
		}
		return stdout.Bytes(), errors.NewCommandError(msg, err)
	}
	return stdout.Bytes(), nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
