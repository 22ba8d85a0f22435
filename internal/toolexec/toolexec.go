// Package toolexec runs the external binaries rawsort delegates to and
// classifies their failures with the services error markers.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"rawsort/internal/services"
)

// stderrLimit caps how much tool stderr is echoed into error messages.
const stderrLimit = 512

// Executor abstracts command execution for testability.
type Executor interface {
	// Output runs binary and returns its stdout. A missing binary yields an
	// error matching services.ErrNotFound; a non-zero exit yields
	// services.ErrExternalTool.
	Output(ctx context.Context, binary string, args ...string) ([]byte, error)
}

// CommandExecutor runs real processes via os/exec.
type CommandExecutor struct {
	// Timeout bounds each invocation. Zero waits indefinitely.
	Timeout time.Duration
}

// NewCommandExecutor returns an executor that applies timeout to every call.
func NewCommandExecutor(timeout time.Duration) CommandExecutor {
	return CommandExecutor{Timeout: timeout}
}

// Output implements Executor.
func (e CommandExecutor) Output(ctx context.Context, binary string, args ...string) ([]byte, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "exec", "", "binary not configured", nil)
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classify(ctx, binary, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func classify(ctx context.Context, binary string, err error, stderr string) error {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return services.Wrap(services.ErrNotFound, binary, "start", "binary unavailable", err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, binary, "wait", "timed out", err)
	}
	detail := strings.TrimSpace(stderr)
	if len(detail) > stderrLimit {
		detail = detail[:stderrLimit] + "..."
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := fmt.Sprintf("exit status %d", exitErr.ExitCode())
		if detail != "" {
			msg += ": " + detail
		}
		return services.Wrap(services.ErrExternalTool, binary, "run", msg, nil)
	}
	return services.Wrap(services.ErrExternalTool, binary, "run", detail, err)
}
