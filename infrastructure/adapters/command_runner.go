package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"slide-narrator/application/ports/outbound"
)

var ErrCommandNotFound = errors.New("command not found")

// CommandRunner runs an external tool and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execCommandRunner struct {
	logger outbound.LoggerPort
}

func NewExecCommandRunner(logger outbound.LoggerPort) CommandRunner {
	return &execCommandRunner{
		logger: logger,
	}
}

func (r *execCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.logger.DebugWithFields("running command", map[string]interface{}{
		"command": name + " " + strings.Join(args, " "),
	})

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", name, ErrCommandNotFound)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s did not finish: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}

	return nil, fmt.Errorf("failed to run %s: %w", name, err)
}
