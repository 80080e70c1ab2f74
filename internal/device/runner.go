package device

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"codeberg.org/mutker/coolctl/internal/errors"
)

// DefaultExecutable is looked up in PATH when no path is configured.
const DefaultExecutable = "liquidctl"

// Runner executes liquidctl with the given arguments and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs the liquidctl executable.
type ExecRunner struct {
	Path string
}

func NewExecRunner(path string) *ExecRunner {
	if path == "" {
		path = DefaultExecutable
	}

	return &ExecRunner{Path: path}
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.New().Wrap(errors.ErrUnavailable, err).WithData(struct {
			Command string
			Stderr  string
		}{
			Command: r.Path + " " + strings.Join(args, " "),
			Stderr:  msg,
		})
	}

	return out, nil
}
