// Package binary runs the external media tools salvo shells out to.
package binary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/farcloser/primordium/fault"
)

// stderr beyond this is dropped from error messages.
const maxStderr = 2048

// Lookup resolves name in PATH.
func Lookup(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	return path, nil
}

// Run executes name with args under timeout, streaming stdout to output.
// Deadline expiry maps to fault.ErrTimeout, any other failure to fault.ErrCommandFailure.
func Run(ctx context.Context, name string, timeout time.Duration, output io.Writer, args ...string) error {
	path, err := Lookup(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // arguments are built by the callers from user-provided media paths
	cmd := exec.CommandContext(ctx, path, args...)

	var stderr bytes.Buffer

	cmd.Stdout = output
	cmd.Stderr = &stderr

	if err = cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %v", fault.ErrTimeout, name, timeout)
		}

		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr]
		}

		return fmt.Errorf("%w: %s: %s: %w", fault.ErrCommandFailure, name, msg, err)
	}

	return nil
}
