package bookbind

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/drennalls/bookbind/internal/execx"
)

// Engine converts one document into one target format by invoking one
// backend. Implementations never leave a partial artifact: on failure
// targetPath does not exist when Render returns, so the chain can retry
// with a clean slate.
type Engine interface {
	ID() EngineID
	Render(ctx context.Context, scope *TempScope, source, targetPath string, opts *StyleOptions) error
}

// EngineExecutionError describes the failure of one engine attempt. It
// wraps one of the kind sentinels (ErrToolMissing, ErrNonZeroExit,
// ErrRenderTimeout) and is always recovered by the chain, never surfaced
// to the caller directly.
type EngineExecutionError struct {
	Engine EngineID
	Err    error  // kind sentinel, possibly wrapping the underlying cause
	Detail string // tool diagnostics (stderr tail), if any
}

func (e *EngineExecutionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("engine %s: %v: %s", e.Engine, e.Err, e.Detail)
	}
	return fmt.Sprintf("engine %s: %v", e.Engine, e.Err)
}

func (e *EngineExecutionError) Unwrap() error { return e.Err }

// stderrTailLimit bounds how much tool output is kept in diagnostics.
const stderrTailLimit = 2048

// execError classifies a runner failure into an EngineExecutionError.
// Context cancellation by the caller is passed through untouched so the
// chain can abort instead of falling back.
func execError(id EngineID, err error, stderr string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	detail := stderrTail(stderr)
	switch {
	case errors.Is(err, execx.ErrToolNotFound), errors.Is(err, exec.ErrNotFound):
		return &EngineExecutionError{Engine: id, Err: fmt.Errorf("%w: %v", ErrToolMissing, err)}
	case errors.Is(err, context.DeadlineExceeded):
		return &EngineExecutionError{Engine: id, Err: fmt.Errorf("%w: %v", ErrRenderTimeout, err), Detail: detail}
	default:
		return &EngineExecutionError{Engine: id, Err: fmt.Errorf("%w: %v", ErrNonZeroExit, err), Detail: detail}
	}
}

// stderrTail keeps the last stderrTailLimit bytes of tool output.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTailLimit {
		s = s[len(s)-stderrTailLimit:]
	}
	return s
}

// removeArtifact deletes a possibly-partial output file. Missing files
// are fine; the point is that failed attempts leave nothing behind.
func removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		// Nothing useful to do; the next attempt truncates on create.
		_ = err
	}
}

// writeArtifact writes the final artifact for an in-process engine,
// removing the target on failure so the no-partial-output contract holds.
func writeArtifact(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		removeArtifact(path)
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}
