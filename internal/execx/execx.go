// Package execx runs external tools with bounded lifetimes. Commands are
// placed in their own process group and the whole group is killed when the
// context ends, so a stuck tool cannot outlive its pipeline run.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/drennalls/bookbind/internal/process"
)

// ErrToolNotFound reports that the requested binary is not on PATH.
var ErrToolNotFound = errors.New("tool not found in PATH")

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Runner abstracts command execution to enable testing without real
// subprocesses.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

// Run executes name with args, killing the process group if ctx ends
// first. On context expiry the returned error wraps ctx.Err() so callers
// can distinguish timeout from a tool failure.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if _, err := exec.LookPath(name); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	cmd := exec.Command(name, args...) // #nosec G204 -- tool name and args are fixed by the engine
	process.SetGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("starting %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		process.KillGroup(cmd.Process.Pid)
		<-done // reap
		return Result{Stdout: stdout.String(), Stderr: stderr.String()},
			fmt.Errorf("%s: %w", name, ctx.Err())
	case err := <-done:
		res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err != nil {
			return res, fmt.Errorf("%s: %w", name, err)
		}
		return res, nil
	}
}
