package execx

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX shell utilities")
	}

	r := &ExecRunner{}
	res, err := r.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Errorf("Stdout = %q, want out", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("Stderr = %q, want err", res.Stderr)
	}
}

func TestRunToolNotFound(t *testing.T) {
	r := &ExecRunner{}
	_, err := r.Run(context.Background(), "definitely-not-a-real-tool-12345")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("error = %v, want ErrToolNotFound", err)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX shell utilities")
	}

	r := &ExecRunner{}
	res, err := r.Run(context.Background(), "sh", "-c", "echo diag >&2; exit 7")
	if err == nil {
		t.Fatal("Run() error = nil, want exit failure")
	}
	if !strings.Contains(res.Stderr, "diag") {
		t.Errorf("Stderr = %q, want diagnostics preserved on failure", res.Stderr)
	}
}

func TestRunContextTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX shell utilities")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := &ExecRunner{}
	start := time.Now()
	_, err := r.Run(ctx, "sleep", "30")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Run() took %v, process group not killed promptly", elapsed)
	}
}

func TestRunAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &ExecRunner{}
	_, err := r.Run(ctx, "sh", "-c", "true")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
