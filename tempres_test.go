package bookbind

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTempScopeAcquireRelease(t *testing.T) {
	scope := NewTempScope(nil)
	defer scope.Close()

	res, err := scope.AcquireWith("md", "# hello")
	if err != nil {
		t.Fatalf("AcquireWith() error = %v", err)
	}

	content, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(content) != "# hello" {
		t.Errorf("content = %q, want %q", content, "# hello")
	}
	if res.Owner != scope.RunID() {
		t.Errorf("Owner = %q, want run ID %q", res.Owner, scope.RunID())
	}

	scope.Release(res)
	if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
		t.Errorf("file %s still exists after release", res.Path)
	}
}

func TestTempScopeReleaseIdempotent(t *testing.T) {
	scope := NewTempScope(nil)
	defer scope.Close()

	res, err := scope.Acquire("html")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// Double release and nil release are no-ops, never panics or errors.
	scope.Release(res)
	scope.Release(res)
	scope.Release(nil)
}

func TestTempScopeCloseReleasesRemaining(t *testing.T) {
	scope := NewTempScope(nil)

	var paths []string
	for _, suffix := range []string{"md", "html", "css"} {
		res, err := scope.Acquire(suffix)
		if err != nil {
			t.Fatalf("Acquire(%q) error = %v", suffix, err)
		}
		paths = append(paths, res.Path)
	}

	if err := scope.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("file %s survived scope close", p)
		}
	}

	// Close is idempotent.
	if err := scope.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestTempScopeAcquireAfterClose(t *testing.T) {
	scope := NewTempScope(nil)
	if err := scope.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := scope.Acquire("md"); !errors.Is(err, ErrScopeClosed) {
		t.Errorf("error = %v, want ErrScopeClosed", err)
	}
}

func TestTempScopeSuffixValidation(t *testing.T) {
	scope := NewTempScope(nil)
	defer scope.Close()

	tests := []struct {
		suffix  string
		wantErr error
	}{
		{"", ErrSuffixEmpty},
		{"a/b", ErrSuffixUnsafe},
		{"a\\b", ErrSuffixUnsafe},
		{"a\x00b", ErrSuffixUnsafe},
	}
	for _, tt := range tests {
		if _, err := scope.Acquire(tt.suffix); !errors.Is(err, tt.wantErr) {
			t.Errorf("Acquire(%q) error = %v, want %v", tt.suffix, err, tt.wantErr)
		}
	}
}

func TestTempScopeFilesAttributableToRun(t *testing.T) {
	scope := NewTempScope(nil)
	defer scope.Close()

	res, err := scope.Acquire("md")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	base := filepath.Base(res.Path)
	wantPrefix := "bookbind-" + shortRunID(scope.RunID())
	if !strings.HasPrefix(base, wantPrefix) {
		t.Errorf("temp file %q lacks run prefix %q", base, wantPrefix)
	}
}

// sweepRunFiles returns temp-dir files bearing the scope's run prefix.
// Used by pipeline tests to assert the zero-leak invariant.
func sweepRunFiles(t *testing.T, runID string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "bookbind-"+shortRunID(runID)+"-*"))
	if err != nil {
		t.Fatalf("globbing temp dir: %v", err)
	}
	return matches
}

func TestTempScopeNoLeakAfterMixedOutcome(t *testing.T) {
	scope := NewTempScope(nil)

	released, err := scope.AcquireWith("md", "released early")
	if err != nil {
		t.Fatalf("AcquireWith() error = %v", err)
	}
	scope.Release(released)

	if _, err := scope.Acquire("html"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := scope.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if leaked := sweepRunFiles(t, scope.RunID()); len(leaked) != 0 {
		t.Errorf("run left %d temp file(s) behind: %v", len(leaked), leaked)
	}
}
