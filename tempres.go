package bookbind

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Sentinel errors for temp resource operations.
var (
	ErrSuffixEmpty  = errors.New("suffix cannot be empty")
	ErrSuffixUnsafe = errors.New("suffix contains path separator or null byte")
	ErrScopeClosed  = errors.New("temp scope is closed")
	ErrTempCreate   = errors.New("creating temp file")
)

// TempResource is a transient file owned by a TempScope. It is created
// lazily and always released within the scope that created it, never
// leaked across a pipeline run boundary.
type TempResource struct {
	Path  string
	Owner string // run identifier of the owning scope
}

// TempScope owns every transient file of one pipeline run. Resources are
// released individually on each operation's exit path and the scope's
// Close is the run-level backstop: after Close, no file attributable to
// the run remains.
//
// A scope is safe for use from the single goroutine driving a run;
// the mutex exists so a caller-side cancellation goroutine may Close
// concurrently with an in-flight Acquire.
type TempScope struct {
	runID  string
	logger *log.Logger

	mu     sync.Mutex
	live   map[string]*TempResource
	closed bool
}

// NewTempScope creates a scope with a fresh run identifier.
// A nil logger discards diagnostics.
func NewTempScope(logger *log.Logger) *TempScope {
	if logger == nil {
		logger = discardLogger()
	}
	return &TempScope{
		runID:  uuid.NewString(),
		logger: logger,
		live:   map[string]*TempResource{},
	}
}

// RunID returns the identifier shared by all resources of this scope.
func (s *TempScope) RunID() string {
	return s.runID
}

// Acquire creates an empty temp file with the given suffix (without dot).
func (s *TempScope) Acquire(suffix string) (*TempResource, error) {
	return s.AcquireWith(suffix, "")
}

// AcquireWith creates a temp file with the given suffix and content.
// The file name embeds the run identifier so leaked files are
// attributable to their run.
func (s *TempScope) AcquireWith(suffix, content string) (*TempResource, error) {
	if err := validateSuffix(suffix); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrScopeClosed
	}
	s.mu.Unlock()

	f, err := os.CreateTemp("", s.filePattern(suffix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempCreate, err)
	}

	path := f.Name()
	if content != "" {
		if _, err := f.WriteString(content); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return nil, fmt.Errorf("writing temp file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("closing temp file: %w", err)
	}

	res := &TempResource{Path: path, Owner: s.runID}

	s.mu.Lock()
	if s.closed {
		// Scope closed while the file was being written; remove immediately.
		s.mu.Unlock()
		_ = os.Remove(path)
		return nil, ErrScopeClosed
	}
	s.live[path] = res
	s.mu.Unlock()

	return res, nil
}

// Release removes the resource's file. Releasing nil, an already-released
// resource, or a resource from another scope is a no-op; a double release
// is logged as a leak diagnostic, never propagated as an error.
func (s *TempScope) Release(r *TempResource) {
	if r == nil {
		return
	}

	s.mu.Lock()
	_, ok := s.live[r.Path]
	if ok {
		delete(s.live, r.Path)
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Warn("temp resource released twice or unknown to scope",
			"path", r.Path, "run", s.runID)
		return
	}

	_ = os.Remove(r.Path)
}

// Close releases every remaining resource. Idempotent. Resources still
// live at Close time are removed and reported: a well-behaved operation
// releases what it acquired before its scope ends.
func (s *TempScope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	remaining := make([]*TempResource, 0, len(s.live))
	for _, r := range s.live {
		remaining = append(remaining, r)
	}
	s.live = map[string]*TempResource{}
	s.mu.Unlock()

	var errs []error
	for _, r := range remaining {
		s.logger.Warn("temp resource not released before scope end",
			"path", r.Path, "run", s.runID)
		if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// filePattern builds the os.CreateTemp pattern for this scope.
// Keeps a short run prefix so test sweeps can attribute files.
func (s *TempScope) filePattern(suffix string) string {
	return "bookbind-" + shortRunID(s.runID) + "-*." + suffix
}

// shortRunID truncates a UUID to its first group for file names.
func shortRunID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// validateSuffix checks that the suffix is safe for use in temp file names.
func validateSuffix(suffix string) error {
	if suffix == "" {
		return ErrSuffixEmpty
	}
	if strings.ContainsAny(suffix, "/\\\x00") {
		return ErrSuffixUnsafe
	}
	return nil
}
