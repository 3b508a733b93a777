package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drennalls/bookbind"
)

// ErrNoFragments reports that the input directory held no markdown files.
var ErrNoFragments = errors.New("no markdown fragments found")

// discoverFragments reads all markdown files of a directory as fragments.
// Directory entries come back sorted by name; that order is the encounter
// order the assembler preserves for non-indexed, non-numbered fragments.
func discoverFragments(dir string) ([]bookbind.Fragment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading fragment directory: %w", err)
	}

	var fragments []bookbind.Fragment
	for _, entry := range entries {
		if entry.IsDir() || !isMarkdownName(entry.Name()) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name())) // #nosec G304 -- constrained to dir listing
		if err != nil {
			return nil, fmt.Errorf("reading fragment %s: %w", entry.Name(), err)
		}
		fragments = append(fragments, bookbind.Fragment{
			Name:    entry.Name(),
			Content: string(content),
		})
	}

	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFragments, dir)
	}
	return fragments, nil
}

// isMarkdownName reports whether a file name has a markdown extension.
func isMarkdownName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}
