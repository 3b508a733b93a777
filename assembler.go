package bookbind

import (
	"fmt"
	"sort"
	"strings"
)

// FragmentSeparator is appended after every fragment in the combined
// document, including the last. The trailing separator is part of the
// output contract; downstream consumers rely on the document being
// byte-stable across runs.
const FragmentSeparator = "\n\n---\n\n"

// indexFragmentName is the extension-normalized name emitted first.
const indexFragmentName = "index"

// Fragment is one named unit of generated content to be combined into a
// document. Fragments are immutable once produced by the upstream
// content generator.
type Fragment struct {
	Name    string
	Content string
}

// CombinedDocument is the single ordered concatenation of all fragments
// for one run. Created fully or not at all; a document with missing
// fragments is never returned.
type CombinedDocument struct {
	Content     string
	SourceOrder []string // fragment names in emission order
}

// Assemble combines fragments into one ordered document.
//
// Ordering:
//  1. A fragment whose extension-normalized name is "index" comes first.
//  2. Fragments whose name begins with an ASCII digit follow, sorted by
//     full name in bytewise lexicographic order.
//  3. All remaining fragments keep their encounter order.
//
// Every emitted fragment is followed by FragmentSeparator. The empty
// input yields an empty document with no separators.
//
// Assemble is pure and deterministic: equal inputs produce byte-identical
// output. Two fragments normalizing to the same name fail with an error
// wrapping ErrDuplicateFragment.
func Assemble(fragments []Fragment) (*CombinedDocument, error) {
	seen := make(map[string]string, len(fragments)) // normalized -> original
	for _, f := range fragments {
		norm := normalizeFragmentName(f.Name)
		if prev, ok := seen[norm]; ok {
			return nil, fmt.Errorf("%w: %q and %q both normalize to %q", ErrDuplicateFragment, prev, f.Name, norm)
		}
		seen[norm] = f.Name
	}

	var index *Fragment
	var numbered []Fragment
	var rest []Fragment

	for i := range fragments {
		f := fragments[i]
		switch {
		case normalizeFragmentName(f.Name) == indexFragmentName:
			index = &f
		case startsWithDigit(f.Name):
			numbered = append(numbered, f)
		default:
			rest = append(rest, f)
		}
	}

	// Bytewise order on the full name; sort.SliceStable keeps the check
	// honest even though names are unique at this point.
	sort.SliceStable(numbered, func(i, j int) bool {
		return numbered[i].Name < numbered[j].Name
	})

	ordered := make([]Fragment, 0, len(fragments))
	if index != nil {
		ordered = append(ordered, *index)
	}
	ordered = append(ordered, numbered...)
	ordered = append(ordered, rest...)

	var sb strings.Builder
	order := make([]string, 0, len(ordered))
	for _, f := range ordered {
		sb.WriteString(f.Content)
		sb.WriteString(FragmentSeparator)
		order = append(order, f.Name)
	}

	return &CombinedDocument{Content: sb.String(), SourceOrder: order}, nil
}

// Empty reports whether the document contains no fragments.
func (d *CombinedDocument) Empty() bool {
	return d == nil || len(d.SourceOrder) == 0
}

// normalizeFragmentName strips a known markdown extension so "index" and
// "index.md" refer to the same fragment. Comparison is case-sensitive.
func normalizeFragmentName(name string) string {
	for _, ext := range []string{".md", ".markdown"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// startsWithDigit reports whether the name begins with an ASCII digit.
func startsWithDigit(name string) bool {
	return len(name) > 0 && name[0] >= '0' && name[0] <= '9'
}
