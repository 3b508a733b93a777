package bookbind

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestAssembleOrdering(t *testing.T) {
	fragments := []Fragment{
		{Name: "notes.md", Content: "notes"},
		{Name: "2_advanced.md", Content: "two"},
		{Name: "index.md", Content: "idx"},
		{Name: "1_basics.md", Content: "one"},
	}

	doc, err := Assemble(fragments)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	wantOrder := []string{"index.md", "1_basics.md", "2_advanced.md", "notes.md"}
	if !reflect.DeepEqual(doc.SourceOrder, wantOrder) {
		t.Errorf("SourceOrder = %v, want %v", doc.SourceOrder, wantOrder)
	}

	want := "idx" + FragmentSeparator +
		"one" + FragmentSeparator +
		"two" + FragmentSeparator +
		"notes" + FragmentSeparator
	if doc.Content != want {
		t.Errorf("Content = %q, want %q", doc.Content, want)
	}
}

func TestAssembleTrailingSeparator(t *testing.T) {
	doc, err := Assemble([]Fragment{{Name: "only.md", Content: "solo"}})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	// The separator after the last fragment is documented output, not a bug.
	if !strings.HasSuffix(doc.Content, FragmentSeparator) {
		t.Errorf("Content %q does not end with separator", doc.Content)
	}
}

func TestAssembleNumberedBytewiseOrder(t *testing.T) {
	// Bytewise, not numeric: "10" sorts before "2".
	doc, err := Assemble([]Fragment{
		{Name: "2_second.md", Content: "b"},
		{Name: "10_tenth.md", Content: "a"},
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	wantOrder := []string{"10_tenth.md", "2_second.md"}
	if !reflect.DeepEqual(doc.SourceOrder, wantOrder) {
		t.Errorf("SourceOrder = %v, want %v", doc.SourceOrder, wantOrder)
	}
}

func TestAssembleEncounterOrderPreserved(t *testing.T) {
	doc, err := Assemble([]Fragment{
		{Name: "zebra.md", Content: "z"},
		{Name: "apple.md", Content: "a"},
		{Name: "mango.md", Content: "m"},
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	wantOrder := []string{"zebra.md", "apple.md", "mango.md"}
	if !reflect.DeepEqual(doc.SourceOrder, wantOrder) {
		t.Errorf("SourceOrder = %v, want %v", doc.SourceOrder, wantOrder)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	fragments := []Fragment{
		{Name: "index.md", Content: "# Index"},
		{Name: "03_c.md", Content: "c"},
		{Name: "01_a.md", Content: "a"},
		{Name: "extras.md", Content: "x"},
	}

	first, err := Assemble(fragments)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second, err := Assemble(fragments)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if first.Content != second.Content {
		t.Error("two assemblies of equal input differ")
	}
}

func TestAssembleEmpty(t *testing.T) {
	doc, err := Assemble(nil)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if doc.Content != "" {
		t.Errorf("Content = %q, want empty", doc.Content)
	}
	if !doc.Empty() {
		t.Error("Empty() = false, want true")
	}
}

func TestAssembleDuplicateName(t *testing.T) {
	tests := []struct {
		name      string
		fragments []Fragment
	}{
		{
			name: "exact duplicate",
			fragments: []Fragment{
				{Name: "a.md", Content: "1"},
				{Name: "a.md", Content: "2"},
			},
		},
		{
			name: "duplicate after extension normalization",
			fragments: []Fragment{
				{Name: "index", Content: "1"},
				{Name: "index.md", Content: "2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Assemble(tt.fragments)
			if !errors.Is(err, ErrDuplicateFragment) {
				t.Errorf("error = %v, want ErrDuplicateFragment", err)
			}
			if doc != nil {
				t.Error("partial document returned on duplicate name")
			}
		})
	}
}

func TestAssembleIndexWithoutExtension(t *testing.T) {
	doc, err := Assemble([]Fragment{
		{Name: "1_ch.md", Content: "one"},
		{Name: "index", Content: "idx"},
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if doc.SourceOrder[0] != "index" {
		t.Errorf("first fragment = %q, want index", doc.SourceOrder[0])
	}
}

func TestNormalizeFragmentName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"index.md", "index"},
		{"index.markdown", "index"},
		{"index", "index"},
		{"01_intro.md", "01_intro"},
		{"Index.md", "Index"}, // case-sensitive
	}
	for _, tt := range tests {
		if got := normalizeFragmentName(tt.in); got != tt.want {
			t.Errorf("normalizeFragmentName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
