package translate

import (
	"reflect"
	"testing"
)

func TestIsNumbered(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  bool
	}{
		{"both numbered", []string{"1. Hello", "2. World", "banana"}, true},
		{"second not numbered", []string{"1. Hello", "World"}, false},
		{"wrong sequence", []string{"1. Hello", "3. World"}, false},
		{"no space after dot", []string{"1.Hello", "2.World"}, false},
		{"single line", []string{"1. Hello"}, false},
		{"plain text with dots", []string{"Mr. Tanaka", "Dr. Sato"}, false},
	}
	for _, tt := range tests {
		if got := isNumbered(tt.lines); got != tt.want {
			t.Errorf("%s: isNumbered = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRemoveNumbering(t *testing.T) {
	got := removeNumbering([]string{"1. Hello", "2. World", "unnumbered", "12. Later"})
	want := []string{"Hello", "World", "unnumbered", "Later"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("removeNumbering = %#v, want %#v", got, want)
	}
}

func TestCleanEllipses(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			"duplicated across boundary",
			[]string{"I was thinking...", "...about you"},
			[]string{"I was thinking", "about you"},
		},
		{
			"orphaned leading ellipsis",
			[]string{"Complete sentence.", "...and then"},
			[]string{"Complete sentence.", "and then"},
		},
		{
			"trailing ellipsis alone is kept",
			[]string{"Wait...", "What happened"},
			[]string{"Wait...", "What happened"},
		},
		{
			"first line leading ellipsis kept",
			[]string{"...so it begins", "normally"},
			[]string{"...so it begins", "normally"},
		},
	}
	for _, tt := range tests {
		if got := cleanEllipses(tt.lines); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: cleanEllipses = %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestForceLineCount(t *testing.T) {
	t.Run("excess merged into last line", func(t *testing.T) {
		got := forceLineCount([]string{"a", "b", "c", "d"}, 3)
		want := []string{"a", "b", `c\Nd`}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("forceLineCount = %#v, want %#v", got, want)
		}
	})
	t.Run("missing padded with placeholder", func(t *testing.T) {
		got := forceLineCount([]string{"a", "b"}, 4)
		want := []string{"a", "b", MissingPlaceholder, MissingPlaceholder}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("forceLineCount = %#v, want %#v", got, want)
		}
	})
	t.Run("exact count untouched", func(t *testing.T) {
		lines := []string{"a", "b"}
		if got := forceLineCount(lines, 2); !reflect.DeepEqual(got, lines) {
			t.Fatalf("forceLineCount = %#v, want %#v", got, lines)
		}
	})
}

func TestSplitReply(t *testing.T) {
	got := splitReply("\n  first\nsecond\n\n")
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitReply = %#v, want %#v", got, want)
	}
	if splitReply("   ") != nil {
		t.Fatal("splitReply of blank input should be nil")
	}
}
