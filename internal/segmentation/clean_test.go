package segmentation

import "testing"

func TestCleanLineText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips quotes", "「こんにちは」", "こんにちは"},
		{"strips leading hyphen", "- hello", "hello"},
		{"trims whitespace", "  padded  ", "padded"},
		{"keeps inner hyphen", "well-known", "well-known"},
		{"plain text untouched", "Nothing to do.", "Nothing to do."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanLineText(tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCollapseRepeats(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"single char stutter", "wwwwww", "www"},
		{"two char stutter", "hahahahaha", "hahaha"},
		{"four reps untouched", "nononono", "nononono"},
		{"five reps collapsed", "nonononono", "nonono"},
		{"long unit", "abcdefabcdefabcdefabcdefabcdef", "abcdefabcdefabcdef"},
		{"mixed content", "he said wowowowowowow loudly", "he said wowowow loudly"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := collapseRepeats(tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
