package subtitle

import (
	"strings"
	"time"
)

// ContinuationMarker is appended to a line's text when its content was split
// mid-sentence by a hard length break and continues on the next line.
// Downstream consumers (translation prompts, final renderers) strip it.
const ContinuationMarker = "%%CONT%%"

// DefaultStyle is the style assigned to lines that carry no explicit styling.
const DefaultStyle = "Default"

// Line is one subtitle display unit.
type Line struct {
	Start   time.Duration
	End     time.Duration
	Text    string
	Speaker string
	Style   string
}

// Duration returns the display duration of the line.
func (l Line) Duration() time.Duration {
	return l.End - l.Start
}

// Continues reports whether the line ends with the continuation marker.
func (l Line) Continues() bool {
	return strings.HasSuffix(l.Text, ContinuationMarker)
}

// DisplayText returns the line text with the continuation marker removed.
func (l Line) DisplayText() string {
	return strings.TrimSuffix(l.Text, ContinuationMarker)
}

// styleOf normalizes an empty style to DefaultStyle so that same-style
// comparisons treat unstyled lines uniformly.
func styleOf(l Line) string {
	if l.Style == "" {
		return DefaultStyle
	}
	return l.Style
}

// SameStyle reports whether two lines share a style for overlap purposes.
func SameStyle(a, b Line) bool {
	return styleOf(a) == styleOf(b)
}
