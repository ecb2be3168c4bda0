package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// Track is the ordered line list shared by every pipeline stage. Identity of a
// line is its positional index, so structural edits must go through Splice or
// RemoveEmpty, which report how later indices moved.
type Track struct {
	lines []Line
}

// NewTrack constructs a track over the given lines. The slice is owned by the
// track afterwards.
func NewTrack(lines []Line) *Track {
	return &Track{lines: lines}
}

// Len returns the number of lines.
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lines)
}

// Line returns a mutable pointer to the line at idx.
func (t *Track) Line(idx int) *Line {
	return &t.lines[idx]
}

// Lines exposes the backing slice for read-mostly iteration.
func (t *Track) Lines() []Line {
	if t == nil {
		return nil
	}
	return t.lines
}

// Append adds a line at the end of the track.
func (t *Track) Append(line Line) {
	t.lines = append(t.lines, line)
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() *Track {
	cp := make([]Line, len(t.lines))
	copy(cp, t.lines)
	return &Track{lines: cp}
}

// Splice replaces the inclusive index range r with repl and returns the index
// delta (len(repl) - r.Len()) that callers must apply to any range positioned
// after r. Out-of-bounds ranges are a structural error.
func (t *Track) Splice(r Range, repl []Line) (int, error) {
	n := len(t.lines)
	if r.Start < 0 || r.End >= n || r.Start > r.End {
		return 0, fmt.Errorf("splice: range %s out of bounds for %d lines", r, n)
	}
	removed := r.Len()
	next := make([]Line, 0, n-removed+len(repl))
	next = append(next, t.lines[:r.Start]...)
	next = append(next, repl...)
	next = append(next, t.lines[r.End+1:]...)
	t.lines = next
	return len(repl) - removed, nil
}

// RemoveEmpty drops lines whose text is empty after trimming, optionally
// restricted to rng. It returns the number of removed lines; ranges held by
// the caller shrink by the count of removals at or before their end index.
func (t *Track) RemoveEmpty(rng *Range) int {
	kept := t.lines[:0]
	removed := 0
	for i, line := range t.lines {
		inScope := rng == nil || rng.Contains(i)
		if inScope && strings.TrimSpace(line.Text) == "" {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	t.lines = kept
	return removed
}

// Slice copies the lines covered by r.
func (t *Track) Slice(r Range) []Line {
	out := make([]Line, r.Len())
	copy(out, t.lines[r.Start:r.End+1])
	return out
}

// Shift moves every line's timing by the given offset.
func (t *Track) Shift(offset time.Duration) {
	for i := range t.lines {
		t.lines[i].Start += offset
		t.lines[i].End += offset
	}
}
