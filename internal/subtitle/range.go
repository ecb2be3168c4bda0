package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is an inclusive, zero-based index range into a track.
type Range struct {
	Start int
	End   int
}

// NewRange constructs a normalized range from two indices in either order.
func NewRange(a, b int) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Len returns the number of indices the range covers.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Contains reports whether idx falls within the range.
func (r Range) Contains(idx int) bool {
	return idx >= r.Start && idx <= r.End
}

// Overlaps reports whether the two ranges share at least one index.
func (r Range) Overlaps(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Shift returns the range moved by delta positions.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// Grow returns the range with the end extended by delta, keeping Start <= End.
func (r Range) Grow(delta int) Range {
	end := r.End + delta
	if end < r.Start {
		end = r.Start
	}
	return Range{Start: r.Start, End: end}
}

// Clamp restricts the range to [0, n-1]. Returns false when nothing remains.
func (r Range) Clamp(n int) (Range, bool) {
	if n <= 0 || r.End < 0 || r.Start >= n {
		return Range{}, false
	}
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End >= n {
		r.End = n - 1
	}
	return r, true
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start+1, r.End+1)
}

// ParseRange parses a one-based inclusive "N-M" (or single "N") selector into
// a zero-based Range. Malformed input is a validation error, not retryable.
func ParseRange(value string) (Range, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Range{}, fmt.Errorf("parse range: empty selector")
	}
	parts := strings.SplitN(value, "-", 2)
	first, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || first < 1 {
		return Range{}, fmt.Errorf("parse range %q: invalid start", value)
	}
	last := first
	if len(parts) == 2 {
		last, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || last < 1 {
			return Range{}, fmt.Errorf("parse range %q: invalid end", value)
		}
	}
	if last < first {
		return Range{}, fmt.Errorf("parse range %q: end before start", value)
	}
	return Range{Start: first - 1, End: last - 1}, nil
}
