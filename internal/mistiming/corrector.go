package mistiming

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"subfab/internal/subtitle"
)

// Fix corrects mistimed groups in place. A group that starts at line 0 has no
// earlier anchor, so its text is merged forward into the next valid line and
// the group's own lines are blanked (removal is a separate pass). All other
// groups get their timing redistributed over the window formed by the
// preceding valid line and the group, proportional to text length. When
// segment is non-nil only groups overlapping it are corrected.
func Fix(logger *slog.Logger, track *subtitle.Track, p DetectParams, segment *subtitle.Range) {
	indices := Detect(logger, track, p)
	if len(indices) == 0 {
		return
	}

	groups := Groups(indices, 1)
	if segment != nil {
		kept := groups[:0]
		for _, group := range groups {
			r := subtitle.Range{Start: group[0], End: group[len(group)-1]}
			if r.Overlaps(*segment) {
				kept = append(kept, group)
			}
		}
		groups = kept
	}

	for _, group := range groups {
		if group[0]-1 < 0 {
			mergeForward(track, group[len(group)-1]+1, group)
		} else {
			redistributeBackward(track, group[0]-1, group)
		}
	}

	logger.Info("corrected mistimed groups",
		"groups", len(groups),
		"threshold", p.Threshold)
}

// mergeForward concatenates the group's text in front of the line at nextIdx,
// pulls that line's start back to the group's start, and blanks the group.
func mergeForward(track *subtitle.Track, nextIdx int, group []int) {
	if nextIdx >= track.Len() {
		return
	}

	parts := make([]string, 0, len(group))
	for _, idx := range group {
		parts = append(parts, track.Line(idx).Text)
	}
	combined := strings.Join(parts, " ")

	next := track.Line(nextIdx)
	next.Text = combined + " " + next.Text
	next.Start = track.Line(group[0]).Start

	for _, idx := range group {
		track.Line(idx).Text = ""
	}
}

// redistributeBackward treats the preceding valid line plus the group as one
// timing window and lays the lines out contiguously from the window start,
// each with a duration proportional to its share of the total text length.
func redistributeBackward(track *subtitle.Track, prevIdx int, group []int) {
	windowStart := track.Line(prevIdx).Start
	windowEnd := track.Line(group[len(group)-1]).End
	total := windowEnd - windowStart

	all := append([]int{prevIdx}, group...)
	lengths := make([]int, len(all))
	totalChars := 0
	for i, idx := range all {
		lengths[i] = utf8.RuneCountInString(track.Line(idx).Text)
		totalChars += lengths[i]
	}
	if totalChars == 0 {
		return
	}

	current := windowStart
	for i, idx := range all {
		line := track.Line(idx)
		line.Start = current
		current += total * time.Duration(lengths[i]) / time.Duration(totalChars)
		line.End = current
	}
}
