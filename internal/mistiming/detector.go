package mistiming

import (
	"log/slog"
	"sort"
	"time"

	"subfab/internal/subtitle"
)

// DetectParams tunes mistimed-line detection. A line whose duration is at or
// below Threshold is suspect; runs of at least MinGroupLines suspects are
// expanded outward until a line longer than BoundaryDuration anchors the
// group, then nearby groups are merged.
type DetectParams struct {
	Threshold        time.Duration
	MinGroupLines    int
	BacktraceLimit   int
	ForetraceLimit   int
	BoundaryDuration time.Duration
	MaxGapLines      int
}

// DefaultDetectParams returns the detection tuning that works well for
// word-level speech-to-text output.
func DefaultDetectParams() DetectParams {
	return DetectParams{
		Threshold:        500 * time.Millisecond,
		MinGroupLines:    4,
		BacktraceLimit:   20,
		ForetraceLimit:   5,
		BoundaryDuration: 10 * time.Second,
		MaxGapLines:      4,
	}
}

// Detect returns the sorted indices of lines judged mistimed under p.
func Detect(logger *slog.Logger, track *subtitle.Track, p DetectParams) []int {
	marked := make(map[int]struct{})
	for i, line := range track.Lines() {
		if line.Duration() <= p.Threshold {
			marked[i] = struct{}{}
		}
	}
	logger.Info("scanned for short lines",
		"short_lines", len(marked),
		"threshold", p.Threshold)
	if len(marked) == 0 {
		return nil
	}

	fillGaps(marked)

	groups := Groups(sortedIndices(marked), p.MinGroupLines)
	logger.Info("grouped short lines", "groups", len(groups))
	if len(groups) == 0 {
		return sortedIndices(marked)
	}

	for gi, group := range groups {
		back := expand(track, group[0]-1, -1, p.BacktraceLimit, p.BoundaryDuration)
		if len(back) > 0 {
			for _, idx := range back {
				marked[idx] = struct{}{}
			}
			group = append(group, back...)
			sort.Ints(group)
			logger.Info("extended mistimed group backward",
				"group_start", group[0]+1,
				"group_end", group[len(group)-1]+1)
		}

		fore := expand(track, group[len(group)-1]+1, 1, p.ForetraceLimit, p.BoundaryDuration)
		if len(fore) > 0 {
			for _, idx := range fore {
				marked[idx] = struct{}{}
			}
			group = append(group, fore...)
			sort.Ints(group)
			logger.Info("extended mistimed group forward",
				"group_start", group[0]+1,
				"group_end", group[len(group)-1]+1)
		}

		if len(back) == 0 && len(fore) == 0 {
			logger.Warn("could not anchor mistimed group",
				"group_start", group[0]+1,
				"group_end", group[len(group)-1]+1)
		}
		groups[gi] = group
	}

	mergeNearby(logger, marked, groups, p.MaxGapLines)

	return sortedIndices(marked)
}

// Groups splits sorted mistimed indices into maximal consecutive runs and
// keeps only runs of at least minLines. It is reused standalone with
// minLines=1 to re-derive exact groups for correction.
func Groups(indices []int, minLines int) [][]int {
	var groups [][]int
	var current []int
	for _, idx := range indices {
		if len(current) == 0 || idx == current[len(current)-1]+1 {
			current = append(current, idx)
			continue
		}
		if len(current) >= minLines {
			groups = append(groups, current)
		}
		current = []int{idx}
	}
	if len(current) >= minLines {
		groups = append(groups, current)
	}
	return groups
}

// fillGaps marks the index between two marked indices that are exactly two
// apart, closing single-line holes in a run.
func fillGaps(marked map[int]struct{}) {
	indices := sortedIndices(marked)
	for i := 0; i < len(indices)-1; i++ {
		if indices[i+1]-indices[i] == 2 {
			marked[indices[i]+1] = struct{}{}
		}
	}
}

// expand walks from start in the given direction collecting indices until a
// line longer than boundary is found. The anchoring line itself is included.
// If limit steps pass without finding an anchor the whole expansion is
// discarded rather than kept partial.
func expand(track *subtitle.Track, start, direction, limit int, boundary time.Duration) []int {
	var added []int
	count := 0
	idx := start
	for idx >= 0 && idx < track.Len() && count < limit {
		added = append(added, idx)
		if track.Line(idx).Duration() > boundary {
			break
		}
		idx += direction
		count++
	}
	if count >= limit {
		return nil
	}
	return added
}

// mergeNearby fuses adjacent groups separated by at most gap lines into one
// contiguous run, marking the lines in between.
func mergeNearby(logger *slog.Logger, marked map[int]struct{}, groups [][]int, gap int) {
	i := 0
	for i < len(groups)-1 {
		current, next := groups[i], groups[i+1]
		currentStart, currentEnd := current[0], current[len(current)-1]
		nextStart, nextEnd := next[0], next[len(next)-1]
		if nextStart-currentEnd > gap+1 {
			i++
			continue
		}
		mergedEnd := currentEnd
		if nextEnd > mergedEnd {
			mergedEnd = nextEnd
		}
		logger.Info("merging nearby mistimed groups",
			"first", currentStart+1,
			"last", mergedEnd+1)
		merged := make([]int, 0, mergedEnd-currentStart+1)
		for idx := currentStart; idx <= mergedEnd; idx++ {
			merged = append(merged, idx)
			marked[idx] = struct{}{}
		}
		groups[i] = merged
		groups = append(groups[:i+1], groups[i+2:]...)
	}
}

func sortedIndices(marked map[int]struct{}) []int {
	indices := make([]int, 0, len(marked))
	for idx := range marked {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}
