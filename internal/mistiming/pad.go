package mistiming

import (
	"log/slog"
	"time"
	"unicode/utf8"

	"subfab/internal/subtitle"
)

// PadParams bounds the duration-extension pass. MaxCPS is the reading speed
// ceiling used to derive a line's target duration from its text length.
type PadParams struct {
	MaxLeadOut  time.Duration
	MaxLeadIn   time.Duration
	MaxCPS      float64
	MinDuration time.Duration
}

// DefaultPadParams returns standard readability padding.
func DefaultPadParams() PadParams {
	return PadParams{
		MaxLeadOut:  time.Second,
		MaxLeadIn:   250 * time.Millisecond,
		MaxCPS:      20,
		MinDuration: time.Second,
	}
}

// Pad extends line durations in place so each line meets the minimum duration
// and reading-speed targets. End times grow first, capped by MaxLeadOut and
// the start of the next same-style line; if the line is still short its start
// pulls back within MaxLeadIn, bounded by the end of the previous same-style
// line. The final end is never earlier than one millisecond after the start.
// Returns the number of timing edits applied.
func Pad(logger *slog.Logger, track *subtitle.Track, p PadParams, segment *subtitle.Range) int {
	if track.Len() == 0 {
		return 0
	}

	first, last := 0, track.Len()-1
	if segment != nil {
		first, last = segment.Start, segment.End
	}

	modified := 0
	for i := first; i <= last; i++ {
		line := track.Line(i)
		length := utf8.RuneCountInString(line.Text)
		if length == 0 {
			continue
		}

		target := p.MinDuration
		if p.MaxCPS > 0 {
			byCPS := time.Duration(float64(length) / p.MaxCPS * float64(time.Second))
			if byCPS > target {
				target = byCPS
			}
		}

		targetEnd := line.Start + target
		if limit := line.End + p.MaxLeadOut; targetEnd > limit {
			targetEnd = limit
		}
		if targetEnd <= line.End {
			continue
		}

		newEnd := targetEnd
		for j := i + 1; j < track.Len(); j++ {
			next := track.Line(j)
			if subtitle.SameStyle(*next, *line) {
				if next.Start < newEnd {
					newEnd = next.Start
				}
				break
			}
		}

		if shortfall := target - (newEnd - line.Start); shortfall > 0 {
			back := shortfall
			if back > p.MaxLeadIn {
				back = p.MaxLeadIn
			}

			var prevEnd time.Duration
			for j := i - 1; j >= 0; j-- {
				prev := track.Line(j)
				if subtitle.SameStyle(*prev, *line) {
					prevEnd = prev.End
					break
				}
			}

			newStart := line.Start - back
			if newStart < prevEnd {
				newStart = prevEnd
			}
			if newStart < line.Start {
				line.Start = newStart
				modified++
			}
		}

		finalEnd := line.End
		if newEnd > finalEnd {
			finalEnd = newEnd
		}
		if floor := line.Start + time.Millisecond; finalEnd < floor {
			finalEnd = floor
		}
		if finalEnd > line.End {
			line.End = finalEnd
			modified++
		}
	}

	if modified > 0 {
		logger.Info("padded line durations",
			"edits", modified,
			"max_cps", p.MaxCPS)
	} else {
		logger.Info("no lines required padding", "max_cps", p.MaxCPS)
	}
	return modified
}
