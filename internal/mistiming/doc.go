// Package mistiming finds and repairs subtitle lines whose durations are
// implausibly short, a common defect in word-level speech-to-text output.
// Detection marks short lines, groups consecutive runs, and expands each run
// to a well-timed anchor line. Correction either redistributes a group's
// window proportionally to text length or, at the start of a track, merges
// the group forward. A separate padding pass enforces minimum duration and
// reading-speed standards without overlapping same-style neighbors.
package mistiming
