// Package twopass implements the second transcription pass: segments of the
// track whose timings are beyond repair are re-transcribed from the source
// audio and spliced back in. Segments are processed in descending start order
// so line indices stay valid while replacement counts differ, and every
// window's result is cached on disk keyed by its exact time boundaries.
package twopass
