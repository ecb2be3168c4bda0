// Package segmentation groups timestamped transcript words into subtitle
// lines under delimiter and length constraints.
//
// The engine walks each transcript segment word by word, closing the current
// word group into a line on delimiter boundaries, quote marks, audio events,
// and length overflow. Hard overflow prefers a semantic two-line split from an
// optional text-splitting capability, validated against the source text, with
// a deterministic character-count carryover as fallback. Given the same input
// and parameters the produced line boundaries are byte-for-byte reproducible.
package segmentation
