// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Parse decodes a payload produced by an ffprobe invocation; running the
// binary belongs to the caller. Helper methods on Result expose the audio
// metadata the pipeline cares about: first audio stream, codec name,
// container duration and size.
package ffprobe
