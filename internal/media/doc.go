// Package media implements the audio source capability on top of the ffmpeg
// and ffprobe binaries: probing container metadata, extracting the audio
// stream from a video without re-encoding, and cutting Opus-encoded time
// windows for transcription uploads.
package media
