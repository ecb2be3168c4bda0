// Package main hosts the subfab CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the pipeline stages as commands: a
// full run, mistimed-segment preview, timing fixes and padding, segment
// re-transcription, batched translation, context generation, a drop-folder
// watcher, and configuration scaffolding. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
