// Package services declares the capability interfaces the subtitle engine
// consumes (text generation, transcription, and audio access) together with
// the error classification shared by every retry loop.
//
// Implementations live in provider subpackages (openrouter, gemini,
// elevenlabs) and are resolved once at startup from configuration; the engine
// itself never selects a provider by sniffing model names.
package services
