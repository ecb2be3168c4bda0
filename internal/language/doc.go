// Package language provides unified language code normalization and naming.
//
// All language-related conversions (BCP 47 normalization, ISO 639-1 codes,
// English display names for prompts, stream tag extraction) are consolidated
// here so transcription, translation, and probing agree on identifiers.
package language
