package config

import (
	"strings"

	"subfab/internal/language"
)

// normalize fills gaps with defaults, expands paths, and canonicalizes
// enum-like values so the rest of the application never re-checks them.
func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeTranscription()
	c.normalizeParsing()
	c.normalizeCorrection()
	c.normalizeTranslation()
	c.normalizeProviders()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.WorkingDir) == "" {
		c.Paths.WorkingDir = defaultWorkingDir
	}
	expanded, err := expandPath(c.Paths.WorkingDir)
	if err != nil {
		return err
	}
	c.Paths.WorkingDir = expanded

	if strings.TrimSpace(c.Paths.FFmpegBinary) == "" {
		c.Paths.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Paths.FFprobeBinary) == "" {
		c.Paths.FFprobeBinary = defaultFFprobeBinary
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeTranscription() {
	if strings.TrimSpace(c.Transcription.Model) == "" {
		c.Transcription.Model = defaultSTTModel
	}
	if normalized := language.Normalize(c.Transcription.DefaultLangFrom); normalized != "" {
		c.Transcription.DefaultLangFrom = normalized
	}
	if c.Transcription.ChunkConcurrency <= 0 {
		c.Transcription.ChunkConcurrency = defaultChunkConcurrency
	}
}

func (c *Config) normalizeParsing() {
	if c.Parsing.SoftMaxChars <= 0 {
		c.Parsing.SoftMaxChars = defaultSoftMaxChars
	}
	if c.Parsing.HardMaxChars <= 0 {
		c.Parsing.HardMaxChars = defaultHardMaxChars
	}
	if c.Parsing.HardMaxCarryover <= 0 {
		c.Parsing.HardMaxCarryover = defaultHardMaxCarryover
	}
}

func (c *Config) normalizeCorrection() {
	if c.MistimedLines.ThresholdSec <= 0 {
		c.MistimedLines.ThresholdSec = defaultLineThresholdSec
	}
	if c.MistimedSegs.ThresholdSec <= 0 {
		c.MistimedSegs.ThresholdSec = defaultSegThresholdSec
	}
	if c.MistimedSegs.MinLines <= 0 {
		c.MistimedSegs.MinLines = defaultSegMinLines
	}
	if c.MistimedSegs.BacktraceLimit <= 0 {
		c.MistimedSegs.BacktraceLimit = defaultSegBacktraceLimit
	}
	if c.MistimedSegs.ForetraceLimit <= 0 {
		c.MistimedSegs.ForetraceLimit = defaultSegForetraceLimit
	}
	if c.MistimedSegs.MinDelaySec <= 0 {
		c.MistimedSegs.MinDelaySec = defaultSegMinDelaySec
	}
	if c.MistimedSegs.MaxGapLines <= 0 {
		c.MistimedSegs.MaxGapLines = defaultSegMaxGap
	}
	if c.Padding.MaxLeadOutSec <= 0 {
		c.Padding.MaxLeadOutSec = defaultPadMaxLeadOutSec
	}
	if c.Padding.MaxLeadInSec <= 0 {
		c.Padding.MaxLeadInSec = defaultPadMaxLeadInSec
	}
	if c.Padding.MaxCPS <= 0 {
		c.Padding.MaxCPS = defaultPadMaxCPS
	}
	if c.Padding.MinSec <= 0 {
		c.Padding.MinSec = defaultPadMinSec
	}
}

func (c *Config) normalizeTranslation() {
	if strings.TrimSpace(c.Translation.DefaultModel) == "" {
		c.Translation.DefaultModel = defaultTranslationModel
	}
	if strings.TrimSpace(c.Translation.WebsearchModel) == "" {
		c.Translation.WebsearchModel = c.Translation.DefaultModel
	}
	if normalized := language.Normalize(c.Translation.DefaultLangTo); normalized != "" {
		c.Translation.DefaultLangTo = normalized
	}
	if c.Translation.ContextLines <= 0 {
		c.Translation.ContextLines = defaultContextLines
	}
	if c.Translation.BatchLines <= 0 {
		c.Translation.BatchLines = defaultBatchLines
	}
	if c.Translation.DiscardLines < 0 {
		c.Translation.DiscardLines = defaultDiscardLines
	}
	if c.Translation.TranslateRetries <= 0 {
		c.Translation.TranslateRetries = defaultTranslateRetries
	}
	if c.Translation.ServerRetries <= 0 {
		c.Translation.ServerRetries = defaultServerRetries
	}
	if c.Translation.MaxContLines < 0 {
		c.Translation.MaxContLines = defaultMaxContLines
	}
}

func (c *Config) normalizeProviders() {
	c.Providers.TextProvider = strings.ToLower(strings.TrimSpace(c.Providers.TextProvider))
	if c.Providers.TextProvider == "" {
		c.Providers.TextProvider = defaultTextProvider
	}
	if strings.TrimSpace(c.Providers.OpenRouter.BaseURL) == "" {
		c.Providers.OpenRouter.BaseURL = defaultOpenRouterBaseURL
	}
	if c.Providers.OpenRouter.TimeoutSeconds <= 0 {
		c.Providers.OpenRouter.TimeoutSeconds = defaultOpenRouterTimeoutSec
	}
	if strings.TrimSpace(c.Providers.ElevenLabs.BaseURL) == "" {
		c.Providers.ElevenLabs.BaseURL = defaultElevenLabsBaseURL
	}
	if c.Providers.ElevenLabs.TimeoutSeconds <= 0 {
		c.Providers.ElevenLabs.TimeoutSeconds = defaultElevenLabsTimeoutSec
	}
	if c.Providers.ElevenLabs.MaxChunkMiB <= 0 {
		c.Providers.ElevenLabs.MaxChunkMiB = defaultElevenLabsMaxMiB
	}
}
