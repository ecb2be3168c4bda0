package config

const (
	defaultWorkingDir       = "~/.local/share/subfab"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultSTTModel         = "scribe_v1"
	defaultLangFrom         = "ja"
	defaultLangTo           = "en"
	defaultChunkConcurrency = 2

	defaultSoftMaxChars     = 30
	defaultHardMaxChars     = 60
	defaultHardMaxCarryover = 20

	defaultLineThresholdSec  = 0.5
	defaultSegThresholdSec   = 0.5
	defaultSegMinLines       = 4
	defaultSegBacktraceLimit = 20
	defaultSegForetraceLimit = 5
	defaultSegMinDelaySec    = 10.0
	defaultSegMaxGap         = 4
	defaultPadMaxLeadOutSec  = 1.0
	defaultPadMaxLeadInSec   = 0.25
	defaultPadMaxCPS         = 20.0
	defaultPadMinSec         = 1.0

	defaultTranslationModel = "google/gemini-2.5-pro"
	defaultWebsearchModel   = "google/gemini-2.5-pro"
	defaultContextLines     = 100
	defaultBatchLines       = 50
	defaultDiscardLines     = 10
	defaultTranslateRetries = 3
	defaultServerRetries    = 5
	defaultMaxContLines     = 5

	defaultTextProvider         = "openrouter"
	defaultOpenRouterBaseURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterReferer    = "https://github.com/subfab/subfab"
	defaultOpenRouterTitle      = "subfab"
	defaultOpenRouterTimeoutSec = 600
	defaultElevenLabsBaseURL    = "https://api.elevenlabs.io/v1/speech-to-text"
	defaultElevenLabsTimeoutSec = 3600
	defaultElevenLabsMaxMiB     = 1024
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkingDir:    defaultWorkingDir,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Transcription: Transcription{
			Model:            defaultSTTModel,
			DefaultLangFrom:  defaultLangFrom,
			ChunkConcurrency: defaultChunkConcurrency,
		},
		Parsing: Parsing{
			Delimiters:       []string{".", "!", "?", "。", "！", "？", "…"},
			SoftDelimiters:   []string{",", "、"},
			SoftMaxChars:     defaultSoftMaxChars,
			HardMaxChars:     defaultHardMaxChars,
			HardMaxCarryover: defaultHardMaxCarryover,
		},
		MistimedLines: MistimedLines{
			ThresholdSec: defaultLineThresholdSec,
		},
		MistimedSegs: MistimedSegs{
			ThresholdSec:   defaultSegThresholdSec,
			MinLines:       defaultSegMinLines,
			BacktraceLimit: defaultSegBacktraceLimit,
			ForetraceLimit: defaultSegForetraceLimit,
			MinDelaySec:    defaultSegMinDelaySec,
			MaxGapLines:    defaultSegMaxGap,
		},
		Padding: Padding{
			MaxLeadOutSec: defaultPadMaxLeadOutSec,
			MaxLeadInSec:  defaultPadMaxLeadInSec,
			MaxCPS:        defaultPadMaxCPS,
			MinSec:        defaultPadMinSec,
		},
		Translation: Translation{
			DefaultModel:     defaultTranslationModel,
			WebsearchModel:   defaultWebsearchModel,
			DefaultLangTo:    defaultLangTo,
			ContextLines:     defaultContextLines,
			BatchLines:       defaultBatchLines,
			DiscardLines:     defaultDiscardLines,
			TranslateRetries: defaultTranslateRetries,
			ServerRetries:    defaultServerRetries,
			MaxContLines:     defaultMaxContLines,
			AutoContext:      true,
		},
		Providers: Providers{
			TextProvider: defaultTextProvider,
			OpenRouter: OpenRouter{
				BaseURL:        defaultOpenRouterBaseURL,
				Referer:        defaultOpenRouterReferer,
				Title:          defaultOpenRouterTitle,
				TimeoutSeconds: defaultOpenRouterTimeoutSec,
			},
			ElevenLabs: ElevenLabs{
				BaseURL:        defaultElevenLabsBaseURL,
				TimeoutSeconds: defaultElevenLabsTimeoutSec,
				MaxChunkMiB:    defaultElevenLabsMaxMiB,
			},
		},
	}
}
