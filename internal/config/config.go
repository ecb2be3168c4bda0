package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working directory and tool binary configuration.
type Paths struct {
	// WorkingDir is where pipeline artifacts are written when the source file's
	// directory is not used.
	WorkingDir    string `toml:"working_dir"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level   string `toml:"level"`
	Format  string `toml:"format"`
	File    string `toml:"file"`
	NoColor bool   `toml:"no_color"`
}

// Transcription configures the speech-to-text stage.
type Transcription struct {
	Model            string `toml:"model"`
	DefaultLangFrom  string `toml:"default_lang_from"`
	ChunkConcurrency int    `toml:"chunk_concurrency"`
}

// Parsing configures the words-to-lines segmentation engine.
type Parsing struct {
	Delimiters       []string `toml:"delimiters"`
	SoftDelimiters   []string `toml:"soft_delimiters"`
	SoftMaxChars     int      `toml:"soft_max_chars"`
	HardMaxChars     int      `toml:"hard_max_chars"`
	HardMaxCarryover int      `toml:"hard_max_carryover"`
	// ParsingModel is the text model used for semantic hard splits. Empty
	// disables the AI split and always uses the character-count fallback.
	ParsingModel string `toml:"parsing_model"`
}

// MistimedLines configures short-line detection for the fix stage.
type MistimedLines struct {
	ThresholdSec float64 `toml:"mistimed_line_thresh_sec"`
}

// MistimedSegs configures mistimed segment discovery for re-transcription.
type MistimedSegs struct {
	ThresholdSec   float64 `toml:"mistimed_seg_thresh_sec"`
	MinLines       int     `toml:"seg_min_lines"`
	BacktraceLimit int     `toml:"seg_backtrace_limit"`
	ForetraceLimit int     `toml:"seg_foretrace_limit"`
	MinDelaySec    float64 `toml:"seg_min_delay"`
	MaxGapLines    int     `toml:"seg_max_gap"`
}

// Padding configures the duration padding pass.
type Padding struct {
	MaxLeadOutSec float64 `toml:"max_lead_out_sec"`
	MaxLeadInSec  float64 `toml:"max_lead_in_sec"`
	MaxCPS        float64 `toml:"max_cps"`
	MinSec        float64 `toml:"min_sec"`
}

// Translation configures the batched translation stage.
type Translation struct {
	DefaultModel     string `toml:"default_model"`
	WebsearchModel   string `toml:"websearch_model"`
	DefaultLangTo    string `toml:"default_lang_to"`
	ContextLines     int    `toml:"context_lines"`
	BatchLines       int    `toml:"batch_lines"`
	DiscardLines     int    `toml:"discard_lines"`
	TranslateRetries int    `toml:"translate_retries"`
	ServerRetries    int    `toml:"server_retries"`
	MaxContLines     int    `toml:"max_cont_lines"`
	// AutoContext generates and caches a context file when none exists.
	AutoContext bool `toml:"auto_context"`
}

// OpenRouter contains OpenRouter API connection settings.
type OpenRouter struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Gemini contains Google Gemini API connection settings.
type Gemini struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// ElevenLabs contains ElevenLabs speech-to-text connection settings.
type ElevenLabs struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxChunkMiB    int    `toml:"max_chunk_mib"`
}

// Providers selects and configures the external services.
type Providers struct {
	// TextProvider routes completions: "openrouter" or "gemini".
	TextProvider string     `toml:"text_provider"`
	OpenRouter   OpenRouter `toml:"openrouter"`
	Gemini       Gemini     `toml:"gemini"`
	ElevenLabs   ElevenLabs `toml:"elevenlabs"`
}

// Config is the root application configuration.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Transcription Transcription `toml:"transcription"`
	Parsing       Parsing       `toml:"parsing"`
	MistimedLines MistimedLines `toml:"mistimed_lines"`
	MistimedSegs  MistimedSegs  `toml:"mistimed_segs"`
	Padding       Padding       `toml:"padding"`
	Translation   Translation   `toml:"translation"`
	Providers     Providers     `toml:"providers"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subfab/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has path fields expanded and all values normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("subfab.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
