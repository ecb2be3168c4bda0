package config

import (
	"fmt"

	"subfab/internal/language"
)

// Validate ensures the configuration is usable. Provider credentials are
// checked lazily at client construction so read-only commands work without
// keys.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateParsing(); err != nil {
		return err
	}
	if err := c.validateLanguages(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateParsing() error {
	if c.Parsing.SoftMaxChars > c.Parsing.HardMaxChars {
		return fmt.Errorf("parsing: soft_max_chars (%d) exceeds hard_max_chars (%d)",
			c.Parsing.SoftMaxChars, c.Parsing.HardMaxChars)
	}
	if c.Parsing.HardMaxCarryover > c.Parsing.HardMaxChars {
		return fmt.Errorf("parsing: hard_max_carryover (%d) exceeds hard_max_chars (%d)",
			c.Parsing.HardMaxCarryover, c.Parsing.HardMaxChars)
	}
	return nil
}

func (c *Config) validateLanguages() error {
	if lang := c.Transcription.DefaultLangFrom; lang != "" && language.Normalize(lang) == "" {
		return fmt.Errorf("transcription.default_lang_from: unrecognized language %q", lang)
	}
	if lang := c.Translation.DefaultLangTo; lang != "" && language.Normalize(lang) == "" {
		return fmt.Errorf("translation.default_lang_to: unrecognized language %q", lang)
	}
	return nil
}

func (c *Config) validateProviders() error {
	switch c.Providers.TextProvider {
	case "openrouter", "gemini":
	default:
		return fmt.Errorf("providers.text_provider: unsupported value %q", c.Providers.TextProvider)
	}
	return nil
}
