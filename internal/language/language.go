package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize canonicalizes a language identifier to its BCP 47 tag string.
// Accepts two- and three-letter codes and full names ("japanese"). Returns
// empty string for unrecognized input.
func Normalize(code string) string {
	tag, ok := parse(code)
	if !ok {
		return ""
	}
	return tag.String()
}

// ToISO2 converts any recognized language identifier to its ISO 639-1
// two-letter base code. Returns empty string for unrecognized input.
func ToISO2(code string) string {
	tag, ok := parse(code)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// DisplayName returns the English display name for a language identifier.
// Returns "Unknown" for empty input, or the uppercased code when the tag
// parses but has no known name.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, ok := parse(trimmed)
	if !ok {
		return strings.ToUpper(trimmed)
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return name
}

// ExtractFromTags extracts and normalizes the language from stream metadata
// tags. Checks common tag keys: language, LANGUAGE, Language, language_ietf,
// lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value == "" || strings.EqualFold(value, "und") {
				continue
			}
			if normalized := ToISO2(value); normalized != "" {
				return normalized
			}
		}
	}
	return ""
}

// Full-name forms seen in config files and CLI flags. Codes go through
// language.Parse directly.
var byName = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
}

func parse(code string) (language.Tag, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return language.Tag{}, false
	}
	if mapped, ok := byName[strings.ToLower(code)]; ok {
		code = mapped
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Tag{}, false
	}
	return tag, true
}
