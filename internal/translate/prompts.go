package translate

import (
	"fmt"
	"strings"

	"subfab/internal/language"
	"subfab/internal/subtitle"
)

// systemPrompt establishes the translator role. The continuation marker must
// be omitted from output, and line breaks inside an entry use the ASS escape.
func systemPrompt(langFrom, langTo string) string {
	from := language.DisplayName(langFrom)
	to := language.DisplayName(langTo)
	return fmt.Sprintf("You are a professional translator from %s to natural colloquial %s. "+
		"Translate the provided subtitle entries liberally and concisely while preserving the meaning and nuance. "+
		"Return ONLY the translated entries, maintaining EXACT entry count and order. Do not merge entries.\n\n"+
		"Special instructions:\n"+
		"1. '%s' indicates that text was split mid-sentence to be continued on the next entries. You must omit '%s' from the translated text.\n"+
		"2. As per ASS syntax, use the special escape character '\\N' for line breaks within a subtitle entry.\n"+
		"3. Use ASS syntax for styling if needed (e.g. {\\i1}italics{\\i0}). \n"+
		"4. Do not split %s words across subtitle entries.",
		from, to, subtitle.ContinuationMarker, subtitle.ContinuationMarker, to)
}

// batchPrompt assembles the user prompt for one batch: general context, the
// tail of previous translations for continuity, and the numbered source
// entries (batch plus lookahead).
func batchPrompt(previous []string, contextPrompt string, batch []subtitle.Line, langFrom, langTo string, contextLines int) string {
	var contextSection string
	if len(previous) > 0 {
		tail := previous
		if len(tail) > contextLines {
			tail = tail[len(tail)-contextLines:]
		}
		contextSection = fmt.Sprintf("For continuity, here are the last %d translated entries:\n%s\n\n\nContinue directly from the last entry. ",
			len(tail), strings.Join(tail, "\n"))
	}

	return fmt.Sprintf("Context:\n%s\n\n%sTranslate the following %d %s subtitle entries to %s. Maintain exact entry count and order:\n\n%s",
		contextPrompt, contextSection, len(batch),
		language.DisplayName(langFrom), language.DisplayName(langTo),
		numberLines(lineTexts(batch)))
}

// retryPrompt asks for a corrected translation after a line count mismatch,
// quoting both the source entries and the previous wrong output.
func retryPrompt(wrong []string, batch []subtitle.Line, langFrom, langTo string) string {
	from := language.DisplayName(langFrom)
	to := language.DisplayName(langTo)
	return fmt.Sprintf("Translate exactly %d %s subtitle entries to %s.\n"+
		"Your previous translation had %d entries, but I need exactly %d entries.\n\n"+
		"Original %s entries:\n%s\n\n"+
		"Your previous translation with incorrect entry count:\n%s\n\n"+
		"Please correct your translation to provide exactly %d entries of %s subtitles.\n"+
		"Maintain the same content but adjust your output to match the required entry count.",
		len(batch), from, to,
		len(wrong), len(batch),
		from, numberLines(lineTexts(batch)),
		numberLines(wrong),
		len(batch), to)
}

// contextGenPrompt requests a transcript quality assessment, synopsis, and
// bilingual glossary from the full track text.
func contextGenPrompt(track *subtitle.Track, filename, langFrom, langTo string) string {
	from := language.DisplayName(langFrom)
	to := language.DisplayName(langTo)
	texts := make([]string, 0, track.Len())
	for _, line := range track.Lines() {
		texts = append(texts, line.Text)
	}
	return fmt.Sprintf("You are commissioning a translator and they have requested information in English. "+
		"They will be provided with only the transcript attached. They will not be provided the source audio or video or other material. Make no reference to those. "+
		"You are to: (1) State whether the transcript is high quality or if it was auto-generated with errors to inform the translator how strictly or liberally to follow the text, "+
		"(2) State what the content is in 1 sentence, "+
		"(3) Summarize the contents in 4 sentences, and "+
		"(4) Under the header 'Glossary', provide a comprehensive simple mapping of jargon, names and titles from %s to %s for the translator to keep consistent, noting mis-spellings if any (format: '%s: %s').\n"+
		"Respond in text format with no special formatting or numbering. Provide only the information requested. Be concise. "+
		"Japanese names should be lastname-firstname order. Search the internet to ensure accuracy of the glossary.\n\n"+
		"Transcript of Video: %s\n%s",
		from, to, from, to, filename, strings.Join(texts, "\n"))
}

func lineTexts(lines []subtitle.Line) []string {
	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = strings.ReplaceAll(line.Text, "\n", `\N`)
	}
	return texts
}

func numberLines(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, line)
	}
	return b.String()
}
