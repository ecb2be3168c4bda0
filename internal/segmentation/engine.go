package segmentation

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"subfab/internal/subtitle"
	"subfab/internal/transcript"
)

// Params controls line boundary decisions. Lengths count runes, not bytes.
type Params struct {
	// Delimiters force a line break when a word ends with one.
	Delimiters []string
	// SoftDelimiters break a line only once it exceeds SoftMaxLen.
	SoftDelimiters []string
	SoftMaxLen     int
	HardMaxLen     int
	// HardCarryoverLen caps the characters carried to the next line when the
	// fallback character-count split is used.
	HardCarryoverLen int
}

// Engine converts transcripts into subtitle tracks.
type Engine struct {
	params   Params
	splitter Splitter
	logger   *slog.Logger
}

// Option customizes the engine.
type Option func(*Engine)

// WithSplitter enables semantic hard-overflow splitting through the given
// capability. Without it the engine always uses the character-count fallback.
func WithSplitter(s Splitter) Option {
	return func(e *Engine) {
		e.splitter = s
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs a segmentation engine.
func NewEngine(params Params, opts ...Option) *Engine {
	e := &Engine{params: params, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Segment groups the transcript's words into subtitle lines. Empty segments
// are skipped; a trailing partial group is flushed as a final line.
func (e *Engine) Segment(ctx context.Context, tr *transcript.Transcript) *subtitle.Track {
	track := subtitle.NewTrack(nil)
	for _, seg := range tr.Segments {
		if len(seg.Words) == 0 {
			continue
		}
		for _, line := range e.delimitSegment(ctx, seg) {
			track.Append(line)
		}
	}
	e.logger.Debug("segmented transcript", "lines", track.Len(), "segments", len(tr.Segments))
	return track
}

// delimitSegment merges one segment's words into lines.
func (e *Engine) delimitSegment(ctx context.Context, seg transcript.Segment) []subtitle.Line {
	var lines []subtitle.Line
	var group []transcript.Word

	flush := func(words []transcript.Word) {
		line := e.buildLine(words)
		// Lines containing only a delimiter are dropped.
		if e.isPureDelimiter(line.Text) {
			return
		}
		lines = append(lines, line)
	}

	for _, word := range seg.Words {
		group = append(group, word)
		text := groupText(group)
		forceBreak := false

		// A word starting with a hard delimiter ends the previous sentence:
		// the delimiter joins the previous word and the remainder starts a
		// fresh group.
		if len(group) > 1 && utf8.RuneCountInString(word.Text) > 1 && e.startsWithDelimiter(word.Text) {
			group = group[:len(group)-1]
			first, rest := splitLeadingRune(word.Text)
			group[len(group)-1].Text += first
			lines = append(lines, e.buildLine(group))

			carried := word
			carried.Text = rest
			group = []transcript.Word{carried}
			text = rest
		}

		switch {
		case strings.HasSuffix(word.Text, "」"):
			forceBreak = true
		case strings.HasSuffix(word.Text, "「") && utf8.RuneCountInString(strings.TrimSpace(word.Text)) > 1:
			forceBreak = true
		case e.endsWithAny(word.Text, e.params.Delimiters):
			forceBreak = true
		case word.Kind == transcript.KindAudioEvent:
			forceBreak = true
		}

		if utf8.RuneCountInString(text) > e.params.HardMaxLen {
			carryover := e.hardSplitCarryover(ctx, group, text)
			if carryover > 0 && carryover < len(group) {
				kept := group[:len(group)-carryover]
				kept[len(kept)-1].Text += subtitle.ContinuationMarker
				lines = append(lines, e.buildLine(kept))

				carried := make([]transcript.Word, carryover)
				copy(carried, group[len(group)-carryover:])
				group = carried
			} else {
				// The current word alone exceeds the hard limit; no carryover
				// can make progress, so break here.
				forceBreak = true
			}
		} else if utf8.RuneCountInString(text) > e.params.SoftMaxLen && e.endsWithAny(word.Text, e.params.SoftDelimiters) {
			forceBreak = true
		}

		if forceBreak && len(group) > 0 {
			flush(group)
			group = nil
		}
	}

	if len(group) > 0 {
		flush(group)
	}
	return lines
}

// hardSplitCarryover decides how many trailing words move to the next line
// when the group exceeds the hard limit. The semantic splitter is tried first;
// any failure falls back to the character-count method. Returns 0 when no
// split can make progress.
func (e *Engine) hardSplitCarryover(ctx context.Context, group []transcript.Word, text string) int {
	if e.splitter != nil {
		if count, ok := e.semanticCarryover(ctx, group, text); ok {
			return count
		}
	}
	return characterCarryover(group, e.params.HardCarryoverLen)
}

// semanticCarryover asks the splitting capability for a two-line break and
// reconstructs, from the end of the group backward, the minimal word count
// whose concatenation matches the returned second line.
func (e *Engine) semanticCarryover(ctx context.Context, group []transcript.Word, text string) (int, bool) {
	leading := text[:len(text)-len(strings.TrimLeft(text, " \t"))]
	trailing := text[len(strings.TrimRight(text, " \t")):]
	trimmed := strings.TrimSpace(text)

	first, second, err := e.splitter.Split(ctx, trimmed)
	if err != nil {
		e.logger.Warn("semantic split failed, using character carryover", "error", err)
		return 0, false
	}
	firstText := leading + strings.TrimSpace(first)
	secondText := strings.TrimSpace(second) + trailing
	if !strings.HasPrefix(text, firstText) || !strings.HasSuffix(text, secondText) {
		e.logger.Warn("semantic split does not reconstruct source text", "first", first, "second", second)
		return 0, false
	}

	rebuilt := ""
	count := 0
	for i := len(group) - 1; i >= 0; i-- {
		rebuilt = group[i].Text + rebuilt
		count++
		if strings.HasSuffix(rebuilt, secondText) {
			return count, true
		}
	}
	e.logger.Warn("semantic split did not align with word boundaries", "second", secondText)
	return 0, false
}

// characterCarryover takes trailing words, in reverse, up to limit characters.
func characterCarryover(group []transcript.Word, limit int) int {
	chars := 0
	count := 0
	for i := len(group) - 1; i >= 0; i-- {
		wordLen := utf8.RuneCountInString(group[i].Text)
		if chars+wordLen > limit {
			break
		}
		chars += wordLen
		count++
	}
	return count
}

// buildLine merges a word group into one cleaned line.
func (e *Engine) buildLine(group []transcript.Word) subtitle.Line {
	var sb strings.Builder
	for _, w := range group {
		sb.WriteString(w.Text)
	}
	return subtitle.Line{
		Start:   group[0].Start,
		End:     group[len(group)-1].End,
		Text:    CleanLineText(sb.String()),
		Speaker: group[0].Speaker,
		Style:   subtitle.DefaultStyle,
	}
}

func (e *Engine) isPureDelimiter(text string) bool {
	for _, d := range e.params.Delimiters {
		if text == d {
			return true
		}
	}
	for _, d := range e.params.SoftDelimiters {
		if text == d {
			return true
		}
	}
	return false
}

func (e *Engine) startsWithDelimiter(text string) bool {
	for _, d := range e.params.Delimiters {
		if d != "" && strings.HasPrefix(text, d) {
			return true
		}
	}
	return false
}

func (e *Engine) endsWithAny(text string, delims []string) bool {
	for _, d := range delims {
		if d != "" && strings.HasSuffix(text, d) {
			return true
		}
	}
	return false
}

func groupText(group []transcript.Word) string {
	var sb strings.Builder
	for _, w := range group {
		sb.WriteString(w.Text)
	}
	return sb.String()
}

func splitLeadingRune(text string) (string, string) {
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 {
		return "", ""
	}
	return string(r), text[size:]
}
