package segmentation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"subfab/internal/subtitle"
	"subfab/internal/transcript"
)

func word(text string, startMS, endMS int) transcript.Word {
	return transcript.Word{
		Text:  text,
		Start: time.Duration(startMS) * time.Millisecond,
		End:   time.Duration(endMS) * time.Millisecond,
		Kind:  transcript.KindWord,
	}
}

func spacing(text string, atMS int) transcript.Word {
	w := word(text, atMS, atMS)
	w.Kind = transcript.KindSpacing
	return w
}

func singleSegment(words ...transcript.Word) *transcript.Transcript {
	return &transcript.Transcript{Segments: []transcript.Segment{{Words: words}}}
}

func defaultParams() Params {
	return Params{
		Delimiters:       []string{"。", "？", "！", ".", "?", "!"},
		SoftDelimiters:   []string{"、", ","},
		SoftMaxLen:       20,
		HardMaxLen:       50,
		HardCarryoverLen: 10,
	}
}

func TestSegmentMergesWordsIntoOneLine(t *testing.T) {
	engine := NewEngine(Params{Delimiters: []string{"."}, SoftMaxLen: 20, HardMaxLen: 1000, HardCarryoverLen: 10})
	tr := singleSegment(
		word("Hi", 0, 500),
		spacing(" ", 500),
		word("there.", 500, 1200),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", track.Len())
	}
	got := track.Line(0)
	if got.Text != "Hi there." {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if got.Start != 0 || got.End != 1200*time.Millisecond {
		t.Fatalf("unexpected timing %v-%v", got.Start, got.End)
	}
}

func TestSegmentBreaksOnDelimiter(t *testing.T) {
	engine := NewEngine(defaultParams())
	tr := singleSegment(
		word("First.", 0, 1000),
		spacing(" ", 1000),
		word("Second.", 1000, 2000),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", track.Len())
	}
	if track.Line(0).Text != "First." || track.Line(1).Text != "Second." {
		t.Fatalf("unexpected lines %q %q", track.Line(0).Text, track.Line(1).Text)
	}
}

func TestSegmentLeadingDelimiterJoinsPreviousLine(t *testing.T) {
	engine := NewEngine(defaultParams())
	tr := singleSegment(
		word("終わり", 0, 1000),
		word("。そして", 1000, 2000),
		word("続き。", 2000, 3000),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", track.Len(), texts(track))
	}
	if track.Line(0).Text != "終わり。" {
		t.Fatalf("expected delimiter to join first line, got %q", track.Line(0).Text)
	}
	if track.Line(1).Text != "そして続き。" {
		t.Fatalf("unexpected second line %q", track.Line(1).Text)
	}
}

func TestSegmentDropsPureDelimiterLine(t *testing.T) {
	engine := NewEngine(defaultParams())
	tr := singleSegment(
		word("Done.", 0, 1000),
		word(".", 1000, 1100),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 1 {
		t.Fatalf("expected pure-delimiter line dropped, got %d lines: %v", track.Len(), texts(track))
	}
}

func TestSegmentBreaksOnAudioEvent(t *testing.T) {
	engine := NewEngine(defaultParams())
	event := word("(laughs)", 1000, 2000)
	event.Kind = transcript.KindAudioEvent
	tr := singleSegment(
		word("Hello", 0, 1000),
		event,
		word("again.", 2000, 3000),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", track.Len(), texts(track))
	}
	if !strings.HasSuffix(track.Line(0).Text, "(laughs)") {
		t.Fatalf("expected audio event to close the first line, got %q", track.Line(0).Text)
	}
}

func TestSegmentSoftBreakOnlyPastSoftLimit(t *testing.T) {
	params := defaultParams()
	params.SoftMaxLen = 10
	engine := NewEngine(params)
	tr := singleSegment(
		word("short,", 0, 500),
		spacing(" ", 500),
		word("but", 500, 800),
		spacing(" ", 800),
		word("now long enough,", 800, 1500),
		spacing(" ", 1500),
		word("tail.", 1500, 2000),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", track.Len(), texts(track))
	}
	if !strings.HasSuffix(track.Line(0).Text, ",") {
		t.Fatalf("expected soft break at comma, got %q", track.Line(0).Text)
	}
}

func TestHardOverflowCharacterCarryover(t *testing.T) {
	params := defaultParams()
	params.HardMaxLen = 20
	params.HardCarryoverLen = 10
	engine := NewEngine(params)
	tr := singleSegment(
		word("aaaaa", 0, 500),
		spacing(" ", 500),
		word("bbbbb", 500, 1000),
		spacing(" ", 1000),
		word("ccccc", 1000, 1500),
		spacing(" ", 1500),
		word("ddddd", 1500, 2000),
		word(".", 2000, 2100),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", track.Len(), texts(track))
	}
	if !track.Line(0).Continues() {
		t.Fatalf("expected continuation marker on head line, got %q", track.Line(0).Text)
	}
	if track.Line(1).Text != "ddddd." {
		t.Fatalf("unexpected carryover line %q", track.Line(1).Text)
	}
}

func TestHardOverflowSingleGiantWordForcesBreak(t *testing.T) {
	params := defaultParams()
	params.HardMaxLen = 10
	params.HardCarryoverLen = 5
	engine := NewEngine(params)
	giant := strings.Repeat("x", 30)
	tr := singleSegment(
		word(giant, 0, 1000),
		word("next.", 1000, 2000),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", track.Len(), texts(track))
	}
	if track.Line(0).Text != giant {
		t.Fatalf("expected giant word on its own line, got %q", track.Line(0).Text)
	}
	if track.Line(0).Continues() {
		t.Fatal("forced hard break must not carry a continuation marker")
	}
}

type fakeSplitter struct {
	first  string
	second string
	err    error
	calls  int
}

func (f *fakeSplitter) Split(_ context.Context, _ string) (string, string, error) {
	f.calls++
	return f.first, f.second, f.err
}

func TestHardOverflowSemanticSplit(t *testing.T) {
	params := defaultParams()
	params.HardMaxLen = 20
	splitter := &fakeSplitter{first: "aaaaa bbbbb", second: "ccccc ddddd"}
	engine := NewEngine(params, WithSplitter(splitter))
	tr := singleSegment(
		word("aaaaa", 0, 500),
		spacing(" ", 500),
		word("bbbbb", 500, 1000),
		spacing(" ", 1000),
		word("ccccc", 1000, 1500),
		spacing(" ", 1500),
		word("ddddd", 1500, 2000),
		word(".", 2000, 2100),
	)
	track := engine.Segment(context.Background(), tr)
	if splitter.calls == 0 {
		t.Fatal("expected splitter to be consulted")
	}
	if track.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", track.Len(), texts(track))
	}
	if strings.TrimSpace(track.Line(0).DisplayText()) != "aaaaa bbbbb" {
		t.Fatalf("unexpected head line %q", track.Line(0).Text)
	}
	if !track.Line(0).Continues() {
		t.Fatal("expected continuation marker on head line")
	}
	if track.Line(1).Text != "ccccc ddddd." {
		t.Fatalf("unexpected tail line %q", track.Line(1).Text)
	}
}

func TestHardOverflowSemanticSplitInvalidFallsBack(t *testing.T) {
	params := defaultParams()
	params.HardMaxLen = 20
	params.HardCarryoverLen = 10
	// The capability returns text that does not reconstruct the source.
	splitter := &fakeSplitter{first: "something", second: "else entirely"}
	engine := NewEngine(params, WithSplitter(splitter))
	tr := singleSegment(
		word("aaaaa", 0, 500),
		spacing(" ", 500),
		word("bbbbb", 500, 1000),
		spacing(" ", 1000),
		word("ccccc", 1000, 1500),
		spacing(" ", 1500),
		word("ddddd", 1500, 2000),
		word(".", 2000, 2100),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 2 {
		t.Fatalf("expected character fallback to still split, got %d lines", track.Len())
	}
	if track.Line(1).Text != "ddddd." {
		t.Fatalf("unexpected fallback carryover %q", track.Line(1).Text)
	}
}

func TestHardOverflowSplitterErrorFallsBack(t *testing.T) {
	params := defaultParams()
	params.HardMaxLen = 15
	splitter := &fakeSplitter{err: errors.New("capability down")}
	engine := NewEngine(params, WithSplitter(splitter))
	tr := singleSegment(
		word("aaaaa", 0, 500),
		spacing(" ", 500),
		word("bbbbb", 500, 1000),
		spacing(" ", 1000),
		word("ccccc", 1000, 1500),
		word(".", 1500, 1600),
	)
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 2 {
		t.Fatalf("expected fallback split, got %d lines: %v", track.Len(), texts(track))
	}
}

func TestSegmentationRoundTripPreservesText(t *testing.T) {
	engine := NewEngine(defaultParams())
	words := []transcript.Word{
		word("The", 0, 200), spacing(" ", 200),
		word("quick", 200, 500), spacing(" ", 500),
		word("brown", 500, 800), spacing(" ", 800),
		word("fox.", 800, 1200), spacing(" ", 1200),
		word("It", 1200, 1400), spacing(" ", 1400),
		word("jumps", 1400, 1700), spacing(" ", 1700),
		word("over!", 1700, 2100),
	}
	source := strings.TrimSpace(groupText(words))
	track := engine.Segment(context.Background(), singleSegment(words...))

	var joined []string
	for _, line := range track.Lines() {
		joined = append(joined, line.DisplayText())
	}
	got := strings.Join(strings.Fields(strings.Join(joined, " ")), " ")
	want := strings.Join(strings.Fields(source), " ")
	if got != want {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestEmptySegmentsSkipped(t *testing.T) {
	engine := NewEngine(defaultParams())
	tr := &transcript.Transcript{Segments: []transcript.Segment{
		{},
		{Words: []transcript.Word{word("Hello.", 0, 1000)}},
	}}
	track := engine.Segment(context.Background(), tr)
	if track.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", track.Len())
	}
}

func texts(track *subtitle.Track) []string {
	var out []string
	for _, l := range track.Lines() {
		out = append(out, l.Text)
	}
	return out
}
