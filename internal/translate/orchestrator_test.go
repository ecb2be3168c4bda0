package translate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"subfab/internal/fileutil"
	"subfab/internal/services"
	"subfab/internal/subtitle"
)

type step struct {
	text string
	err  error
}

// fakeGen replays a scripted sequence of completions, repeating the last step
// once the script runs out.
type fakeGen struct {
	model string
	steps []step
	calls []services.CompletionRequest
}

func (f *fakeGen) Complete(_ context.Context, req services.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	idx := len(f.calls) - 1
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	s := f.steps[idx]
	return s.text, s.err
}

func (f *fakeGen) Model() string {
	if f.model == "" {
		return "openai/gpt-4o"
	}
	return f.model
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeTrack(texts ...string) *subtitle.Track {
	lines := make([]subtitle.Line, len(texts))
	for i, text := range texts {
		lines[i] = subtitle.Line{
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i)*time.Second + 900*time.Millisecond,
			Text:  text,
			Style: subtitle.DefaultStyle,
		}
	}
	return subtitle.NewTrack(lines)
}

func testParams() Params {
	p := DefaultParams()
	p.RetryBaseDelay = 0
	p.RetryMaxDelay = 0
	return p
}

func TestTranslateBatchesWithLookaheadAndPersistsPartial(t *testing.T) {
	track := makeTrack("s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8")
	gen := &fakeGen{steps: []step{
		{text: "t1\nt2\nt3\nt4\nt5"},
		{text: "t4\nt5\nt6\nt7\nt8"},
		{text: "t7\nt8"},
	}}
	p := testParams()
	p.BatchLines = 3
	p.ContextLines = 2
	p.LookaheadDiscard = 2

	partial := filepath.Join(t.TempDir(), "partial.txt")
	o := New(testLogger(), gen, p)

	got, err := o.Translate(context.Background(), track, "A drama.", "ja", "en", partial, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Translate = %#v, want %#v", got, want)
	}
	if len(gen.calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(gen.calls))
	}

	first := gen.calls[0]
	if !strings.Contains(first.System, "from Japanese to natural colloquial English") {
		t.Errorf("system prompt missing language names: %q", first.System)
	}
	if !strings.Contains(first.Prompt, "A drama.") || !strings.Contains(first.Prompt, "1. s1") || !strings.Contains(first.Prompt, "5. s5") {
		t.Errorf("first prompt missing context or numbered batch:\n%s", first.Prompt)
	}
	if strings.Contains(first.Prompt, "For continuity") {
		t.Errorf("first prompt should carry no continuity section:\n%s", first.Prompt)
	}

	second := gen.calls[1]
	if !strings.Contains(second.Prompt, "For continuity, here are the last 2 translated entries:\nt2\nt3") {
		t.Errorf("second prompt missing continuity tail:\n%s", second.Prompt)
	}

	persisted, err := fileutil.ReadLines(partial)
	if err != nil {
		t.Fatalf("read partial: %v", err)
	}
	if !reflect.DeepEqual(persisted, want) {
		t.Fatalf("partial file = %#v, want %#v", persisted, want)
	}
}

func TestTranslateExtendsBatchOverContinuations(t *testing.T) {
	track := makeTrack("a", "b "+subtitle.ContinuationMarker, "c", "d")
	gen := &fakeGen{steps: []step{
		{text: "A\nB\nC"},
		{text: "D"},
	}}
	p := testParams()
	p.BatchLines = 2
	p.LookaheadDiscard = 0

	o := New(testLogger(), gen, p)
	got, err := o.Translate(context.Background(), track, "", "ja", "en", "", nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"A", "B", "C", "D"}) {
		t.Fatalf("Translate = %#v", got)
	}
	if !strings.Contains(gen.calls[0].Prompt, "3. c") {
		t.Errorf("batch was not extended past continuation:\n%s", gen.calls[0].Prompt)
	}
}

func TestTranslateForceFitsPersistentMismatch(t *testing.T) {
	track := makeTrack("s1", "s2", "s3", "s4", "s5")
	gen := &fakeGen{steps: []step{{text: "t1\nt2\nt3\nt4"}}}
	p := testParams()
	p.BatchLines = 5
	p.LookaheadDiscard = 0
	p.TranslateRetries = 3

	o := New(testLogger(), gen, p)
	got, err := o.Translate(context.Background(), track, "", "ja", "en", "", nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(gen.calls) != 3 {
		t.Fatalf("calls = %d, want 3 corrective attempts", len(gen.calls))
	}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[4] != MissingPlaceholder {
		t.Fatalf("got[4] = %q, want placeholder", got[4])
	}
	if !strings.Contains(gen.calls[1].Prompt, "had 4 entries, but I need exactly 5") {
		t.Errorf("retry prompt missing count correction:\n%s", gen.calls[1].Prompt)
	}
}

func TestTranslateStripsNumberingAndEllipses(t *testing.T) {
	track := makeTrack("s1", "s2", "s3")
	gen := &fakeGen{steps: []step{{text: "1. I was thinking...\n2. ...about you\n3. done"}}}
	p := testParams()
	p.BatchLines = 3
	p.LookaheadDiscard = 0

	o := New(testLogger(), gen, p)
	got, err := o.Translate(context.Background(), track, "", "ja", "en", "", nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := []string{"I was thinking", "about you", "done"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Translate = %#v, want %#v", got, want)
	}
}

func TestTranslateResumesFromPartialFile(t *testing.T) {
	track := makeTrack("s1", "s2", "s3", "s4")
	partial := filepath.Join(t.TempDir(), "partial.txt")
	if err := fileutil.WriteLines(partial, []string{"p1", "p2"}); err != nil {
		t.Fatal(err)
	}

	gen := &fakeGen{steps: []step{{text: "t3\nt4"}}}
	p := testParams()
	p.LookaheadDiscard = 0

	o := New(testLogger(), gen, p)
	got, err := o.Translate(context.Background(), track, "", "ja", "en", partial, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := []string{"p1", "p2", "t3", "t4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Translate = %#v, want %#v", got, want)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(gen.calls))
	}
	if !strings.Contains(gen.calls[0].Prompt, "1. s3") {
		t.Errorf("resume batch should start at line 3:\n%s", gen.calls[0].Prompt)
	}
}

func TestTranslateRetriesTransientFailures(t *testing.T) {
	track := makeTrack("s1", "s2")
	gen := &fakeGen{steps: []step{
		{err: &services.StatusError{StatusCode: 503, Body: "overloaded"}},
		{text: "t1\nt2"},
	}}
	p := testParams()
	p.LookaheadDiscard = 0

	var slept []time.Duration
	o := New(testLogger(), gen, p, WithSleeper(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}))

	got, err := o.Translate(context.Background(), track, "", "ja", "en", "", nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"t1", "t2"}) {
		t.Fatalf("Translate = %#v", got)
	}
	if len(gen.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(gen.calls))
	}
	if len(slept) != 1 {
		t.Fatalf("slept %d times, want 1", len(slept))
	}
}

func TestTranslateAbortsOnFatalError(t *testing.T) {
	track := makeTrack("s1", "s2")
	gen := &fakeGen{steps: []step{{err: errors.New("invalid api key")}}}
	p := testParams()
	p.LookaheadDiscard = 0

	o := New(testLogger(), gen, p)
	if _, err := o.Translate(context.Background(), track, "", "ja", "en", "", nil); err == nil {
		t.Fatal("expected fatal error to surface")
	}
	if len(gen.calls) != 1 {
		t.Fatalf("calls = %d, want 1 (no retry of fatal errors)", len(gen.calls))
	}
}

func TestTranslateRateLimitsFreeTierModels(t *testing.T) {
	track := makeTrack("s1", "s2")
	gen := &fakeGen{
		model: freeTierPrefix + "-03-25:free",
		steps: []step{{text: "t1"}, {text: "t2"}},
	}
	p := testParams()
	p.BatchLines = 1
	p.LookaheadDiscard = 0
	p.ContextLines = 0

	current := time.Unix(1_000_000, 0)
	var slept []time.Duration
	o := New(testLogger(), gen, p,
		WithClock(func() time.Time { return current }),
		WithSleeper(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			current = current.Add(d)
			return nil
		}))

	if _, err := o.Translate(context.Background(), track, "", "ja", "en", "", nil); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(slept) != 1 {
		t.Fatalf("slept %d times, want 1 (first request is free)", len(slept))
	}
	if slept[0] != freeTierInterval {
		t.Fatalf("slept %v, want %v", slept[0], freeTierInterval)
	}
}

func TestTranslateSegmentPassesPrefixThrough(t *testing.T) {
	track := makeTrack("s1", "s2", "s3", "s4", "s5", "s6")
	gen := &fakeGen{steps: []step{{text: "t3\nt4"}}}
	p := testParams()
	p.LookaheadDiscard = 2

	seg := subtitle.Range{Start: 2, End: 3}
	o := New(testLogger(), gen, p)
	got, err := o.Translate(context.Background(), track, "", "ja", "en", "", &seg)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := []string{"s1", "s2", "t3", "t4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Translate = %#v, want %#v", got, want)
	}
}

func TestGenerateContextUsesGrounding(t *testing.T) {
	track := makeTrack("line one", "line two")
	gen := &fakeGen{steps: []step{{text: "  A talk show.\nGlossary\nfoo: bar\n"}}}
	o := New(testLogger(), gen, testParams())

	got, err := o.GenerateContext(context.Background(), track, "episode1.mkv", "ja", "en")
	if err != nil {
		t.Fatalf("GenerateContext: %v", err)
	}
	if got != "A talk show.\nGlossary\nfoo: bar" {
		t.Fatalf("context = %q", got)
	}
	req := gen.calls[0]
	if !req.Grounding {
		t.Error("context generation should request grounding")
	}
	for _, want := range []string{"episode1.mkv", "line one\nline two", "Glossary"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, req.Prompt)
		}
	}
}

func TestApplyTexts(t *testing.T) {
	track := makeTrack("s1", "s2")
	if err := ApplyTexts(track, []string{"t1", "t2"}); err != nil {
		t.Fatalf("ApplyTexts: %v", err)
	}
	if track.Line(0).Text != "t1" || track.Line(1).Text != "t2" {
		t.Fatalf("texts not applied: %q, %q", track.Line(0).Text, track.Line(1).Text)
	}
	if track.Line(0).Start != 0 || track.Line(1).End != time.Second+900*time.Millisecond {
		t.Fatal("timing should be preserved")
	}
	if err := ApplyTexts(track, []string{"only one"}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}
