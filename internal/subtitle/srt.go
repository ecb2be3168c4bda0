package subtitle

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ParseSRT parses SRT content into a track. Cue numbers are ignored; identity
// is positional. Malformed cues fail the whole parse so that index addressing
// never silently drifts.
func ParseSRT(raw []byte) (*Track, error) {
	normalized := strings.ReplaceAll(string(raw), "\r\n", "\n")
	content := strings.TrimSpace(normalized)
	track := NewTrack(nil)
	if content == "" {
		return track, nil
	}
	blocks := strings.Split(content, "\n\n")
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		timingIdx := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timingIdx = i
				break
			}
		}
		if timingIdx < 0 {
			return nil, fmt.Errorf("parse srt: cue %d missing timing line", track.Len()+1)
		}
		start, end, err := parseTimingLine(lines[timingIdx])
		if err != nil {
			return nil, fmt.Errorf("parse srt: cue %d: %w", track.Len()+1, err)
		}
		text := strings.Join(lines[timingIdx+1:], "\n")
		track.Append(Line{
			Start: start,
			End:   end,
			Text:  strings.ReplaceAll(text, "\n", `\N`),
			Style: DefaultStyle,
		})
	}
	return track, nil
}

// FormatSRT renders the track as SRT content with comma millisecond separators.
func FormatSRT(track *Track) []byte {
	var sb strings.Builder
	for i, line := range track.Lines() {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteByte('\n')
		sb.WriteString(formatTimestamp(line.Start))
		sb.WriteString(" --> ")
		sb.WriteString(formatTimestamp(line.End))
		sb.WriteByte('\n')
		sb.WriteString(strings.ReplaceAll(line.Text, `\N`, "\n"))
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

// LoadSRT reads and parses an SRT file.
func LoadSRT(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	track, err := ParseSRT(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return track, nil
}

// WriteSRT writes the track to path as a whole-file overwrite.
func WriteSRT(track *Track, path string) error {
	if err := os.WriteFile(path, FormatSRT(track), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// WriteText writes one line of display text per subtitle line.
func WriteText(track *Track, path string) error {
	var sb strings.Builder
	for _, line := range track.Lines() {
		sb.WriteString(line.DisplayText())
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

func parseTimingLine(line string) (time.Duration, time.Duration, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseTimestamp(value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// SRT uses a comma before milliseconds; tolerate a period.
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Millisecond)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	millis := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
