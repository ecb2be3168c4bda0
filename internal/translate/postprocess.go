package translate

import (
	"strconv"
	"strings"
)

// MissingPlaceholder is inserted when the force-fit fallback must pad
// missing lines.
const MissingPlaceholder = "[Translation missing]"

// splitReply breaks a completion into lines, dropping surrounding whitespace.
func splitReply(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// isNumbered reports whether the reply is formatted as a numbered list. Only
// the first two lines are inspected; both must carry their own 1-based index.
func isNumbered(lines []string) bool {
	if len(lines) < 2 {
		return false
	}
	for i, line := range lines[:2] {
		prefix, rest, found := strings.Cut(line, ".")
		if !found || !strings.HasPrefix(rest, " ") {
			return false
		}
		n, err := strconv.Atoi(strings.TrimSpace(prefix))
		if err != nil || n != i+1 {
			return false
		}
	}
	return true
}

// removeNumbering strips a leading "N. " from every line that carries one.
func removeNumbering(lines []string) []string {
	stripped := make([]string, len(lines))
	for i, line := range lines {
		if prefix, rest, found := strings.Cut(line, "."); found && strings.HasPrefix(rest, " ") {
			if _, err := strconv.Atoi(strings.TrimSpace(prefix)); err == nil {
				line = strings.TrimSpace(rest)
			}
		}
		stripped[i] = line
	}
	return stripped
}

// cleanEllipses removes ellipsis runs duplicated across adjacent lines and
// orphaned leading ellipses left behind by the model.
func cleanEllipses(lines []string) []string {
	cleaned := make([]string, len(lines))
	copy(cleaned, lines)
	for i := 1; i < len(cleaned); i++ {
		if !strings.HasPrefix(cleaned[i], "...") {
			continue
		}
		cleaned[i-1] = strings.TrimSuffix(cleaned[i-1], "...")
		cleaned[i] = strings.TrimPrefix(cleaned[i], "...")
	}
	return cleaned
}

// forceLineCount fits the reply to the expected count as a last resort: excess
// lines are merged into the last expected line, missing lines are padded with
// a visible placeholder. Never fails.
func forceLineCount(lines []string, want int) []string {
	switch {
	case len(lines) > want:
		fitted := make([]string, want)
		copy(fitted, lines[:want-1])
		fitted[want-1] = strings.Join(lines[want-1:], `\N`)
		return fitted
	case len(lines) < want:
		fitted := make([]string, 0, want)
		fitted = append(fitted, lines...)
		for len(fitted) < want {
			fitted = append(fitted, MissingPlaceholder)
		}
		return fitted
	default:
		return lines
	}
}
