package segmentation

import "strings"

// CleanLineText normalizes a finalized line: structural quote marks are
// stripped, a single leading hyphen removed, whitespace trimmed, and heavy
// transcription stutter collapsed.
func CleanLineText(text string) string {
	text = strings.ReplaceAll(text, "「", "")
	text = strings.ReplaceAll(text, "」", "")
	text = strings.TrimPrefix(text, "-")
	text = strings.TrimSpace(text)
	return collapseRepeats(text)
}

// collapseRepeats truncates runs of a short repeated substring (unit length 1
// to 6 runes, 5 or more consecutive occurrences) down to 3 occurrences. This
// normalizes stutter artifacts like "wowowowowowow" that speech-to-text
// providers emit on unstable audio. The shortest repeating unit wins, scanning
// left to right.
func collapseRepeats(text string) string {
	runes := []rune(text)
	var out []rune
	i := 0
	for i < len(runes) {
		matched := false
		for unit := 1; unit <= 6 && i+unit <= len(runes); unit++ {
			count := repeatCount(runes, i, unit)
			if count >= 5 {
				for k := 0; k < 3; k++ {
					out = append(out, runes[i:i+unit]...)
				}
				i += count * unit
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, runes[i])
			i++
		}
	}
	return string(out)
}

// repeatCount counts how many consecutive copies of runes[start:start+unit]
// appear starting at start.
func repeatCount(runes []rune, start, unit int) int {
	count := 1
	for {
		next := start + count*unit
		if next+unit > len(runes) {
			break
		}
		if string(runes[next:next+unit]) != string(runes[start:start+unit]) {
			break
		}
		count++
	}
	return count
}
