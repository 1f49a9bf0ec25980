package ocr

import "strings"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize cleans recognized text: line endings become "\n", control
// characters other than newline and tab are dropped, every line is trimmed,
// empty lines are removed and the result is trimmed. Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = lineEndings.Replace(text)
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// SanitizeText is the last pass before text leaves the server: NUL bytes
// are removed, line endings normalized and surrounding whitespace trimmed.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(lineEndings.Replace(text))
}
