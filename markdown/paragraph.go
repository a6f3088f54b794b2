package markdown

import "strings"

// SplitParagraphs cuts text into chunks separated by one or more blank
// lines (lines holding only whitespace). Chunks are trimmed and empty
// chunks dropped.
func SplitParagraphs(text string) []string {
	var chunks []string
	var lines []string

	flush := func() {
		if len(lines) == 0 {
			return
		}
		if chunk := strings.TrimSpace(strings.Join(lines, "\n")); chunk != "" {
			chunks = append(chunks, chunk)
		}
		lines = lines[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()

	if len(chunks) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks
}
