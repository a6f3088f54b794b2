package markdown

import "strings"

const fence = "```"

type SegmentKind int

const (
	TextSegment SegmentKind = iota
	CodeSegment
)

func (k SegmentKind) String() string {
	switch k {
	case TextSegment:
		return "text"
	case CodeSegment:
		return "code"
	}
	return "unknown"
}

// Segment is a top level chunk of the input, either literal text or the
// body of a fenced code block.
type Segment struct {
	Kind    SegmentKind
	Content string

	// Language is the fence tag exactly as written, empty when absent.
	// Only set on code segments.
	Language string
}

// SplitFences walks text once and cuts it into text and code segments in
// source order. A fence opens with "```", an optional tag of word
// characters and a newline, and closes at the next "```". An opener
// without a closer is left as text. Empty text segments are dropped.
func SplitFences(text string) []Segment {
	var segments []Segment

	emitText := func(s string) {
		if s == "" {
			return
		}
		segments = append(segments, Segment{Kind: TextSegment, Content: s})
	}

	start := 0 // start of the pending text
	for i := 0; i < len(text); {
		if !strings.HasPrefix(text[i:], fence) {
			i++
			continue
		}

		tagEnd := i + len(fence)
		for tagEnd < len(text) && isWordByte(text[tagEnd]) {
			tagEnd++
		}
		if tagEnd >= len(text) || text[tagEnd] != '\n' {
			i++
			continue
		}

		bodyStart := tagEnd + 1
		closing := strings.Index(text[bodyStart:], fence)
		if closing < 0 {
			// every later opener has its body after this one, so none
			// of them can be closed either
			break
		}
		bodyEnd := bodyStart + closing

		emitText(text[start:i])
		segments = append(segments, Segment{
			Kind:     CodeSegment,
			Content:  text[bodyStart:bodyEnd],
			Language: text[i+len(fence) : tagEnd],
		})
		i = bodyEnd + len(fence)
		start = i
	}
	emitText(text[start:])
	return segments
}

// JoinSegments reassembles segments into the text they were split from,
// putting the fence markers back around code segments.
func JoinSegments(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind == CodeSegment {
			b.WriteString(fence)
			b.WriteString(seg.Language)
			b.WriteByte('\n')
			b.WriteString(seg.Content)
			b.WriteString(fence)
			continue
		}
		b.WriteString(seg.Content)
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
