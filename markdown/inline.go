package markdown

import "strings"

type SpanKind int

const (
	PlainSpan SpanKind = iota
	CodeSpan
	BoldSpan
)

func (k SpanKind) String() string {
	switch k {
	case PlainSpan:
		return "plain"
	case CodeSpan:
		return "code"
	case BoldSpan:
		return "bold"
	}
	return "unknown"
}

// Span is one formatting run inside a paragraph or list item.
type Span struct {
	Kind    SpanKind
	Content string
}

// InlineRun is the ordered list of spans of one paragraph or list item.
type InlineRun []Span

// Text returns the content of all spans without formatting markers.
func (r InlineRun) Text() string {
	var b strings.Builder
	for _, span := range r {
		b.WriteString(span.Content)
	}
	return b.String()
}

// ParseInline splits text into plain, code and bold spans. Code spans are
// resolved first and are never scanned for bold markers. Each match
// becomes its own span; neighbours of the same kind are not merged.
func ParseInline(text string) InlineRun {
	var run InlineRun
	for text != "" {
		open, closing := findCodeSpan(text)
		if open < 0 {
			run = appendBold(run, text)
			break
		}
		run = appendBold(run, text[:open])
		run = append(run, Span{Kind: CodeSpan, Content: text[open+1 : closing]})
		text = text[closing+1:]
	}
	return run
}

// findCodeSpan returns the positions of the first backtick pair that
// encloses at least one character. The first backtick after an opener
// always closes it; no escaping is supported.
func findCodeSpan(text string) (open, closing int) {
	offset := 0
	for {
		o := strings.IndexByte(text[offset:], '`')
		if o < 0 {
			return -1, -1
		}
		o += offset
		c := strings.IndexByte(text[o+1:], '`')
		if c < 0 {
			return -1, -1
		}
		c += o + 1
		if c > o+1 {
			return o, c
		}
		// "``" encloses nothing, retry from the second backtick
		offset = c
	}
}

// appendBold scans a run of non-code text for "**" pairs. The first
// opener pairs with the next closer on the same line; nesting is not
// recognized.
func appendBold(run InlineRun, text string) InlineRun {
	const marker = "**"

	plainStart := 0
	for offset := 0; offset < len(text); {
		o := strings.Index(text[offset:], marker)
		if o < 0 {
			break
		}
		o += offset
		bodyStart := o + len(marker)
		c := strings.Index(text[bodyStart:], marker)
		if c < 0 {
			break
		}
		c += bodyStart
		if strings.IndexByte(text[bodyStart:c], '\n') >= 0 {
			offset = o + 1
			continue
		}

		if o > plainStart {
			run = append(run, Span{Kind: PlainSpan, Content: text[plainStart:o]})
		}
		run = append(run, Span{Kind: BoldSpan, Content: text[bodyStart:c]})
		offset = c + len(marker)
		plainStart = offset
	}
	if plainStart < len(text) {
		run = append(run, Span{Kind: PlainSpan, Content: text[plainStart:]})
	}
	return run
}
