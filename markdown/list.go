package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// listMarker reports whether line (already trimmed) starts a list item,
// returning the item text and whether the marker is numbered. A marker
// is "*", "-" or digits followed by ".", and must be followed by
// whitespace.
func listMarker(line string) (item string, numbered, ok bool) {
	i := 0
	switch {
	case line == "":
		return "", false, false
	case line[0] == '*' || line[0] == '-':
		i = 1
	default:
		for i < len(line) && '0' <= line[i] && line[i] <= '9' {
			i++
		}
		if i == 0 || i >= len(line) || line[i] != '.' {
			return "", false, false
		}
		i++
		numbered = true
	}

	rest := line[i:]
	r, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || !unicode.IsSpace(r) {
		return "", false, false
	}
	return strings.TrimLeftFunc(rest, unicode.IsSpace), numbered, true
}

type listState int

const (
	listFlushed listState = iota
	listBuildingItem
)

// listBuilder accumulates list items line by line. A marker line starts
// a new item; any other non-blank line continues the current one, joined
// with a single space. Indentation is ignored, so nested markers become
// items of the same flat list.
type listBuilder struct {
	state   listState
	current string
	items   []string

	ordered bool
	marked  bool // a marker line has been seen
}

func (b *listBuilder) line(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	item, numbered, ok := listMarker(line)
	if ok {
		if !b.marked {
			b.marked = true
			b.ordered = numbered
		}
		b.flush()
		b.current = item
		b.state = listBuildingItem
		return
	}

	switch b.state {
	case listBuildingItem:
		b.current += " " + line
	case listFlushed:
		// text ahead of the first marker still belongs to the list
		b.current = line
		b.state = listBuildingItem
	}
}

func (b *listBuilder) flush() {
	if b.state == listBuildingItem {
		b.items = append(b.items, b.current)
	}
	b.current = ""
	b.state = listFlushed
}

func (b *listBuilder) finish() []string {
	b.flush()
	return b.items
}

// ParseList reports whether chunk is a list, that is whether any of its
// lines carries a list marker. Orderedness follows the first marker
// found; later markers of the other style do not split the list.
func ParseList(chunk string) (*List, bool) {
	b := &listBuilder{}
	for _, line := range strings.Split(chunk, "\n") {
		b.line(line)
	}
	if !b.marked {
		return nil, false
	}

	items := b.finish()
	list := &List{Ordered: b.ordered, Items: make([]InlineRun, 0, len(items))}
	for _, item := range items {
		list.Items = append(list.Items, ParseInline(item))
	}
	return list, true
}
