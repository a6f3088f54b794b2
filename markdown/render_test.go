package markdown

import (
	"reflect"
	"testing"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"":           "text",
		"js":         "javascript",
		"JS":         "javascript",
		"ts":         "typescript",
		"py":         "python",
		"rb":         "ruby",
		"sh":         "bash",
		"yml":        "yaml",
		"md":         "markdown",
		"html":       "markup",
		"Go":         "go",
		"python":     "python",
		"javascript": "javascript",
		"markup":     "markup",
	}
	for tag, want := range tests {
		got := NormalizeLanguage(tag)
		if got != want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tag, got, want)
		}
		if again := NormalizeLanguage(got); again != got {
			t.Errorf("NormalizeLanguage is not idempotent for %q: %q then %q", tag, got, again)
		}
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   \n\t\n", nil},
		{"single", []string{"single"}},
		{"a\n\nb", []string{"a", "b"}},
		{"a\n  \n\n b\nc", []string{"a", "b\nc"}},
		{"\n\n  lead and trail  \n\n", []string{"lead and trail"}},
		{"line one\nline two", []string{"line one\nline two"}},
	}
	for _, tt := range tests {
		got := SplitParagraphs(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitParagraphs(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func items(list *List) []string {
	var out []string
	for _, item := range list.Items {
		out = append(out, item.Text())
	}
	return out
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ordered bool
		items   []string
	}{
		{"dashes", "- item one\n- item two", false, []string{"item one", "item two"}},
		{"stars", "* a\n* b", false, []string{"a", "b"}},
		{"numbers", "1. a\n2. b\n10. c", true, []string{"a", "b", "c"}},
		{"first marker numbered decides", "1. first\n* second", true, []string{"first", "second"}},
		{"first marker bullet decides", "* first\n2. second", false, []string{"first", "second"}},
		{"soft wrapped item", "- item one\n  continues here\n- item two", false, []string{"item one continues here", "item two"}},
		{"text ahead of first marker", "Steps:\n1. a\n2. b", true, []string{"Steps:", "a", "b"}},
		{"indented markers", "  - a\n  - b", false, []string{"a", "b"}},
		{"tab after marker", "-\ttabbed", false, []string{"tabbed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, ok := ParseList(tt.input)
			if !ok {
				t.Fatalf("ParseList(%q) did not detect a list", tt.input)
			}
			if list.Ordered != tt.ordered {
				t.Errorf("Ordered = %v, want %v", list.Ordered, tt.ordered)
			}
			if got := items(list); !reflect.DeepEqual(got, tt.items) {
				t.Errorf("items = %q, want %q", got, tt.items)
			}
		})
	}
}

func TestParseListRejectsMarkersWithoutSpace(t *testing.T) {
	for _, input := range []string{
		"*bold* start\nnext",
		"-notalist",
		"1.5 apples",
		"**strong** words",
		"plain paragraph",
		"-",
	} {
		if _, ok := ParseList(input); ok {
			t.Errorf("ParseList(%q) detected a list", input)
		}
	}
}

func TestListBuilderContinuation(t *testing.T) {
	b := &listBuilder{}
	b.line("- first")
	if b.state != listBuildingItem || b.current != "first" {
		t.Fatalf("after marker: state=%v current=%q", b.state, b.current)
	}
	b.line("still first")
	if b.current != "first still first" {
		t.Fatalf("continuation not joined: %q", b.current)
	}
	b.line("   ")
	b.line("- second")
	if len(b.items) != 1 || b.items[0] != "first still first" {
		t.Fatalf("first item not flushed: %q", b.items)
	}
	got := b.finish()
	if !reflect.DeepEqual(got, []string{"first still first", "second"}) {
		t.Errorf("finish() = %q", got)
	}
	if b.state != listFlushed {
		t.Errorf("state after finish = %v, want flushed", b.state)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{name: "empty", input: "", want: nil},
		{name: "whitespace", input: " \n\n ", want: nil},
		{
			name:  "paragraph",
			input: "Hello **world**, here is `code`.",
			want: []Block{&Paragraph{Content: InlineRun{
				plain("Hello "), bold("world"), plain(", here is "), code("code"), plain("."),
			}}},
		},
		{
			name:  "list",
			input: "- item one\n- item two",
			want: []Block{&List{Items: []InlineRun{
				{plain("item one")}, {plain("item two")},
			}}},
		},
		{
			name:  "code block",
			input: "```python\nprint(1)\n```",
			want:  []Block{&CodeBlock{Language: "python", Content: "print(1)"}},
		},
		{
			name:  "alias and default language",
			input: "```js\nconsole.log(1)\n```\n```\nx\n```",
			want: []Block{
				&CodeBlock{Language: "javascript", Content: "console.log(1)"},
				&CodeBlock{Language: "text", Content: "x"},
			},
		},
		{
			name:  "unterminated fence is text",
			input: "```go\nfmt.Println()",
			want:  []Block{&Paragraph{Content: InlineRun{plain("```go\nfmt.Println()")}}},
		},
		{
			name:  "mixed document",
			input: "Intro **bold**\n\n```go\nfmt.Println()\n```\n\n- a\n- b\n\nOutro",
			want: []Block{
				&Paragraph{Content: InlineRun{plain("Intro "), bold("bold")}},
				&CodeBlock{Language: "go", Content: "fmt.Println()"},
				&List{Items: []InlineRun{{plain("a")}, {plain("b")}}},
				&Paragraph{Content: InlineRun{plain("Outro")}},
			},
		},
		{
			name:  "nested markers flatten into items",
			input: "- a\n  - b\n    more of b\n- c",
			want: []Block{&List{Items: []InlineRun{
				{plain("a")}, {plain("b more of b")}, {plain("c")},
			}}},
		},
		{
			name:  "list items keep inline formatting",
			input: "1. run `make`\n2. **done**",
			want: []Block{&List{Ordered: true, Items: []InlineRun{
				{plain("run "), code("make")},
				{bold("done")},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Render(%q) = %s, want %s", tt.input, describe(got), describe(tt.want))
			}
		})
	}
}

func TestCodeBlocks(t *testing.T) {
	blocks := Render("a\n\n```go\n1\n```\n\nb\n\n```\n2\n```")
	codes := CodeBlocks(blocks)
	if len(codes) != 2 {
		t.Fatalf("expected 2 code blocks, got %d", len(codes))
	}
	if codes[0].Content != "1" || codes[1].Content != "2" {
		t.Errorf("unexpected code blocks: %q, %q", codes[0].Content, codes[1].Content)
	}
}

func describe(blocks []Block) string {
	s := "["
	for i, b := range blocks {
		if i > 0 {
			s += ", "
		}
		switch b := b.(type) {
		case *CodeBlock:
			s += "code(" + b.Language + "):" + b.Content
		case *Paragraph:
			s += "paragraph:" + b.Content.Text()
		case *List:
			s += "list:" + b.Kind().String()
			for _, item := range b.Items {
				s += "|" + item.Text()
			}
		}
	}
	return s + "]"
}
