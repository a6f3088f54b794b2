package markdown

import (
	"reflect"
	"testing"
)

func TestSplitFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{name: "empty", input: "", want: nil},
		{name: "plain text", input: "hello", want: []Segment{
			{Kind: TextSegment, Content: "hello"},
		}},
		{name: "text around a fence", input: "a\n```go\nx := 1\n```\nb", want: []Segment{
			{Kind: TextSegment, Content: "a\n"},
			{Kind: CodeSegment, Content: "x := 1\n", Language: "go"},
			{Kind: TextSegment, Content: "\nb"},
		}},
		{name: "fence without tag", input: "```\nplain\n```", want: []Segment{
			{Kind: CodeSegment, Content: "plain\n"},
		}},
		{name: "empty body", input: "```\n```", want: []Segment{
			{Kind: CodeSegment},
		}},
		{name: "unterminated fence", input: "```go\nunterminated", want: []Segment{
			{Kind: TextSegment, Content: "```go\nunterminated"},
		}},
		{name: "tag not followed by newline", input: "```go no newline```", want: []Segment{
			{Kind: TextSegment, Content: "```go no newline```"},
		}},
		{name: "four backticks", input: "````py\nx\n```", want: []Segment{
			{Kind: TextSegment, Content: "`"},
			{Kind: CodeSegment, Content: "x\n", Language: "py"},
		}},
		{name: "adjacent fences", input: "```a\n1```mid```b\n2```", want: []Segment{
			{Kind: CodeSegment, Content: "1", Language: "a"},
			{Kind: TextSegment, Content: "mid"},
			{Kind: CodeSegment, Content: "2", Language: "b"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitFences(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitFences(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitFencesRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"no fences at all",
		"```go\nfunc main() {}\n```",
		"before\n```\ncode\n```\nafter",
		"```go\nunterminated",
		"````py\nx\n```",
		"```a\n1```mid```b\n2```",
		"```one\n```two\n```",
		"``` not a fence ```",
		"text ``` in the middle\nand more ```",
		"```\n```\n```\n```",
		"中文 ```rust\nlet x = \"é\";\n``` fin",
	}
	for _, input := range inputs {
		if got := JoinSegments(SplitFences(input)); got != input {
			t.Errorf("round trip of %q produced %q", input, got)
		}
	}
}

func TestSplitFencesCountsWellFormedPairs(t *testing.T) {
	input := "intro\n```go\na\n```\nmiddle\n```py\nb\n```\n```\nc\n```"
	var code, text int
	for _, seg := range SplitFences(input) {
		switch seg.Kind {
		case CodeSegment:
			code++
		case TextSegment:
			text++
		}
	}
	if code != 3 {
		t.Errorf("expected 3 code segments, got %d", code)
	}
	if text > code+1 {
		t.Errorf("expected at most %d text segments, got %d", code+1, text)
	}
}
