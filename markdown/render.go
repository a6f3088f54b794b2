package markdown

import "strings"

type BlockKind int

const (
	CodeBlockKind BlockKind = iota
	ParagraphKind
	ListKind
)

func (k BlockKind) String() string {
	switch k {
	case CodeBlockKind:
		return "code"
	case ParagraphKind:
		return "paragraph"
	case ListKind:
		return "list"
	}
	return "unknown"
}

// Block is one displayable unit of rendered text.
type Block interface {
	Kind() BlockKind
}

// CodeBlock is a fenced block with its normalized language and trimmed body.
type CodeBlock struct {
	Language string
	Content  string
}

func (*CodeBlock) Kind() BlockKind { return CodeBlockKind }

type Paragraph struct {
	Content InlineRun
}

func (*Paragraph) Kind() BlockKind { return ParagraphKind }

type List struct {
	Ordered bool
	Items   []InlineRun
}

func (*List) Kind() BlockKind { return ListKind }

// Render converts markdown-subset text into display blocks: fenced code
// blocks, lists and paragraphs with bold and inline code. It never fails;
// text without recognizable structure becomes a single paragraph, and
// empty text yields no blocks.
func Render(text string) []Block {
	var blocks []Block
	for _, seg := range SplitFences(text) {
		if seg.Kind == CodeSegment {
			blocks = append(blocks, &CodeBlock{
				Language: NormalizeLanguage(seg.Language),
				Content:  strings.TrimSpace(seg.Content),
			})
			continue
		}
		for _, chunk := range SplitParagraphs(seg.Content) {
			if list, ok := ParseList(chunk); ok {
				blocks = append(blocks, list)
				continue
			}
			blocks = append(blocks, &Paragraph{Content: ParseInline(chunk)})
		}
	}
	return blocks
}

// CodeBlocks returns the code blocks of blocks in order. The position in
// the result is the index used to track copies.
func CodeBlocks(blocks []Block) []*CodeBlock {
	var codes []*CodeBlock
	for _, b := range blocks {
		if code, ok := b.(*CodeBlock); ok {
			codes = append(codes, code)
		}
	}
	return codes
}
