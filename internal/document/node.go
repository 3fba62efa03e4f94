package document

import "unicode/utf8"

// Kind identifies a node in the document tree.
type Kind int

const (
	KindDoc Kind = iota
	KindParagraph
	KindHeading
	KindListItem
	KindBlockquote
	KindCodeBlock

	// Inline leaves. Only these carry characters.
	KindText
	KindMarkup
	KindLineBreak
)

func (k Kind) String() string {
	switch k {
	case KindDoc:
		return "doc"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list_item"
	case KindBlockquote:
		return "blockquote"
	case KindCodeBlock:
		return "code_block"
	case KindText:
		return "text"
	case KindMarkup:
		return "markup"
	case KindLineBreak:
		return "line_break"
	default:
		return "unknown"
	}
}

// IsLeaf reports whether nodes of this kind carry text.
func (k Kind) IsLeaf() bool {
	return k == KindText || k == KindMarkup || k == KindLineBreak
}

// Node is a block or inline element. Block nodes hold Children; leaves hold Text.
type Node struct {
	Kind     Kind
	Text     string
	Level    int
	Children []*Node
}

// Document is an ordered tree of block and inline nodes.
type Document struct {
	Root *Node
}

// New wraps blocks into a document.
func New(blocks ...*Node) *Document {
	return &Document{Root: &Node{Kind: KindDoc, Children: blocks}}
}

// Block builds a block node.
func Block(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Text builds a plain text leaf.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Markup builds a leaf holding syntax characters such as "## " or "- ".
func Markup(s string) *Node {
	return &Node{Kind: KindMarkup, Text: s}
}

// Break builds a line break leaf.
func Break() *Node {
	return &Node{Kind: KindLineBreak, Text: "\n"}
}

// PlainText returns the full flattened text of the document.
func (d *Document) PlainText() string {
	if d == nil {
		return ""
	}
	return Flatten(Scan(d))
}

// Len returns the number of characters (runes) in the document.
func (d *Document) Len() int {
	total := 0
	for _, run := range Scan(d) {
		total += utf8.RuneCountInString(run.Text)
	}
	return total
}
