package document

import (
	"strings"
	"unicode/utf8"
)

// Run is one text-bearing leaf together with its absolute rune offset.
// Block is the innermost enclosing block kind, Leaf the leaf's own kind.
type Run struct {
	Offset int
	Text   string
	Block  Kind
	Leaf   Kind
}

// End returns the rune offset just past the run.
func (r Run) End() int {
	return r.Offset + utf8.RuneCountInString(r.Text)
}

// Scan walks the document in pre-order and returns one run per non-empty leaf.
// Offsets are contiguous: each run starts where the previous one ended.
func Scan(d *Document) []Run {
	if d == nil || d.Root == nil {
		return nil
	}
	var runs []Run
	offset := 0
	var walk func(n *Node, block Kind)
	walk = func(n *Node, block Kind) {
		if n == nil {
			return
		}
		if n.Kind.IsLeaf() {
			if n.Text == "" {
				return
			}
			runs = append(runs, Run{Offset: offset, Text: n.Text, Block: block, Leaf: n.Kind})
			offset += utf8.RuneCountInString(n.Text)
			return
		}
		if n.Kind != KindDoc {
			block = n.Kind
		}
		for _, child := range n.Children {
			walk(child, block)
		}
	}
	walk(d.Root, KindParagraph)
	return runs
}

// Flatten concatenates run texts in order.
func Flatten(runs []Run) string {
	if len(runs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

// Line is one display line of the flattened text.
type Line struct {
	Start int
	Text  string
}

// Lines splits the flattened runs at newlines. The newline itself belongs to
// neither line. An empty document yields a single empty line.
func Lines(runs []Run) []Line {
	text := Flatten(runs)
	lines := make([]Line, 0, strings.Count(text, "\n")+1)
	start := 0
	for {
		idx := strings.IndexByte(text, '\n')
		if idx == -1 {
			lines = append(lines, Line{Start: start, Text: text})
			return lines
		}
		segment := text[:idx]
		lines = append(lines, Line{Start: start, Text: segment})
		start += utf8.RuneCountInString(segment) + 1
		text = text[idx+1:]
	}
}
