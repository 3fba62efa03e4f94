package document

import (
	"strings"
	"unicode"
)

// Parse builds a document from notes text. Markdown syntax is kept as Markup
// leaves so the flattened text always equals the input byte for byte.
func Parse(text string) *Document {
	doc := New()
	if text == "" {
		return doc
	}

	lines := strings.Split(text, "\n")
	inFence := false
	for i, line := range lines {
		last := i == len(lines)-1
		if last && line == "" {
			break
		}

		var block *Node
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~"):
			inFence = !inFence
			block = Block(KindCodeBlock, Markup(line))
		case inFence:
			block = Block(KindCodeBlock, Text(line))
		default:
			block = parseLine(line)
		}
		if !last {
			block.Children = append(block.Children, Break())
		}
		doc.Root.Children = append(doc.Root.Children, block)
	}
	return doc
}

func parseLine(line string) *Node {
	if level, marker := headingMarker(line); level > 0 {
		node := Block(KindHeading, Markup(marker), Text(line[len(marker):]))
		node.Level = level
		return node
	}
	if marker := listMarker(line); marker != "" {
		return Block(KindListItem, Markup(marker), Text(line[len(marker):]))
	}
	if marker := quoteMarker(line); marker != "" {
		return Block(KindBlockquote, Markup(marker), Text(line[len(marker):]))
	}
	return Block(KindParagraph, Text(line))
}

func headingMarker(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, ""
	}
	if level == len(line) {
		return level, line
	}
	if line[level] != ' ' && line[level] != '\t' {
		return 0, ""
	}
	end := level
	for end < len(line) && (line[end] == ' ' || line[end] == '\t') {
		end++
	}
	return level, line[:end]
}

func listMarker(line string) string {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	if i >= len(line) {
		return ""
	}
	switch line[i] {
	case '-', '*', '+':
		i++
	default:
		digits := i
		for i < len(line) && unicode.IsDigit(rune(line[i])) {
			i++
		}
		if i == digits || i >= len(line) || (line[i] != '.' && line[i] != ')') {
			return ""
		}
		i++
	}
	if i >= len(line) || line[i] != ' ' {
		return ""
	}
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return line[:i]
}

func quoteMarker(line string) string {
	if !strings.HasPrefix(line, ">") {
		return ""
	}
	if strings.HasPrefix(line, "> ") {
		return "> "
	}
	return ">"
}
