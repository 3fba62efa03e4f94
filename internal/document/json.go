package document

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonNode mirrors the ProseMirror/TipTap document shape produced by rich-text editors.
type jsonNode struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []jsonNode     `json:"content,omitempty"`
}

// DecodeJSON reads a structured editor document. Consecutive blocks are
// separated by line breaks so their text does not run together.
func DecodeJSON(r io.Reader) (*Document, error) {
	var root jsonNode
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if root.Type != "" && root.Type != "doc" {
		return New(convertJSON(root)), nil
	}
	doc := New()
	doc.Root.Children = convertChildren(root.Content)
	return doc, nil
}

func convertJSON(n jsonNode) *Node {
	switch n.Type {
	case "text":
		return Text(n.Text)
	case "hardBreak", "hard_break":
		return Break()
	}

	node := &Node{Kind: blockKind(n.Type)}
	if node.Kind == KindHeading {
		node.Level = headingLevel(n.Attrs)
	}
	node.Children = convertChildren(n.Content)
	return node
}

func convertChildren(content []jsonNode) []*Node {
	if len(content) == 0 {
		return nil
	}
	children := make([]*Node, 0, len(content))
	for _, child := range content {
		node := convertJSON(child)
		if len(children) > 0 && !node.Kind.IsLeaf() {
			if prev := children[len(children)-1]; !prev.Kind.IsLeaf() {
				prev.Children = append(prev.Children, Break())
			}
		}
		children = append(children, node)
	}
	return children
}

func blockKind(typ string) Kind {
	switch typ {
	case "heading":
		return KindHeading
	case "listItem", "list_item", "taskItem":
		return KindListItem
	case "blockquote":
		return KindBlockquote
	case "codeBlock", "code_block":
		return KindCodeBlock
	default:
		return KindParagraph
	}
}

func headingLevel(attrs map[string]any) int {
	if attrs == nil {
		return 1
	}
	if level, ok := attrs["level"].(float64); ok && level >= 1 {
		return int(level)
	}
	return 1
}
