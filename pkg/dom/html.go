package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render serializes the subtree as HTML.
func Render(w io.Writer, el *Element) error {
	if el == nil {
		return nil
	}
	if err := html.Render(w, toNode(el)); err != nil {
		return fmt.Errorf("dom: render %s: %w", el.Tag, err)
	}
	return nil
}

// String serializes the subtree, returning an empty string on failure.
func (e *Element) String() string {
	var buf bytes.Buffer
	if err := Render(&buf, e); err != nil {
		return ""
	}
	return buf.String()
}

// Parse reads an HTML fragment into detached elements. Whitespace-only text
// is dropped; other text accumulates on the enclosing element.
func Parse(r io.Reader) ([]*Element, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	var out []*Element
	for _, node := range nodes {
		if node.Type != html.ElementNode {
			continue
		}
		out = append(out, fromNode(node))
	}
	return out, nil
}

// ParseString is Parse over a string.
func ParseString(fragment string) ([]*Element, error) {
	return Parse(strings.NewReader(fragment))
}

func toNode(el *Element) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     el.Tag,
		DataAtom: atom.Lookup([]byte(el.Tag)),
	}
	for _, attr := range el.attrs {
		node.Attr = append(node.Attr, html.Attribute{Key: attr.Key, Val: attr.Val})
	}
	if el.Text != "" {
		node.AppendChild(&html.Node{Type: html.TextNode, Data: el.Text})
	}
	for _, child := range el.children {
		node.AppendChild(toNode(child))
	}
	return node
}

func fromNode(node *html.Node) *Element {
	el := New(node.Data)
	for _, attr := range node.Attr {
		el.SetAttr(attr.Key, attr.Val)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			el.Append(fromNode(child))
		case html.TextNode:
			if strings.TrimSpace(child.Data) == "" {
				continue
			}
			el.Text += child.Data
		}
	}
	return el
}
