package page

import "image"

// Node is content placed inside a Container.
type Node interface {
	node()
}

// Image shows a picture. Decoded holds the pixels when they are already in memory;
// otherwise Src is loaded by whoever displays the node.
type Image struct {
	Src     string
	Alt     string
	Class   string
	Decoded image.Image
}

// Block groups child nodes, like a div.
type Block struct {
	Class    string
	Children []Node
}

// Text is a run of text. Tag names its role: "p", "small" or "span".
type Text struct {
	Tag   string
	Class string
	Value string
}

func (*Image) node() {}
func (*Block) node() {}
func (*Text) node()  {}

// Walk calls fn for every node in depth-first order.
func Walk(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		if b, ok := n.(*Block); ok {
			Walk(b.Children, fn)
		}
	}
}

// ByClass returns every node carrying class, in document order.
func ByClass(nodes []Node, class string) []Node {
	var found []Node
	Walk(nodes, func(n Node) {
		if classOf(n) == class {
			found = append(found, n)
		}
	})
	return found
}

// Images returns every image node, in document order.
func Images(nodes []Node) []*Image {
	var found []*Image
	Walk(nodes, func(n Node) {
		if img, ok := n.(*Image); ok {
			found = append(found, img)
		}
	})
	return found
}

// TextContent concatenates the text of n and its descendants.
func TextContent(n Node) string {
	var s string
	Walk([]Node{n}, func(n Node) {
		if t, ok := n.(*Text); ok {
			s += t.Value
		}
	})
	return s
}

func classOf(n Node) string {
	switch n := n.(type) {
	case *Image:
		return n.Class
	case *Block:
		return n.Class
	case *Text:
		return n.Class
	}
	return ""
}
