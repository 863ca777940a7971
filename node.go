package ctxmenu

import "github.com/quailyard/ctxmenu/doctree"

// Node is a generic visual-tree node produced by the build step. Hosts read
// classes, text and boxes to paint the menu; the engine never assumes more
// than that.
type Node struct {
	Classes  []string
	Attrs    map[string]string
	Text     string
	Children []*Node
	Box      doctree.Rect
}

func newNode(classes ...string) *Node {
	return &Node{Classes: append([]string(nil), classes...)}
}

// AddClass appends a class when not already present.
func (n *Node) AddClass(class string) {
	if class == "" || n.HasClass(class) {
		return
	}
	n.Classes = append(n.Classes, class)
}

// RemoveClass drops a class if present.
func (n *Node) RemoveClass(class string) {
	for i, c := range n.Classes {
		if c == class {
			n.Classes = append(n.Classes[:i], n.Classes[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the node carries the class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// SetAttr stores a display attribute on the node.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// Append attaches a child node.
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}
