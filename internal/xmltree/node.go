// Package xmltree holds a parsed NFSe document as a tree of labeled nodes and
// the nil-tolerant helpers used to pull scalar values out of it.
package xmltree

import (
	"encoding/xml"
	"strings"
)

// Node is one element of a parsed document.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Text     string
	Children []*Node
}

// Find walks path from n and returns the first matching node, or nil.
//
// Steps are separated by "/". A step "." stays on the current node, a bare
// step ("Numero") matches the local name in any namespace and "{uri}Numero"
// requires the namespace as well. Nil receivers return nil so lookups can be
// chained through optional containers.
func (n *Node) Find(path string) *Node {
	if n == nil {
		return nil
	}

	cur := n

	for _, step := range strings.Split(path, "/") {
		step = strings.TrimSpace(step)
		if step == "" || step == "." {
			continue
		}

		cur = cur.child(step)
		if cur == nil {
			return nil
		}
	}

	return cur
}

// Descendant returns the first node below n (depth-first, document order)
// whose name matches step. n itself is not considered.
func (n *Node) Descendant(step string) *Node {
	if n == nil {
		return nil
	}

	for _, c := range n.Children {
		if c.matches(step) {
			return c
		}

		if d := c.Descendant(step); d != nil {
			return d
		}
	}

	return nil
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}

	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}

	return "", false
}

// Is reports whether the node's qualified name is exactly space + local.
func (n *Node) Is(space, local string) bool {
	return n != nil && n.Name.Space == space && n.Name.Local == local
}

func (n *Node) child(step string) *Node {
	for _, c := range n.Children {
		if c.matches(step) {
			return c
		}
	}

	return nil
}

func (n *Node) matches(step string) bool {
	space, local := splitStep(step)
	if local != n.Name.Local {
		return false
	}

	return space == "" || space == n.Name.Space
}

// splitStep turns "{uri}Local" into ("uri", "Local").
func splitStep(step string) (string, string) {
	if !strings.HasPrefix(step, "{") {
		return "", step
	}

	end := strings.Index(step, "}")
	if end < 0 {
		return "", step
	}

	return step[1:end], step[end+1:]
}
