package xmltree

import "strings"

// Text returns the text content of the node at path below n. A nil node, a
// missing path or an element without text all yield nil.
func Text(n *Node, path string) *string {
	found := n.Find(path)
	if found == nil || found.Text == "" {
		return nil
	}

	s := found.Text

	return &s
}

// Attr returns the named attribute of the node at path below n, or nil.
func Attr(n *Node, path, attr string) *string {
	v, ok := n.Find(path).Attr(attr)
	if !ok {
		return nil
	}

	return &v
}

// FirstText returns the first non-nil Text among paths.
func FirstText(n *Node, paths ...string) *string {
	for _, p := range paths {
		if v := Text(n, p); v != nil {
			return v
		}
	}

	return nil
}

// CleanTaxID strips every non-digit from a CPF/CNPJ. Nil and empty input
// yield nil.
func CleanTaxID(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, *raw)

	return &digits
}
