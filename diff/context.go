package diff

import (
	"strings"

	"stylediff/css"
)

// ContextKey qualifies selector with the chain of at-rules the node is
// nested in: ".a" at top level is "rule .a", inside "@media print" it is
// "media-print-rule .a". Identical trees always produce identical keys.
func ContextKey(n css.Node, selector string) string {
	return prefix(n) + selector
}

func prefix(n css.Node) string {
	if n == nil {
		return ""
	}

	parts := make([]string, 0, 3)
	if p := prefix(n.Parent()); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, n.Kind())
	if d := css.Discriminant(n); d != "" {
		parts = append(parts, d)
	}

	result := strings.Join(parts, "-")
	if _, ok := n.(*css.Rule); ok {
		// keeps "media-print" from running into selector
		result += " "
	}
	return result
}
