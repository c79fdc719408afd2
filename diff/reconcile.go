package diff

import (
	"stylediff/css"
)

// Reconcile returns main nodes with everything the index supplies removed.
// Order of surviving nodes is kept. A rule which shares no contextual
// selector with the index is kept as is, a rule which does is replaced by
// one clone per group (possibly none). Group rules are processed
// recursively and dropped when only comments are left in them. Anything
// else passes through untouched.
func (c *Comparer) Reconcile(nodes []css.Node) ([]css.Node, error) {
	out := make([]css.Node, 0, len(nodes))

	for _, n := range nodes {
		switch n := n.(type) {
		case *css.Rule:
			if !c.intersects(n) {
				out = append(out, n)
				continue
			}
			groups, err := c.Group(n)
			if err != nil {
				return nil, err
			}
			for _, g := range groups {
				out = append(out, n.Clone(g.Selectors, g.Declarations))
			}

		case *css.GroupRule:
			children, err := c.Reconcile(n.Children)
			if err != nil {
				return nil, err
			}
			if !css.HasContent(children) {
				continue
			}
			n.SetChildren(children)
			out = append(out, n)

		default:
			out = append(out, n)
		}
	}
	return out, nil
}

func (c *Comparer) intersects(r *css.Rule) bool {
	for _, s := range r.Selectors {
		if c.index.Has(ContextKey(r, s)) {
			return true
		}
	}
	return false
}
