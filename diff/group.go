package diff

import (
	"strconv"
	"strings"

	"stylediff/css"
)

// Group is a set of selectors sharing the same residual declarations.
type Group struct {
	Selectors    []string
	Declarations []css.Declaration
}

// Group computes declarations of rule the baseline does not supply, per
// selector, and regroups selectors ending up with identical residuals.
// Groups come in order of first appearance, selectors within a group keep
// rule order. Selectors with nothing left and groups with only comments
// left are dropped.
func (c *Comparer) Group(rule *css.Rule) ([]Group, error) {
	var (
		groups []Group
		byKey  = make(map[string]int)
	)

	for _, s := range rule.Selectors {
		residual, err := c.residual(ContextKey(rule, s), rule.Declarations)
		if err != nil {
			return nil, err
		}
		if len(residual) == 0 {
			continue
		}

		fp := fingerprint(residual)
		if i, ok := byKey[fp]; ok {
			groups[i].Selectors = append(groups[i].Selectors, s)
			continue
		}
		byKey[fp] = len(groups)
		groups = append(groups, Group{Selectors: []string{s}, Declarations: residual})
	}

	kept := groups[:0]
	for _, g := range groups {
		if css.HasStyles(g.Declarations) {
			kept = append(kept, g)
		}
	}
	return kept, nil
}

// residual filters out style declarations present in index under key.
// Comments always stay.
func (c *Comparer) residual(key string, decls []css.Declaration) ([]css.Declaration, error) {
	known, ok := c.index.Lookup(key)
	if !ok {
		return decls, nil
	}

	out := make([]css.Declaration, 0, len(decls))
	for _, d := range decls {
		if d.IsStyle() {
			found, err := c.contained(d, known)
			if err != nil {
				return nil, err
			}
			if found {
				continue
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// fingerprint encodes declaration sequence with length prefixed fields, so
// different sequences never produce the same string.
func fingerprint(decls []css.Declaration) string {
	var sb strings.Builder
	for _, d := range decls {
		sb.WriteString(strconv.Itoa(int(d.Kind)))
		for _, f := range []string{d.Property, d.Value} {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(len(f)))
			sb.WriteByte(':')
			sb.WriteString(f)
		}
		sb.WriteByte(';')
	}
	return sb.String()
}
