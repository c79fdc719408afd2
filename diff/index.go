package diff

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"stylediff/css"
)

// Index maps context keys to style declarations the baseline defines for
// them.
type Index struct {
	buckets map[string][]css.Declaration
}

// BuildIndex walks baseline nodes. Declarations of rules on the same level
// are accumulated as is, sub-indexes of group rules are merged with
// duplicates removed.
func BuildIndex(nodes []css.Node) *Index {
	idx := &Index{buckets: make(map[string][]css.Declaration)}

	for _, n := range nodes {
		switch n := n.(type) {
		case *css.Rule:
			styles := n.Styles()
			for _, s := range n.Selectors {
				key := ContextKey(n, s)
				idx.buckets[key] = append(idx.buckets[key], styles...)
			}
		case *css.GroupRule:
			idx.merge(BuildIndex(n.Children))
		}
	}
	return idx
}

func (idx *Index) merge(sub *Index) {
	for key, decls := range sub.buckets {
		idx.buckets[key] = uniq(append(slices.Clone(idx.buckets[key]), decls...))
	}
}

// uniq removes repeated declarations keeping first occurrences in order.
func uniq(decls []css.Declaration) []css.Declaration {
	out := make([]css.Declaration, 0, len(decls))
	for _, d := range decls {
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns declarations defined for key.
func (idx *Index) Lookup(key string) ([]css.Declaration, bool) {
	decls, ok := idx.buckets[key]
	return decls, ok
}

// Has reports whether anything is defined for key.
func (idx *Index) Has(key string) bool {
	_, ok := idx.buckets[key]
	return ok
}

// Len returns number of keys.
func (idx *Index) Len() int {
	return len(idx.buckets)
}

// Keys returns all keys in natural order.
func (idx *Index) Keys() []string {
	keys := slices.Collect(maps.Keys(idx.buckets))
	sort.Sort(natural.StringSlice(keys))
	return keys
}
