package diff

import (
	"stylediff/utils/debug"
)

// Dump returns readable listing of the index, keys in natural order. Used
// for debug reports.
func (idx *Index) Dump() string {
	tw := debug.NewTreeWriter()

	tw.Line(0, "Baseline index (%d keys)", idx.Len())
	for _, k := range idx.Keys() {
		decls := idx.buckets[k]
		items := make([]string, 0, len(decls))
		for _, d := range decls {
			items = append(items, d.String())
		}
		tw.TextBlock(1, "Key", k)
		tw.List(2, items)
	}
	return tw.String()
}
