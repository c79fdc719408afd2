package diff_test

import (
	"slices"
	"testing"

	"go.uber.org/zap"

	"stylediff/css"
	"stylediff/diff"
)

func TestComparer_ReconcileKeepsOrder(t *testing.T) {
	main := parseSheet(t, `/* head */ a { color: red } @import url(x.css); b { color: red } c { color: red }`)
	idx := diff.BuildIndex(parseSheet(t, `b { color: red }`).Nodes)

	nodes, err := diff.NewComparer(idx, diff.DefaultOptions(), nil, zap.NewNop()).Reconcile(main.Nodes)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	var kinds []string
	for _, n := range nodes {
		kinds = append(kinds, n.Kind())
	}
	if want := []string{"comment", "rule", "import", "rule"}; !slices.Equal(kinds, want) {
		t.Errorf("kinds = %q, want %q", kinds, want)
	}
	if r := nodes[1].(*css.Rule); r != main.Nodes[1] {
		t.Error("untouched rule must be kept as is")
	}
}
