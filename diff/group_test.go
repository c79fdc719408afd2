package diff_test

import (
	"slices"
	"testing"

	"go.uber.org/zap"

	"stylediff/css"
	"stylediff/diff"
)

func TestComparer_Group(t *testing.T) {
	idx := diff.BuildIndex(parseSheet(t, `a { color: red } b { color: red; margin: 0 }`).Nodes)
	cmp := diff.NewComparer(idx, diff.DefaultOptions(), nil, zap.NewNop())

	note := css.CommentDecl("/* note */")
	rule := &css.Rule{
		Selectors:    []string{"a", "b", "c", "d"},
		Declarations: []css.Declaration{note, css.Style("color", "red"), css.Style("margin", "0")},
	}

	groups, err := cmp.Group(rule)
	if err != nil {
		t.Fatalf("Group() error = %v", err)
	}

	// b is left with the comment only and disappears
	want := []diff.Group{
		{Selectors: []string{"a"}, Declarations: []css.Declaration{note, css.Style("margin", "0")}},
		{Selectors: []string{"c", "d"}, Declarations: rule.Declarations},
	}
	if len(groups) != len(want) {
		t.Fatalf("Group() = %v, want %v", groups, want)
	}
	for i := range want {
		if !slices.Equal(groups[i].Selectors, want[i].Selectors) || !slices.Equal(groups[i].Declarations, want[i].Declarations) {
			t.Errorf("group %d = %v, want %v", i, groups[i], want[i])
		}
	}
}
