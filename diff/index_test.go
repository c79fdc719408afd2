package diff_test

import (
	"slices"
	"strings"
	"testing"

	"stylediff/css"
	"stylediff/diff"
)

func TestContextKey(t *testing.T) {
	sheet := parseSheet(t, `
.a { color: red }
@media print { .a { color: red } }
@supports (display: grid) { @media screen { .a { color: red } } }
`)
	rules := sheet.Rules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}

	want := []string{
		"rule .a",
		"media-print-rule .a",
		"supports-(display: grid)-media-screen-rule .a",
	}
	for i, r := range rules {
		if got := diff.ContextKey(r, ".a"); got != want[i] {
			t.Errorf("ContextKey(rule %d) = %q, want %q", i, got, want[i])
		}
	}

	// key of a group itself has no trailing separator
	g := sheet.Nodes[1]
	if got := diff.ContextKey(g, ""); got != "media-print" {
		t.Errorf("ContextKey(group) = %q", got)
	}

	// keys are stable for identical trees
	again := parseSheet(t, sheet.String()).Rules()
	for i, r := range again {
		if got := diff.ContextKey(r, ".a"); got != want[i] {
			t.Errorf("reparsed ContextKey(rule %d) = %q, want %q", i, got, want[i])
		}
	}
}

func TestBuildIndex(t *testing.T) {
	sheet := parseSheet(t, `
a { color: red }
a { color: red; margin: 0 }
a, b { padding: 0 }
@media print { a { color: red } }
@media print { a { color: red; display: none } }
@font-face { font-family: x }
`)
	idx := diff.BuildIndex(sheet.Nodes)

	tests := []struct {
		key  string
		want []css.Declaration
	}{
		{
			// flat accumulation keeps duplicates
			key:  "rule a",
			want: []css.Declaration{css.Style("color", "red"), css.Style("color", "red"), css.Style("margin", "0"), css.Style("padding", "0")},
		},
		{
			key:  "rule b",
			want: []css.Declaration{css.Style("padding", "0")},
		},
		{
			// group merge removes them
			key:  "media-print-rule a",
			want: []css.Declaration{css.Style("color", "red"), css.Style("display", "none")},
		},
	}
	for _, tt := range tests {
		got, ok := idx.Lookup(tt.key)
		if !ok {
			t.Errorf("key %q not found", tt.key)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Lookup(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}

	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3: %q", idx.Len(), idx.Keys())
	}
	if idx.Has("rule c") {
		t.Error("unexpected key")
	}
}

func TestBuildIndex_CommentsExcluded(t *testing.T) {
	rule := &css.Rule{
		Selectors:    []string{".a"},
		Declarations: []css.Declaration{css.CommentDecl("/* x */"), css.Style("color", "red")},
	}
	idx := diff.BuildIndex([]css.Node{rule})

	got, _ := idx.Lookup("rule .a")
	if !slices.Equal(got, []css.Declaration{css.Style("color", "red")}) {
		t.Errorf("Lookup() = %v", got)
	}
}

func TestIndex_Dump(t *testing.T) {
	idx := diff.BuildIndex(parseSheet(t, `.a10 { color: red } .a2 { margin: 0 }`).Nodes)

	dump := idx.Dump()
	if !strings.HasPrefix(dump, "Baseline index (2 keys)\n") {
		t.Errorf("unexpected header:\n%s", dump)
	}
	i2, i10 := strings.Index(dump, `"rule .a2"`), strings.Index(dump, `"rule .a10"`)
	if i2 < 0 || i10 < 0 || i2 > i10 {
		t.Errorf("keys are not in natural order:\n%s", dump)
	}
	if !strings.Contains(dump, "color: red") {
		t.Errorf("declarations missing:\n%s", dump)
	}
	if keys := idx.Keys(); !slices.Equal(keys, []string{"rule .a2", "rule .a10"}) {
		t.Errorf("Keys() = %q", keys)
	}
}
