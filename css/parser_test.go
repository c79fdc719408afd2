package css_test

import (
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylediff/css"
)

func parse(t *testing.T, input string) *css.Stylesheet {
	t.Helper()
	sheet, err := css.NewParser(zap.NewNop()).Parse([]byte(input), "test")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return sheet
}

func TestParser_SimpleRule(t *testing.T) {
	sheet := parse(t, `p { text-indent: 1em; color: red }`)

	if len(sheet.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(sheet.Nodes))
	}
	rule, ok := sheet.Nodes[0].(*css.Rule)
	if !ok {
		t.Fatalf("expected *css.Rule, got %T", sheet.Nodes[0])
	}
	if !slices.Equal(rule.Selectors, []string{"p"}) {
		t.Errorf("selectors = %v, want [p]", rule.Selectors)
	}
	want := []css.Declaration{css.Style("text-indent", "1em"), css.Style("color", "red")}
	if !slices.Equal(rule.Declarations, want) {
		t.Errorf("declarations = %v, want %v", rule.Declarations, want)
	}
	if rule.Parent() != nil {
		t.Errorf("top level rule must not have parent, got %T", rule.Parent())
	}
}

func TestParser_SelectorList(t *testing.T) {
	sheet := parse(t, "html,\nbody , div.a > span { margin: 0 }")

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	want := []string{"html", "body", "div.a > span"}
	if !slices.Equal(rules[0].Selectors, want) {
		t.Errorf("selectors = %q, want %q", rules[0].Selectors, want)
	}
}

func TestParser_SelectorWithNestedComma(t *testing.T) {
	sheet := parse(t, `a:not(.x, .y), b { color: red }`)

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if len(rules[0].Selectors) != 2 || rules[0].Selectors[1] != "b" {
		t.Errorf("selectors = %q, want 2 selectors ending with b", rules[0].Selectors)
	}
}

func TestParser_ValueWhitespace(t *testing.T) {
	sheet := parse(t, `a { border: 1px   solid #000; font-family: Arial,  sans-serif; color: red !important }`)

	decls := sheet.Rules()[0].Declarations
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}
	if decls[0].Value != "1px solid #000" {
		t.Errorf("border = %q, want %q", decls[0].Value, "1px solid #000")
	}
	if !strings.HasPrefix(decls[1].Value, "Arial,") || !strings.HasSuffix(decls[1].Value, "sans-serif") {
		t.Errorf("font-family = %q", decls[1].Value)
	}
	if !strings.Contains(decls[2].Value, "important") {
		t.Errorf("color = %q, expected !important to be kept", decls[2].Value)
	}
}

func TestParser_MediaBlock(t *testing.T) {
	sheet := parse(t, `
.btn { color: red }
@media print {
  .btn { color: black }
  .other { display: none }
}`)

	if len(sheet.Nodes) != 2 {
		t.Fatalf("expected 2 top level nodes, got %d", len(sheet.Nodes))
	}
	g, ok := sheet.Nodes[1].(*css.GroupRule)
	if !ok {
		t.Fatalf("expected *css.GroupRule, got %T", sheet.Nodes[1])
	}
	if g.Name != "media" || g.Prelude != "print" {
		t.Errorf("group = %q %q, want media print", g.Name, g.Prelude)
	}
	if len(g.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(g.Children))
	}
	for _, c := range g.Children {
		if c.Parent() != g {
			t.Errorf("child %T parent is not the group", c)
		}
	}
	if got := len(sheet.RulesBySelector(".btn")); got != 2 {
		t.Errorf("RulesBySelector(.btn) = %d rules, want 2", got)
	}
}

func TestParser_NestedGroups(t *testing.T) {
	sheet := parse(t, `@supports (display: grid) { @media screen and (min-width: 100px) { a { color: red } } }`)

	outer, ok := sheet.Nodes[0].(*css.GroupRule)
	if !ok {
		t.Fatalf("expected *css.GroupRule, got %T", sheet.Nodes[0])
	}
	if outer.Name != "supports" {
		t.Errorf("outer name = %q, want supports", outer.Name)
	}
	inner, ok := outer.Children[0].(*css.GroupRule)
	if !ok {
		t.Fatalf("expected nested *css.GroupRule, got %T", outer.Children[0])
	}
	if inner.Name != "media" || !strings.HasPrefix(inner.Prelude, "screen and (") {
		t.Errorf("inner = %q %q", inner.Name, inner.Prelude)
	}
	rule := inner.Children[0].(*css.Rule)
	if rule.Parent() != inner || inner.Parent() != outer || outer.Parent() != nil {
		t.Error("parent chain is broken")
	}
}

func TestParser_OpaqueAtRules(t *testing.T) {
	sheet := parse(t, `@import url(base.css);
@font-face { font-family: "Foo"; src: url(foo.woff) }
@keyframes spin { from { opacity: 0 } to { opacity: 1 } }
a { color: red }`)

	if len(sheet.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(sheet.Nodes))
	}

	imp, ok := sheet.Nodes[0].(*css.AtRule)
	if !ok || imp.Name != "import" || imp.HasBlock {
		t.Errorf("unexpected import node %#v", sheet.Nodes[0])
	}
	ff, ok := sheet.Nodes[1].(*css.AtRule)
	if !ok || ff.Name != "font-face" || !ff.HasBlock {
		t.Fatalf("unexpected font-face node %#v", sheet.Nodes[1])
	}
	if !strings.Contains(ff.Block, "url(foo.woff)") {
		t.Errorf("font-face block = %q", ff.Block)
	}
	kf, ok := sheet.Nodes[2].(*css.AtRule)
	if !ok || kf.Name != "keyframes" || kf.Prelude != "spin" {
		t.Fatalf("unexpected keyframes node %#v", sheet.Nodes[2])
	}
	if !strings.Contains(kf.Block, "from{opacity:0}") || !strings.Contains(kf.Block, "to{opacity:1}") {
		t.Errorf("keyframes block = %q", kf.Block)
	}
	if _, ok := sheet.Nodes[3].(*css.Rule); !ok {
		t.Errorf("expected rule after at-rules, got %T", sheet.Nodes[3])
	}
}

func TestParser_TopLevelComment(t *testing.T) {
	sheet := parse(t, `/* header */ a { color: red }`)

	if len(sheet.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(sheet.Nodes))
	}
	c, ok := sheet.Nodes[0].(*css.Comment)
	if !ok {
		t.Fatalf("expected *css.Comment, got %T", sheet.Nodes[0])
	}
	if c.Text != "/* header */" {
		t.Errorf("comment = %q", c.Text)
	}
}

func TestParser_BlockComments(t *testing.T) {
	sheet := parse(t, `a { /* lead */ color: red; /* mid */ margin: /* value */ 0; /* tail */ }
@media print {
  /* group */
  b { color: blue }
  /* after b */
}
@font-face { /* opaque */ font-family: x }
/* top */`)

	if len(sheet.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(sheet.Nodes))
	}

	rule := sheet.Nodes[0].(*css.Rule)
	want := []css.Declaration{
		css.CommentDecl("/* lead */"),
		css.Style("color", "red"),
		css.CommentDecl("/* mid */"),
		css.Style("margin", "0"),
		css.CommentDecl("/* tail */"),
	}
	if !slices.Equal(rule.Declarations, want) {
		t.Errorf("declarations = %v, want %v", rule.Declarations, want)
	}

	g, ok := sheet.Nodes[1].(*css.GroupRule)
	if !ok {
		t.Fatalf("expected *css.GroupRule, got %T", sheet.Nodes[1])
	}
	var kinds []string
	for _, n := range g.Children {
		kinds = append(kinds, n.Kind())
	}
	if want := []string{"comment", "rule", "comment"}; !slices.Equal(kinds, want) {
		t.Fatalf("group children = %q, want %q", kinds, want)
	}
	if c := g.Children[0].(*css.Comment); c.Text != "/* group */" {
		t.Errorf("group comment = %q", c.Text)
	}
	if c := g.Children[2].(*css.Comment); c.Text != "/* after b */" {
		t.Errorf("trailing group comment = %q", c.Text)
	}

	ff := sheet.Nodes[2].(*css.AtRule)
	if strings.Contains(ff.Block, "opaque") {
		t.Errorf("font-face block = %q", ff.Block)
	}
	if c, ok := sheet.Nodes[3].(*css.Comment); !ok || c.Text != "/* top */" {
		t.Errorf("unexpected last node %#v", sheet.Nodes[3])
	}
}

func TestParser_URLValue(t *testing.T) {
	sheet := parse(t, `a { background: url(img/logo.svg) no-repeat }`)

	decl := sheet.Rules()[0].Declarations[0]
	if decl.Value != "url(img/logo.svg) no-repeat" {
		t.Errorf("background = %q", decl.Value)
	}
}

func TestParser_Empty(t *testing.T) {
	sheet := parse(t, "")
	if len(sheet.Nodes) != 0 {
		t.Errorf("expected no nodes, got %d", len(sheet.Nodes))
	}
}
