package css

import (
	"slices"
	"strings"
)

// Node is a single item of a stylesheet tree. The set of implementations is
// closed: *Rule, *GroupRule, *AtRule, *Comment and *Other.
type Node interface {
	// Kind returns the tag used to identify node type in context keys.
	Kind() string
	// Parent returns enclosing group rule or nil for top level nodes. Parent
	// is a back reference only, nodes are owned by their container.
	Parent() Node

	setParent(Node)
}

// DeclarationKind distinguishes style declarations from comments inside a
// declaration block.
type DeclarationKind int

const (
	DeclarationStyle DeclarationKind = iota
	DeclarationComment
)

// Declaration is either a property/value pair or a comment.
type Declaration struct {
	Kind     DeclarationKind
	Property string // empty for comments
	Value    string // comment text including delimiters for comments
}

// Style creates property declaration.
func Style(property, value string) Declaration {
	return Declaration{Kind: DeclarationStyle, Property: property, Value: value}
}

// CommentDecl creates comment declaration. Text is stored verbatim.
func CommentDecl(text string) Declaration {
	return Declaration{Kind: DeclarationComment, Value: text}
}

// IsStyle returns true for property declarations.
func (d Declaration) IsStyle() bool {
	return d.Kind == DeclarationStyle
}

// String returns the CSS text of the declaration without trailing semicolon.
func (d Declaration) String() string {
	if d.Kind == DeclarationComment {
		return d.Value
	}
	return d.Property + ": " + d.Value
}

// HasStyles reports whether at least one of declarations is not a comment.
func HasStyles(decls []Declaration) bool {
	return slices.ContainsFunc(decls, Declaration.IsStyle)
}

// Rule is a selector list paired with a declaration block.
type Rule struct {
	Selectors    []string
	Declarations []Declaration

	parent Node
}

func (r *Rule) Kind() string { return "rule" }
func (r *Rule) Parent() Node { return r.parent }
func (r *Rule) setParent(p Node) { r.parent = p }
func (r *Rule) SelectorText() string { return strings.Join(r.Selectors, ", ") }

// Styles returns only property declarations of the rule, comments are
// skipped.
func (r *Rule) Styles() []Declaration {
	styles := make([]Declaration, 0, len(r.Declarations))
	for _, d := range r.Declarations {
		if d.IsStyle() {
			styles = append(styles, d)
		}
	}
	return styles
}

// Clone returns a copy of the rule placed in the same context with selectors
// and declarations replaced.
func (r *Rule) Clone(selectors []string, decls []Declaration) *Rule {
	return &Rule{
		Selectors:    slices.Clone(selectors),
		Declarations: slices.Clone(decls),
		parent:       r.parent,
	}
}

// GroupRule is an at-rule wrapping nested rules (@media, @supports, ...).
type GroupRule struct {
	Name     string // lowercased at-keyword without '@', e.g. "media"
	Prelude  string // condition, e.g. "print" or "(display: grid)"
	Children []Node

	parent Node
}

func (g *GroupRule) Kind() string { return g.Name }
func (g *GroupRule) Parent() Node { return g.parent }
func (g *GroupRule) setParent(p Node) { g.parent = p }

// SetChildren replaces children of the group and points their parent
// references to it.
func (g *GroupRule) SetChildren(nodes []Node) {
	for _, n := range nodes {
		n.setParent(g)
	}
	g.Children = nodes
}

// AtRule is an at-rule the diff does not look into (@font-face, @keyframes,
// @import, ...). Block keeps raw text of the body so it could be written back.
type AtRule struct {
	Name     string
	Prelude  string
	Block    string
	HasBlock bool

	parent Node
}

func (a *AtRule) Kind() string { return a.Name }
func (a *AtRule) Parent() Node { return a.parent }
func (a *AtRule) setParent(p Node) { a.parent = p }

// Comment is a top level or nested comment, Text includes delimiters.
type Comment struct {
	Text string

	parent Node
}

func (c *Comment) Kind() string { return "comment" }
func (c *Comment) Parent() Node { return c.parent }
func (c *Comment) setParent(p Node) { c.parent = p }

// Other keeps anything else the parser met (CDO/CDC tokens, stray
// declarations in group rules) as raw text.
type Other struct {
	Text string

	parent Node
}

func (o *Other) Kind() string { return "other" }
func (o *Other) Parent() Node { return o.parent }
func (o *Other) setParent(p Node) { o.parent = p }

// Discriminant returns the value distinguishing at-rules of the same kind
// (media condition, supports condition). Empty for everything else.
func Discriminant(n Node) string {
	switch n := n.(type) {
	case *GroupRule:
		return n.Prelude
	case *AtRule:
		return n.Prelude
	default:
		return ""
	}
}

// HasContent reports whether nodes contain anything besides comments.
func HasContent(nodes []Node) bool {
	return slices.ContainsFunc(nodes, func(n Node) bool {
		_, comment := n.(*Comment)
		return !comment
	})
}

// Stylesheet is an ordered sequence of top level nodes.
type Stylesheet struct {
	Nodes    []Node
	Warnings []string // content parser had to drop
}

// SetNodes replaces top level nodes, detaching them from any parent.
func (s *Stylesheet) SetNodes(nodes []Node) {
	for _, n := range nodes {
		n.setParent(nil)
	}
	s.Nodes = nodes
}

// Walk visits all nodes depth first in document order, descending into group
// rules. Returning false from fn stops descent into the current node.
func (s *Stylesheet) Walk(fn func(n Node, depth int) bool) {
	walk(s.Nodes, 0, fn)
}

func walk(nodes []Node, depth int, fn func(n Node, depth int) bool) {
	for _, n := range nodes {
		if !fn(n, depth) {
			continue
		}
		if g, ok := n.(*GroupRule); ok {
			walk(g.Children, depth+1, fn)
		}
	}
}

// Rules returns all rules in document order including nested ones.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	s.Walk(func(n Node, _ int) bool {
		if r, ok := n.(*Rule); ok {
			rules = append(rules, r)
		}
		return true
	})
	return rules
}

// RulesBySelector returns all rules (including nested ones) whose selector
// list contains selector.
func (s *Stylesheet) RulesBySelector(selector string) []*Rule {
	var matches []*Rule
	for _, r := range s.Rules() {
		if slices.Contains(r.Selectors, selector) {
			matches = append(matches, r)
		}
	}
	return matches
}
