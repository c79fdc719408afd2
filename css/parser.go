package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// groupRules lists at-rules whose block holds nested rules. Other at-rules
// are kept opaque.
var groupRules = map[string]bool{
	"media":         true,
	"supports":      true,
	"document":      true,
	"-moz-document": true,
}

// Parser parses CSS stylesheets into node trees.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. The optional source parameter
// identifies what's being parsed (for debug logging and error messages).
func (p *Parser) Parse(data []byte, source ...string) (*Stylesheet, error) {
	var name string
	if len(source) > 0 && source[0] != "" {
		name = source[0]
		p.log.Debug("Parsing CSS", zap.String("source", name), zap.Int("bytes", len(data)))
	}

	sheet := &Stylesheet{}
	parser := &grammar{
		Parser:   css.NewParser(parse.NewInput(bytes.NewReader(data)), false),
		comments: scanBlockComments(data),
	}

	nodes, err := p.parseNodes(parser, sheet, false)
	if err != nil {
		if name != "" {
			return nil, fmt.Errorf("unable to parse %s: %w", name, err)
		}
		return nil, fmt.Errorf("unable to parse stylesheet: %w", err)
	}
	sheet.SetNodes(nodes)

	for _, w := range sheet.Warnings {
		p.log.Debug("CSS parser warning", zap.String("source", name), zap.String("warning", w))
	}
	return sheet, nil
}

// parserErr returns real parsing error if any, end of input is not an error.
func parserErr(parser *css.Parser) error {
	if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// grammar is tdewolff grammar parser paired with comments it skips. The
// parser only reports comments at stylesheet level, comments inside blocks
// are found by a separate lexer pass and handed out by offset.
type grammar struct {
	*css.Parser
	comments []blockComment
}

type blockComment struct {
	text string
	end  int // offset right after the comment
}

// commentsBefore returns pending block comments which end before the current
// parser position.
func (g *grammar) commentsBefore() []string {
	var out []string
	for len(g.comments) > 0 && g.comments[0].end <= g.Offset() {
		out = append(out, g.comments[0].text)
		g.comments = g.comments[1:]
	}
	return out
}

// scanBlockComments lexes data and collects comments inside braces which
// stand on their own: after '{', ';', '}' or another such comment. Comments
// inside selectors and values are not collected, they are dropped together
// with the surrounding whitespace.
func scanBlockComments(data []byte) []blockComment {
	var (
		out        []blockComment
		depth      int
		standalone = true
	)

	in := parse.NewInput(bytes.NewReader(data))
	l := css.NewLexer(in)
	for {
		tt, text := l.Next()
		switch tt {
		case css.ErrorToken:
			return out
		case css.WhitespaceToken:
			continue
		case css.CommentToken:
			if depth > 0 && standalone {
				out = append(out, blockComment{text: string(text), end: in.Offset()})
			}
			continue
		case css.LeftBraceToken:
			depth++
			standalone = true
			continue
		case css.RightBraceToken:
			if depth > 0 {
				depth--
			}
			standalone = true
			continue
		case css.SemicolonToken:
			standalone = true
			continue
		}
		standalone = false
	}
}

// parseNodes reads nodes until end of input or, when nested, until the end
// of enclosing group rule.
func (p *Parser) parseNodes(parser *grammar, sheet *Stylesheet, nested bool) ([]Node, error) {
	var (
		nodes     []Node
		selectors strings.Builder
	)

	for {
		gt, _, data := parser.Next()
		for _, c := range parser.commentsBefore() {
			nodes = append(nodes, &Comment{Text: c})
		}

		switch gt {
		case css.ErrorGrammar:
			if err := parserErr(parser.Parser); err != nil {
				return nil, err
			}
			return nodes, nil

		case css.EndAtRuleGrammar:
			if nested {
				return nodes, nil
			}
			sheet.Warnings = append(sheet.Warnings, "unbalanced closing brace")

		case css.CommentGrammar:
			nodes = append(nodes, &Comment{Text: string(data)})

		case css.TokenGrammar:
			nodes = append(nodes, &Other{Text: string(data)})

		case css.AtRuleGrammar:
			nodes = append(nodes, &AtRule{
				Name:    atRuleName(data),
				Prelude: tokensText(nil, parser.Values()),
			})

		case css.BeginAtRuleGrammar:
			name, prelude := atRuleName(data), tokensText(nil, parser.Values())
			if groupRules[name] {
				children, err := p.parseNodes(parser, sheet, true)
				if err != nil {
					return nil, err
				}
				g := &GroupRule{Name: name, Prelude: prelude}
				g.SetChildren(children)
				nodes = append(nodes, g)
				p.log.Debug("Parsed group rule", zap.String("rule", name), zap.String("prelude", prelude), zap.Int("children", len(children)))
				continue
			}
			block, err := p.captureBlock(parser)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &AtRule{Name: name, Prelude: prelude, Block: block, HasBlock: true})

		case css.QualifiedRuleGrammar:
			// part of a comma separated selector list, the last one comes with
			// BeginRulesetGrammar
			selectors.WriteString(tokensText(data, parser.Values()))
			selectors.WriteByte(',')

		case css.BeginRulesetGrammar:
			selectors.WriteString(tokensText(data, parser.Values()))
			decls, err := p.parseDeclarations(parser, sheet)
			if err != nil {
				return nil, err
			}
			rule := &Rule{Selectors: nonEmpty(splitSelectors(selectors.String())), Declarations: decls}
			selectors.Reset()
			if len(rule.Selectors) == 0 {
				sheet.Warnings = append(sheet.Warnings, "ruleset without selectors kept verbatim")
				nodes = append(nodes, &Other{Text: "{" + declarationsText(decls) + "}"})
				continue
			}
			nodes = append(nodes, rule)

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			// declarations directly inside group rule (nesting) - keep as is
			nodes = append(nodes, &Other{Text: string(data) + ":" + tokensText(nil, parser.Values()) + ";"})

		case css.EndRulesetGrammar:
			sheet.Warnings = append(sheet.Warnings, "unexpected end of ruleset")
		}
	}
}

// parseDeclarations parses declaration block until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *grammar, sheet *Stylesheet) ([]Declaration, error) {
	var decls []Declaration

	for {
		gt, _, data := parser.Next()
		for _, c := range parser.commentsBefore() {
			decls = append(decls, CommentDecl(c))
		}

		switch gt {
		case css.ErrorGrammar:
			if err := parserErr(parser.Parser); err != nil {
				return nil, err
			}
			return decls, nil

		case css.EndRulesetGrammar:
			return decls, nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, Style(string(data), tokensText(nil, parser.Values())))

		case css.CommentGrammar:
			decls = append(decls, CommentDecl(string(data)))

		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			// nested rules inside declaration block are not supported
			text, err := p.captureBlock(parser)
			if err != nil {
				return nil, err
			}
			sheet.Warnings = append(sheet.Warnings, "unsupported nested block dropped: "+text)
		}
	}
}

// captureBlock consumes the body of an at-rule or ruleset whose opening
// brace has been read already and returns it as compact CSS text without
// enclosing braces.
func (p *Parser) captureBlock(parser *grammar) (string, error) {
	var (
		sb  strings.Builder
		sep bool // declaration separator is due
	)

	for depth := 1; ; {
		gt, _, data := parser.Next()
		// opaque blocks are kept compact, comments in them are dropped
		parser.commentsBefore()

		switch gt {
		case css.ErrorGrammar:
			if err := parserErr(parser.Parser); err != nil {
				return "", err
			}
			// unterminated block is closed by the end of input
			return sb.String(), nil

		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
			if depth == 0 {
				return sb.String(), nil
			}
			sb.WriteByte('}')
			sep = false

		case css.BeginAtRuleGrammar:
			depth++
			if sep {
				sb.WriteByte(';')
			}
			writeAtRuleHead(&sb, data, parser.Values())
			sb.WriteByte('{')
			sep = false

		case css.AtRuleGrammar:
			if sep {
				sb.WriteByte(';')
			}
			writeAtRuleHead(&sb, data, parser.Values())
			sb.WriteByte(';')
			sep = false

		case css.QualifiedRuleGrammar:
			sb.WriteString(tokensText(data, parser.Values()))
			sb.WriteByte(',')

		case css.BeginRulesetGrammar:
			depth++
			sb.WriteString(tokensText(data, parser.Values()))
			sb.WriteByte('{')
			sep = false

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if sep {
				sb.WriteByte(';')
			}
			sb.Write(data)
			sb.WriteByte(':')
			sb.WriteString(tokensText(nil, parser.Values()))
			sep = true

		default:
			// comments and raw tokens of unknown at-rules
			sb.Write(data)
		}
	}
}

func writeAtRuleHead(sb *strings.Builder, name []byte, values []css.Token) {
	sb.Write(name)
	if prelude := tokensText(nil, values); prelude != "" {
		sb.WriteByte(' ')
		sb.WriteString(prelude)
	}
}

// tokensText joins token data collapsing whitespace runs into a single space
// and trimming it on both ends. Comments are dropped.
func tokensText(head []byte, tokens []css.Token) string {
	var (
		sb    strings.Builder
		space bool
	)
	sb.WriteString(strings.TrimSpace(string(head)))
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			space = sb.Len() > 0
			continue
		case css.CommentToken:
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

func atRuleName(data []byte) string {
	return strings.ToLower(strings.TrimPrefix(string(data), "@"))
}

// splitSelectors splits selector list on commas which are not nested in
// parentheses, brackets or strings.
func splitSelectors(s string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func declarationsText(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		if d.IsStyle() {
			parts = append(parts, d.Property+":"+d.Value)
		}
	}
	return strings.Join(parts, ";")
}
