package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoSelectors is returned when a rule without selectors is written.
var ErrNoSelectors = errors.New("rule without selectors")

// Format controls how a stylesheet is rendered back to text.
type Format struct {
	// Compact produces minified output: no comments, no insignificant
	// whitespace.
	Compact bool
	// Indent is used for nested levels in pretty mode, two spaces when empty.
	Indent string
}

// printer accumulates written byte count and the first write error.
type printer struct {
	w     io.Writer
	total int64
	err   error
}

func (p *printer) print(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		var n int
		n, p.err = io.WriteString(p.w, s)
		p.total += int64(n)
	}
}

// WriteTo writes the stylesheet to w in pretty format, implementing
// io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	return Format{}.Write(w, s)
}

// String returns pretty CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// Bytes renders the stylesheet with the requested format.
func (f Format) Bytes(s *Stylesheet) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.Write(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders the stylesheet to w.
func (f Format) Write(w io.Writer, s *Stylesheet) (int64, error) {
	if f.Indent == "" {
		f.Indent = "  "
	}
	p := &printer{w: w}
	if err := f.writeNodes(p, s.Nodes, 0); err != nil {
		return p.total, err
	}
	if !f.Compact && len(s.Nodes) > 0 {
		p.print("\n")
	}
	return p.total, p.err
}

func (f Format) writeNodes(p *printer, nodes []Node, depth int) error {
	first := true
	for _, n := range nodes {
		if f.Compact {
			if _, ok := n.(*Comment); ok {
				continue
			}
		} else if !first {
			p.print("\n\n")
		}
		first = false
		if err := f.writeNode(p, n, depth); err != nil {
			return err
		}
	}
	return p.err
}

func (f Format) writeNode(p *printer, n Node, depth int) error {
	indent := strings.Repeat(f.Indent, depth)
	if f.Compact {
		indent = ""
	}

	switch n := n.(type) {
	case *Rule:
		return f.writeRule(p, n, indent)

	case *GroupRule:
		p.print(indent, "@", n.Name)
		if n.Prelude != "" {
			p.print(" ", n.Prelude)
		}
		if f.Compact {
			p.print("{")
			if err := f.writeNodes(p, n.Children, depth+1); err != nil {
				return err
			}
			p.print("}")
			return p.err
		}
		p.print(" {\n")
		if err := f.writeNodes(p, n.Children, depth+1); err != nil {
			return err
		}
		p.print("\n", indent, "}")

	case *AtRule:
		p.print(indent, "@", n.Name)
		if n.Prelude != "" {
			p.print(" ", n.Prelude)
		}
		switch {
		case !n.HasBlock:
			p.print(";")
		case f.Compact:
			p.print("{", n.Block, "}")
		default:
			p.print(" {", n.Block, "}")
		}

	case *Comment:
		p.print(indent, n.Text)

	case *Other:
		p.print(indent, n.Text)

	default:
		return fmt.Errorf("unsupported node type %T", n)
	}
	return p.err
}

func (f Format) writeRule(p *printer, r *Rule, indent string) error {
	if len(r.Selectors) == 0 {
		return ErrNoSelectors
	}

	if f.Compact {
		p.print(strings.Join(r.Selectors, ","), "{")
		first := true
		for _, d := range r.Declarations {
			if !d.IsStyle() {
				continue
			}
			if !first {
				p.print(";")
			}
			first = false
			p.print(d.Property, ":", d.Value)
		}
		p.print("}")
		return p.err
	}

	p.print(indent, strings.Join(r.Selectors, ",\n"+indent), " {\n")
	for _, d := range r.Declarations {
		if d.IsStyle() {
			p.print(indent, f.Indent, d.Property, ": ", d.Value, ";\n")
			continue
		}
		p.print(indent, f.Indent, d.Value, "\n")
	}
	p.print(indent, "}")
	return p.err
}
