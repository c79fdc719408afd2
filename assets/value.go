package assets

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// URLs returns arguments of all url() functions in a declaration value,
// quotes removed.
func URLs(value string) []string {
	var refs []string
	forEachToken(value, func(tt css.TokenType, data []byte) {
		if tt == css.URLToken {
			refs = append(refs, urlArgument(data))
		}
	})
	return refs
}

// ValueIdentity returns declaration value with every url() argument replaced
// by its identity (see Identity). The second result is false when value does
// not reference anything.
func (r *Resolver) ValueIdentity(value string) (string, bool, error) {
	var (
		sb    strings.Builder
		found bool
		err   error
		space bool
	)
	forEachToken(value, func(tt css.TokenType, data []byte) {
		if err != nil {
			return
		}
		switch tt {
		case css.WhitespaceToken:
			space = sb.Len() > 0
			return
		case css.CommentToken:
			return
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		if tt != css.URLToken {
			sb.Write(data)
			return
		}
		found = true
		var id string
		if id, err = r.Identity(urlArgument(data)); err == nil {
			sb.WriteString("url(")
			sb.WriteString(id)
			sb.WriteString(")")
		}
	})
	if err != nil {
		return "", true, err
	}
	return sb.String(), found, nil
}

func forEachToken(value string, fn func(tt css.TokenType, data []byte)) {
	l := css.NewLexer(parse.NewInputString(value))
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			return
		}
		fn(tt, data)
	}
}

// urlArgument strips url( ) and quotes around the reference.
func urlArgument(token []byte) string {
	if i := bytes.IndexByte(token, '('); i >= 0 {
		token = token[i+1:]
	}
	token = bytes.TrimSuffix(token, []byte(")"))
	s := strings.TrimSpace(string(token))
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return s
}
