package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}

	charsetRule = regexp.MustCompile(`^@charset\s+["']([^"']+)["']\s*;`)
)

// Decode converts stylesheet bytes to UTF-8. Byte order marks are honored
// first, otherwise a leading @charset rule names the encoding. When
// conversion happens the @charset rule is rewritten to say UTF-8.
func Decode(data []byte) ([]byte, error) {
	var dec *encoding.Decoder

	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return data[len(utf8BOM):], nil
	case bytes.HasPrefix(data, utf16LEBOM):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case bytes.HasPrefix(data, utf16BEBOM):
		dec = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	default:
		m := charsetRule.FindSubmatch(data)
		if m == nil {
			return data, nil
		}
		enc, name := charset.Lookup(string(m[1]))
		if enc == nil {
			return nil, fmt.Errorf("unknown stylesheet charset %q", m[1])
		}
		if name == "utf-8" {
			return data, nil
		}
		dec = enc.NewDecoder()
	}

	out, err := dec.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode stylesheet: %w", err)
	}
	if loc := charsetRule.FindIndex(out); loc != nil {
		out = append([]byte(`@charset "UTF-8";`), out[loc[1]:]...)
	}
	return out, nil
}

// Normalize re-tokenizes CSS text dropping comments and whitespace which does
// not affect meaning. Declaration values and selectors are otherwise left
// intact, so two sheets differing only in formatting normalize to the same
// bytes.
func Normalize(data []byte) ([]byte, error) {
	l := css.NewLexer(parse.NewInput(bytes.NewReader(data)))

	var (
		out   bytes.Buffer
		space bool
		last  []byte
	)
	for {
		tt, text := l.Next()

		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("unable to normalize stylesheet: %w", err)
			}
			return out.Bytes(), nil
		case css.WhitespaceToken, css.CommentToken:
			space = out.Len() > 0
			continue
		case css.RightBraceToken:
			// trailing semicolon in a block is insignificant
			if bytes.Equal(last, []byte(";")) {
				out.Truncate(out.Len() - 1)
			}
		}

		if space && !tightAfter(last) && !tightBefore(text) {
			out.WriteByte(' ')
		}
		space = false
		out.Write(text)
		last = append(last[:0], text...)
	}
}

func tightAfter(prev []byte) bool {
	return len(prev) > 0 && strings.ContainsRune("{};,:>", rune(prev[len(prev)-1]))
}

func tightBefore(next []byte) bool {
	return len(next) > 0 && strings.ContainsRune("{};,>)", rune(next[0]))
}
