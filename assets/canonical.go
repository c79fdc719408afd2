package assets

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

const svgDataPrefix = "data:" + svgMIME + ";charset=utf-8,"

var (
	xmlNoise  = regexp.MustCompile(`(?s)<!--.*?-->|<\?xml\s.*?\?>|<!DOCTYPE[^>]*>`)
	spaceRun    = regexp.MustCompile(`\s+`)
	spaceInTags = regexp.MustCompile(`>\s+<`)
)

// IsDataURI reports whether url() argument is inline data.
func IsDataURI(ref string) bool {
	return len(ref) >= 5 && strings.EqualFold(ref[:5], "data:")
}

// DataURI is a parsed data: reference.
type DataURI struct {
	MIME    string // lowercased media type without parameters
	Base64  bool
	Payload []byte // decoded payload
}

// ParseDataURI splits data URI into media type and decoded payload. Percent
// escapes are decoded leniently: malformed sequences are kept as is.
func ParseDataURI(ref string) (*DataURI, bool) {
	if !IsDataURI(ref) {
		return nil, false
	}
	header, payload, ok := strings.Cut(ref[5:], ",")
	if !ok {
		return nil, false
	}

	params := strings.Split(header, ";")
	d := &DataURI{MIME: strings.ToLower(strings.TrimSpace(params[0]))}
	if d.MIME == "" {
		d.MIME = "text/plain"
	}
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			d.Base64 = true
		}
	}

	if !d.Base64 {
		d.Payload = unescape(payload)
		return d, true
	}
	data, err := base64.StdEncoding.DecodeString(spaceRun.ReplaceAllString(string(unescape(payload)), ""))
	if err != nil {
		return nil, false
	}
	d.Payload = data
	return d, true
}

func unescape(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		out = append(out, s[i])
	}
	return out
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// dataIdentity canonicalizes SVG payloads, other data URIs compare verbatim.
func dataIdentity(ref string) string {
	d, ok := ParseDataURI(ref)
	if !ok || d.MIME != svgMIME {
		return ref
	}
	return svgDataPrefix + CanonicalSVG(d.Payload)
}

// CanonicalSVG returns normalized SVG text: comments, XML declaration and
// line breaks removed, whitespace collapsed, quotes turned into double quotes
// and '#' escaped.
// Documents etree can read are reserialized first, so attribute quoting and
// empty element form do not matter either.
func CanonicalSVG(data []byte) string {
	text := string(data)

	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err == nil {
		stripComments(&doc.Element)
		if s, err := doc.WriteToString(); err == nil {
			text = s
		}
	} else {
		text = xmlNoise.ReplaceAllString(text, "")
	}

	text = spaceRun.ReplaceAllString(text, " ")
	text = spaceInTags.ReplaceAllString(text, "><")
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "'", `"`)
	return strings.ReplaceAll(text, "#", "%23")
}

// stripComments removes comments, XML declaration and DOCTYPE.
func stripComments(e *etree.Element) {
	for i := len(e.Child) - 1; i >= 0; i-- {
		switch t := e.Child[i].(type) {
		case *etree.Comment, *etree.Directive:
			e.RemoveChildAt(i)
		case *etree.ProcInst:
			if t.Target == "xml" {
				e.RemoveChildAt(i)
			}
		case *etree.Element:
			stripComments(t)
		}
	}
}

// hasSVGRoot is used by MIME sniffing of files without extension.
func hasSVGRoot(data []byte) bool {
	return bytes.Contains(data, []byte("<svg"))
}
