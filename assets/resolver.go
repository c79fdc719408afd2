// Package assets resolves url() references found in stylesheets to
// comparable identities: local files are materialized as data URIs, SVG
// content is canonicalized so differently formatted documents compare equal.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

var (
	// ErrInvalidPath is returned for references which cannot be resolved
	// inside working directory.
	ErrInvalidPath = errors.New("invalid asset path")
	// ErrUnknownType is returned when MIME type of the asset could not be
	// determined.
	ErrUnknownType = errors.New("unknown asset type")
)

const svgMIME = "image/svg+xml"

// Asset is a local file referenced from a stylesheet.
type Asset struct {
	Ref  string // reference as it appears in url()
	Path string // slash separated path relative to working directory
	MIME string
	Data []byte
}

// DataURI materializes asset as data URI. SVG documents are embedded as
// canonical text, everything else is base64 encoded.
func (a *Asset) DataURI() string {
	if a.MIME == svgMIME {
		return svgDataPrefix + CanonicalSVG(a.Data)
	}
	return "data:" + a.MIME + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

type cached struct {
	id  string
	err error
}

// Resolver loads assets relative to a working directory and caches computed
// identities. Not safe for concurrent use.
type Resolver struct {
	cwd   string
	fsys  fs.FS
	log   *zap.Logger
	cache map[string]cached
}

// NewResolver creates resolver rooted at cwd, empty cwd means process working
// directory.
func NewResolver(cwd string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if cwd == "" {
		cwd = "."
	}
	return &Resolver{
		cwd:   cwd,
		fsys:  os.DirFS(cwd),
		log:   log.Named("assets"),
		cache: make(map[string]cached),
	}
}

// Resolve reads referenced file and detects its MIME type. os.DirFS refuses
// paths escaping the root, so references with ".." are rejected.
func (r *Resolver) Resolve(ref string) (*Asset, error) {
	name, err := assetPath(ref)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("unable to read asset %q from %s: %w", ref, r.cwd, err)
	}

	mime, err := detectMIME(name, data)
	if err != nil {
		return nil, fmt.Errorf("asset %q: %w", ref, err)
	}

	r.log.Debug("Resolved asset", zap.String("ref", ref), zap.String("path", name), zap.String("mime", mime), zap.Int("bytes", len(data)))
	return &Asset{Ref: ref, Path: name, MIME: mime, Data: data}, nil
}

// Identity returns comparable identity of url() argument. Data URIs are
// canonicalized when they carry SVG and used verbatim otherwise, remote
// references are used verbatim, local files are materialized as data URIs.
func (r *Resolver) Identity(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if c, ok := r.cache[ref]; ok {
		return c.id, c.err
	}

	var (
		id  string
		err error
	)
	switch {
	case IsDataURI(ref):
		id = dataIdentity(ref)
	case isRemote(ref):
		id = ref
	default:
		var a *Asset
		if a, err = r.Resolve(ref); err == nil {
			id = a.DataURI()
		}
	}
	r.cache[ref] = cached{id: id, err: err}
	return id, err
}

func isRemote(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != "" && len(u.Scheme) > 1
}

// assetPath turns url() reference into fs.FS path: query and fragment are
// dropped, escapes decoded, leading slash means working directory.
func assetPath(ref string) (string, error) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if p, err := url.PathUnescape(ref); err == nil {
		ref = p
	}
	ref = strings.TrimLeft(filepath.ToSlash(ref), "/")
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidPath)
	}
	name := path.Clean(ref)
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, ref)
	}
	return name, nil
}

var extMIME = map[string]string{
	".svg":   svgMIME,
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".bmp":   "image/bmp",
	".ico":   "image/x-icon",
	".avif":  "image/avif",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",
}

// detectMIME prefers extension, then content sniffing.
func detectMIME(name string, data []byte) (string, error) {
	if mime, ok := extMIME[strings.ToLower(path.Ext(name))]; ok {
		if !validContent(mime, data) {
			return "", fmt.Errorf("%w: content does not match %s", ErrUnknownType, mime)
		}
		return mime, nil
	}

	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value, nil
	}

	mime, _, _ := strings.Cut(http.DetectContentType(data), ";")
	switch {
	case (mime == "text/xml" || mime == "text/plain") && hasSVGRoot(data):
		return svgMIME, nil
	case mime == "application/octet-stream":
		return "", ErrUnknownType
	}
	return mime, nil
}

// validContent checks font files which are easy to misname.
func validContent(mime string, data []byte) bool {
	switch mime {
	case "font/woff":
		return filetype.Is(data, "woff")
	case "font/woff2":
		return filetype.Is(data, "woff2")
	case "font/ttf":
		return filetype.Is(data, "ttf")
	case "font/otf":
		return filetype.Is(data, "otf")
	}
	return true
}
