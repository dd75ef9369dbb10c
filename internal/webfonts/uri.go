package webfonts

import (
	"os"
	"path/filepath"
	"strings"
)

// RelativeFileMarker prefixes a src entry that points at a file relative to
// the theme root.
const RelativeFileMarker = "file:./"

// BaseURIResolver maps a theme-relative path to an absolute URI.
type BaseURIResolver func(relativePath string) string

// ResolveFontFaceURI coerces src to a sequence and rewrites every entry that
// starts with RelativeFileMarker through resolve. Faces without a src, or
// with an empty one, are returned unchanged.
func ResolveFontFaceURI(face FontFace, resolve BaseURIResolver) FontFace {
	raw, ok := face.Get(KeySrc)
	if !ok || isEmptySrc(raw) {
		return face
	}

	srcs := coerceSrc(raw)
	for i, v := range srcs {
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, RelativeFileMarker) || resolve == nil {
			continue
		}
		srcs[i] = resolve(strings.TrimPrefix(s, RelativeFileMarker))
	}

	out := face.Clone()
	out.Set(KeySrc, srcs)
	return out
}

func isEmptySrc(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case []string:
		return len(s) == 0
	case []any:
		return len(s) == 0
	}
	return false
}

// coerceSrc always returns a fresh slice so callers can rewrite it in place.
func coerceSrc(v any) []any {
	switch s := v.(type) {
	case []any:
		out := make([]any, len(s))
		copy(out, s)
		return out
	case []string:
		out := make([]any, len(s))
		for i, str := range s {
			out[i] = str
		}
		return out
	default:
		return []any{s}
	}
}

// JoinURI appends path to base with exactly one slash between them.
func JoinURI(base, path string) string {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + path
}

// ThemeFileResolver resolves theme-relative files against the active theme.
//
// When a parent theme is configured, files missing from Dir are served from
// the parent theme instead.
type ThemeFileResolver struct {
	Dir           string
	BaseURI       string
	ParentBaseURI string

	exists func(path string) bool
}

// NewThemeFileResolver returns a resolver for a theme served at baseURI.
func NewThemeFileResolver(dir, baseURI string) *ThemeFileResolver {
	return &ThemeFileResolver{Dir: dir, BaseURI: baseURI}
}

// WithParent configures the parent theme fallback.
func (r *ThemeFileResolver) WithParent(baseURI string) *ThemeFileResolver {
	r.ParentBaseURI = baseURI
	return r
}

// Resolve implements BaseURIResolver.
func (r *ThemeFileResolver) Resolve(relativePath string) string {
	relativePath = strings.TrimLeft(relativePath, "/")
	if relativePath == "" || r.ParentBaseURI == "" || r.Dir == "" {
		return JoinURI(r.BaseURI, relativePath)
	}
	if r.fileExists(filepath.Join(r.Dir, filepath.FromSlash(relativePath))) {
		return JoinURI(r.BaseURI, relativePath)
	}
	return JoinURI(r.ParentBaseURI, relativePath)
}

func (r *ThemeFileResolver) fileExists(path string) bool {
	if r.exists != nil {
		return r.exists(path)
	}
	_, err := os.Stat(path)
	return err == nil
}
