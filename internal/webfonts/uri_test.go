package webfonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFontFaceURI(t *testing.T) {
	resolve := testResolver()

	tests := []struct {
		name string
		src  any
		want any
	}{
		{"relative string", "file:./fonts/a.woff2", []any{"https://example.test/themes/mytheme/fonts/a.woff2"}},
		{"absolute string", "https://cdn.test/a.woff2", []any{"https://cdn.test/a.woff2"}},
		{"mixed sequence", []any{"file:./a.woff2", "https://cdn.test/b.woff"}, []any{"https://example.test/themes/mytheme/a.woff2", "https://cdn.test/b.woff"}},
		{"string slice", []string{"file:./a.woff2"}, []any{"https://example.test/themes/mytheme/a.woff2"}},
		{"marker not at start", "https://x.test/file:./a.woff2", []any{"https://x.test/file:./a.woff2"}},
		{"non-string scalar", 42, []any{42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ResolveFontFaceURI(face("src", tt.src), resolve)
			got, ok := out.Get("src")
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFontFaceURI_NoSrc(t *testing.T) {
	in := face("fontWeight", "400")
	out := ResolveFontFaceURI(in, testResolver())
	assert.Equal(t, in.Keys(), out.Keys())
	assert.False(t, out.Declares("src"))

	empty := face("src", "")
	out = ResolveFontFaceURI(empty, testResolver())
	src, _ := out.Get("src")
	assert.Equal(t, "", src)
}

func TestJoinURI(t *testing.T) {
	assert.Equal(t, "https://a.test/t/fonts/x.woff2", JoinURI("https://a.test/t/", "fonts/x.woff2"))
	assert.Equal(t, "https://a.test/t/fonts/x.woff2", JoinURI("https://a.test/t", "/fonts/x.woff2"))
	assert.Equal(t, "https://a.test/t", JoinURI("https://a.test/t", ""))
}

func TestThemeFileResolver_ParentFallback(t *testing.T) {
	r := NewThemeFileResolver("/themes/child", "https://a.test/child").WithParent("https://a.test/parent")
	r.exists = func(path string) bool { return path == "/themes/child/fonts/own.woff2" }

	assert.Equal(t, "https://a.test/child/fonts/own.woff2", r.Resolve("fonts/own.woff2"))
	assert.Equal(t, "https://a.test/parent/fonts/inherited.woff2", r.Resolve("fonts/inherited.woff2"))
}

func TestThemeFileResolver_NoParent(t *testing.T) {
	r := NewThemeFileResolver("/themes/child", "https://a.test/child/")
	r.exists = func(string) bool { return false }

	assert.Equal(t, "https://a.test/child/fonts/a.woff2", r.Resolve("fonts/a.woff2"))
}
