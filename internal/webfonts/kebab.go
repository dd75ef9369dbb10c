package webfonts

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToKebabCase converts a camelCase key to kebab-case by inserting a hyphen
// before each uppercase letter and lowercasing the result. Keys that are
// already kebab-case come back unchanged.
func ToKebabCase(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	prev := rune(-1)
	for i, r := range key {
		if unicode.IsUpper(r) && i > 0 && prev != '-' {
			b.WriteByte('-')
		}
		b.WriteRune(r)
		prev = r
	}
	// Casers keep state, so each call gets its own.
	return cases.Lower(language.Und).String(b.String())
}

// KebabCaseKeys returns a copy of face with every key kebab-cased. Values are
// left untouched. When two keys collapse onto the same name the later value
// wins and keeps the earlier position.
func KebabCaseKeys(face FontFace) FontFace {
	var out FontFace
	for _, fd := range face.fields {
		out.Set(ToKebabCase(fd.Key), fd.Value)
	}
	return out
}
