// Package registry hands normalized font faces to a registration sink.
package registry

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

// Result summarizes one Register call.
type Result struct {
	Accepted int // faces the sink took
	Skipped  int // faces dropped as duplicates of an earlier declaration
}

// Registrar receives the ordered font faces of one registration run.
type Registrar interface {
	Name() string
	Register(ctx context.Context, runID string, faces []webfonts.FontFace) (Result, error)
	Close() error
}

// matchingKeys identify a face for deduplication: two faces agreeing on all
// of them describe the same registration.
var matchingKeys = []string{"font-family", "font-style", "font-weight", "font-stretch", "unicode-range", "provider"}

// Fingerprint returns the deduplication key of a normalized face. Faces
// without a font-family cannot be told apart by family, so their src is part
// of the key.
func Fingerprint(face webfonts.FontFace) string {
	parts := make([]string, 0, len(matchingKeys)+1)
	for _, k := range matchingKeys {
		parts = append(parts, fingerprintPart(face, k))
	}
	if face.StringValue("font-family") == "" {
		parts = append(parts, fingerprintPart(face, "src"))
	}
	return strings.Join(parts, "\x1f")
}

func fingerprintPart(face webfonts.FontFace, key string) string {
	if v, ok := face.Get(key); ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// Dedupe keeps the first face for every fingerprint, preserving order.
func Dedupe(faces []webfonts.FontFace) []webfonts.FontFace {
	seen := make(map[string]struct{}, len(faces))
	out := make([]webfonts.FontFace, 0, len(faces))
	for _, f := range faces {
		fp := Fingerprint(f)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, f)
	}
	return out
}
