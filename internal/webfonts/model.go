package webfonts

import "fmt"

// Reserved font face keys.
const (
	KeySrc        = "src"
	KeyProvider   = "provider"
	KeyFontFamily = "fontFamily"
)

// ThemeTypographyConfig groups font family declarations by origin
// (default, theme, custom). Origins only group families; their names are
// never interpreted.
type ThemeTypographyConfig struct {
	Origins []Origin
}

// Origin is one group of font families, in declaration order.
type Origin struct {
	Name     string
	Families []FontFamilyEntry
}

// FontFamilyEntry is a single font family declaration.
type FontFamilyEntry struct {
	// Slug is the key the family was declared under.
	Slug string
	// FontFamily is the display name, used for diagnostics only.
	FontFamily string
	// Provider is nil when the family does not declare one.
	Provider *string
	// FontFaces is nil when the family declares no font faces.
	FontFaces []FontFace
}

// DisplayName returns the family name used in diagnostics, falling back to
// the slug.
func (e FontFamilyEntry) DisplayName() string {
	if e.FontFamily != "" {
		return e.FontFamily
	}
	return e.Slug
}

// FamilyCount returns the number of font family declarations across all
// origins.
func (c *ThemeTypographyConfig) FamilyCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, o := range c.Origins {
		n += len(o.Families)
	}
	return n
}

// DiagnosticKind classifies configuration authoring mistakes.
type DiagnosticKind string

// MissingFontFacesForProvider is reported for a family that names a provider
// but declares no font faces.
const MissingFontFacesForProvider DiagnosticKind = "missing_font_faces_for_provider"

// Diagnostic is a non-fatal warning produced while normalizing.
type Diagnostic struct {
	Kind     DiagnosticKind
	Origin   string
	Family   string
	Provider string
	Message  string
}

func (d Diagnostic) String() string { return d.Message }

func missingFontFaces(origin string, family FontFamilyEntry) Diagnostic {
	name := family.DisplayName()
	return Diagnostic{
		Kind:     MissingFontFacesForProvider,
		Origin:   origin,
		Family:   name,
		Provider: *family.Provider,
		Message:  fmt.Sprintf("family '%s' declares a provider but no font faces", name),
	}
}
