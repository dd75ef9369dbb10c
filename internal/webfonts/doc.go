// Package webfonts turns the font families declared in theme settings into
// the ordered list of font faces handed to a font registrar.
//
// Only faces served by a provider are collected. A family that names a
// provider passes it down to every face; a family without one contributes
// only the faces that name their own provider. Each collected face has its
// theme-relative src entries ("file:./fonts/a.woff2") resolved to absolute
// URIs and its keys rewritten to kebab-case:
//
//	resolver := webfonts.NewThemeFileResolver(dir, "https://example.test/themes/acme/")
//	faces, diagnostics := webfonts.NewNormalizer(resolver.Resolve).Normalize(cfg)
package webfonts
