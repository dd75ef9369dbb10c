package themejson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	werrors "git.home.luguber.info/inful/webfonts/internal/errors"
	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

func TestLoadFile_TabIndentedThemeJSON(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "theme.json"), "theme")
	require.NoError(t, err)
	require.Len(t, cfg.Origins, 1)

	origin := cfg.Origins[0]
	assert.Equal(t, "theme", origin.Name)
	require.Len(t, origin.Families, 4)

	serif := origin.Families[0]
	assert.Equal(t, "source-serif-pro", serif.Slug)
	assert.Equal(t, `"Source Serif Pro", serif`, serif.FontFamily)
	require.NotNil(t, serif.Provider)
	assert.Equal(t, "local", *serif.Provider)
	require.Len(t, serif.FontFaces, 2)
	assert.Equal(t, []string{"fontFamily", "fontWeight", "fontStyle", "fontStretch", "src"}, serif.FontFaces[0].Keys())
	src, _ := serif.FontFaces[0].Get("src")
	assert.Equal(t, []any{"file:./assets/fonts/SourceSerif4Variable-Roman.ttf.woff2"}, src)

	system := origin.Families[1]
	assert.Nil(t, system.Provider)
	assert.Nil(t, system.FontFaces)

	inter := origin.Families[2]
	assert.Nil(t, inter.Provider)
	require.Len(t, inter.FontFaces, 2)
	weight, _ := inter.FontFaces[0].Get("fontWeight")
	assert.Equal(t, 400, weight)

	acme := origin.Families[3]
	require.NotNil(t, acme.Provider)
	assert.NotNil(t, acme.FontFaces)
	assert.Empty(t, acme.FontFaces)
}

func TestLoadFile_NormalizesEndToEnd(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "theme.json"), "theme")
	require.NoError(t, err)

	resolver := webfonts.NewThemeFileResolver("", "https://example.test/themes/mytheme/")
	faces, diags := webfonts.NewNormalizer(resolver.Resolve).Normalize(cfg)

	require.Len(t, faces, 3)
	require.Len(t, diags, 1)
	assert.Equal(t, "family 'Acme' declares a provider but no font faces", diags[0].Message)

	assert.Equal(t, []string{"font-family", "font-weight", "font-style", "font-stretch", "src", "provider"}, faces[0].Keys())
	src, _ := faces[1].Get("src")
	assert.Equal(t, []any{"https://example.test/themes/mytheme/assets/fonts/SourceSerif4Variable-Italic.ttf.woff2"}, src)
	assert.Equal(t, "google", faces[2].StringValue("provider"))
}

func TestLoadFile_OriginGroupedYAML(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "global-styles.yaml"), "theme")
	require.NoError(t, err)
	require.Len(t, cfg.Origins, 2)

	assert.Equal(t, "default", cfg.Origins[0].Name)
	assert.Equal(t, "default-sans", cfg.Origins[0].Families[0].Slug)
	assert.Equal(t, "custom", cfg.Origins[1].Name)
	require.Len(t, cfg.Origins[1].Families, 1)
	assert.Equal(t, "brand", cfg.Origins[1].Families[0].Slug)
	assert.Equal(t, "Brand", cfg.Origins[1].Families[0].FontFamily)
}

func TestLoad_ConcatenatesSourcesInOrder(t *testing.T) {
	cfg, err := Load(
		Source{Origin: "theme", Path: filepath.Join("testdata", "theme.json")},
		Source{Origin: "custom", Path: filepath.Join("testdata", "global-styles.yaml")},
	)
	require.NoError(t, err)

	var names []string
	for _, o := range cfg.Origins {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"theme", "default", "custom"}, names)
}

func TestParse_FastPaths(t *testing.T) {
	tests := map[string]string{
		"empty document":  "",
		"no typography":   `{"version": 2, "settings": {}}`,
		"no fontFamilies": `{"settings": {"typography": {"fontSizes": []}}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse([]byte(doc), "")
			require.NoError(t, err)
			assert.Zero(t, cfg.FamilyCount())
		})
	}
}

func TestParse_BareSettingsAndSlugMapping(t *testing.T) {
	doc := `
typography:
  fontFamilies:
    acme:
      fontFamily: Acme
      provider: acme-provider
    beta:
      fontFamily: Beta
`
	cfg, err := Parse([]byte(doc), "")
	require.NoError(t, err)
	require.Len(t, cfg.Origins, 1)
	assert.Equal(t, DefaultOrigin, cfg.Origins[0].Name)
	require.Len(t, cfg.Origins[0].Families, 2)
	assert.Equal(t, "acme", cfg.Origins[0].Families[0].Slug)
	assert.Nil(t, cfg.Origins[0].Families[0].FontFaces)
	assert.Equal(t, "beta", cfg.Origins[0].Families[1].Slug)
}

func TestParse_MixedMappingKeepsDeclarationOrder(t *testing.T) {
	doc := `
typography:
  fontFamilies:
    theme:
      - fontFamily: Themed
    loose:
      fontFamily: Loose
      provider: local
    custom:
      - fontFamily: Custom
    late:
      fontFamily: Late
`
	cfg, err := Parse([]byte(doc), "child")
	require.NoError(t, err)
	require.Len(t, cfg.Origins, 3)

	names := make([]string, len(cfg.Origins))
	for i, o := range cfg.Origins {
		names[i] = o.Name
	}
	assert.Equal(t, []string{"theme", "child", "custom"}, names)
	require.Len(t, cfg.Origins[1].Families, 2)
	assert.Equal(t, "loose", cfg.Origins[1].Families[0].Slug)
	assert.Equal(t, "late", cfg.Origins[1].Families[1].Slug)
}

func TestParse_NullProviderIsAbsent(t *testing.T) {
	cfg, err := Parse([]byte(`{"typography":{"fontFamilies":[{"fontFamily":"A","provider":null,"fontFaces":[{"provider":null}]}]}}`), "")
	require.NoError(t, err)
	fam := cfg.Origins[0].Families[0]
	assert.Nil(t, fam.Provider)
	require.Len(t, fam.FontFaces, 1)
	assert.False(t, fam.FontFaces[0].Declares("provider"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`[1, 2]`), "")
	assert.Error(t, err)

	_, err = Parse([]byte(`{"typography":{"fontFamilies":"nope"}}`), "")
	assert.Error(t, err)
}

func TestLoadFile_ErrorCategories(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), "theme")
	require.Error(t, err)
	assert.True(t, werrors.IsCategory(err, werrors.CategoryFileSystem))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"settings": [`), 0o600))
	_, err = LoadFile(bad, "theme")
	require.Error(t, err)
	assert.True(t, werrors.IsCategory(err, werrors.CategoryTheme))
}
