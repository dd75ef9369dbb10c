package webfonts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestToKebabCase(t *testing.T) {
	tests := map[string]string{
		"fontWeight":   "font-weight",
		"src":          "src",
		"fontFamily":   "font-family",
		"unicodeRange": "unicode-range",
		"font-weight":  "font-weight",
		"Provider":     "provider",
		"fontURL":      "font-u-r-l",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToKebabCase(in), in)
		assert.Equal(t, want, ToKebabCase(want), "idempotent for %s", want)
	}
}

func TestKebabCaseKeys_Collision(t *testing.T) {
	out := KebabCaseKeys(face("fontWeight", "400", "src", "a", "font-weight", "700"))
	assert.Equal(t, []string{"font-weight", "src"}, out.Keys())
	assert.Equal(t, "700", out.StringValue("font-weight"))
}

func TestFontFace_JSONKeepsOrder(t *testing.T) {
	f := face("zeta", 1, "alpha", "a", "src", []any{"x"})

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"a","src":["x"]}`, string(data))

	var back FontFace
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"zeta", "alpha", "src"}, back.Keys())
	assert.True(t, f.Equal(back))
}

func TestFontFace_UnmarshalRejectsNonObject(t *testing.T) {
	var f FontFace
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &f))
}

func TestFontFace_YAMLKeepsOrder(t *testing.T) {
	f := face("font-weight", "400", "font-family", "Acme")

	data, err := yaml.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, "font-weight: \"400\"\nfont-family: Acme\n", string(data))
}
