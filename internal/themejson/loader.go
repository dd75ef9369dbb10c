// Package themejson reads font family declarations from theme settings
// files (theme.json and merged global settings) without losing declaration
// order.
package themejson

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	werrors "git.home.luguber.info/inful/webfonts/internal/errors"
	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

// DefaultOrigin is used for settings files that list families without
// grouping them by origin.
const DefaultOrigin = "theme"

// Source is one settings file and the origin its ungrouped families belong to.
type Source struct {
	Origin string
	Path   string
}

// Load reads every source in order and concatenates their origins.
func Load(sources ...Source) (*webfonts.ThemeTypographyConfig, error) {
	out := &webfonts.ThemeTypographyConfig{}
	for _, src := range sources {
		cfg, err := LoadFile(src.Path, src.Origin)
		if err != nil {
			return nil, err
		}
		out.Origins = append(out.Origins, cfg.Origins...)
	}
	return out, nil
}

// LoadFile reads a single settings file.
func LoadFile(path, origin string) (*webfonts.ThemeTypographyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, werrors.ThemeSettingsNotFound(path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data = untab(data)
	}
	cfg, err := Parse(data, origin)
	if err != nil {
		return nil, werrors.ThemeSettingsInvalid(path, err)
	}
	return cfg, nil
}

// untab replaces tab indentation, which YAML rejects. In valid JSON every raw
// tab is whitespace since tabs inside strings must be escaped.
func untab(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("\t"), []byte("  "))
}

// Parse decodes settings from JSON or YAML.
//
// The typography block is looked up under "settings" when present, otherwise
// at the document root. settings.typography.fontFamilies may be a list (all
// families belong to origin) or a mapping of origin to families.
func Parse(data []byte, origin string) (*webfonts.ThemeTypographyConfig, error) {
	if origin == "" {
		origin = DefaultOrigin
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	cfg := &webfonts.ThemeTypographyConfig{}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cfg, nil
	}

	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("settings root must be a mapping, got %s", kindName(root))
	}
	if settings := lookup(root, "settings"); settings != nil {
		root = settings
	}
	typography := lookup(root, "typography")
	if typography == nil {
		return cfg, nil
	}
	families := lookup(typography, "fontFamilies")
	if families == nil {
		return cfg, nil
	}

	switch families.Kind {
	case yaml.SequenceNode:
		cfg.Origins = append(cfg.Origins, webfonts.Origin{Name: origin, Families: decodeFamilySequence(families)})
	case yaml.MappingNode:
		cfg.Origins = decodeFamilyMapping(families, origin)
	default:
		return nil, fmt.Errorf("typography.fontFamilies must be a list or mapping, got %s", kindName(families))
	}
	return cfg, nil
}

// decodeFamilyMapping handles both origin-grouped families and a flat
// slug-to-family mapping. Flat entries are collected into origin, placed
// where the first of them appears.
func decodeFamilyMapping(node *yaml.Node, origin string) []webfonts.Origin {
	var origins []webfonts.Origin
	flat := -1
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := deref(node.Content[i+1])
		switch {
		case value.Kind == yaml.SequenceNode:
			origins = append(origins, webfonts.Origin{Name: key, Families: decodeFamilySequence(value)})
		case value.Kind == yaml.MappingNode && looksLikeFamily(value):
			if flat < 0 {
				flat = len(origins)
				origins = append(origins, webfonts.Origin{Name: origin})
			}
			origins[flat].Families = append(origins[flat].Families, decodeFamily(key, value))
		case value.Kind == yaml.MappingNode:
			var fams []webfonts.FontFamilyEntry
			for j := 0; j+1 < len(value.Content); j += 2 {
				if fam := deref(value.Content[j+1]); fam.Kind == yaml.MappingNode {
					fams = append(fams, decodeFamily(value.Content[j].Value, fam))
				}
			}
			origins = append(origins, webfonts.Origin{Name: key, Families: fams})
		}
	}
	return origins
}

func looksLikeFamily(node *yaml.Node) bool {
	for _, k := range []string{webfonts.KeyFontFamily, "fontFaces", webfonts.KeyProvider, "slug"} {
		if lookup(node, k) != nil {
			return true
		}
	}
	return false
}

func decodeFamilySequence(node *yaml.Node) []webfonts.FontFamilyEntry {
	fams := make([]webfonts.FontFamilyEntry, 0, len(node.Content))
	for _, item := range node.Content {
		item = deref(item)
		if item.Kind != yaml.MappingNode {
			continue
		}
		fams = append(fams, decodeFamily("", item))
	}
	return fams
}

func decodeFamily(slug string, node *yaml.Node) webfonts.FontFamilyEntry {
	entry := webfonts.FontFamilyEntry{Slug: slug}
	if s := lookup(node, "slug"); s != nil && s.Kind == yaml.ScalarNode && entry.Slug == "" {
		entry.Slug = s.Value
	}
	if name := lookup(node, webfonts.KeyFontFamily); name != nil && name.Kind == yaml.ScalarNode && !isNull(name) {
		entry.FontFamily = name.Value
	}
	if p := lookup(node, webfonts.KeyProvider); p != nil && !isNull(p) {
		provider := p.Value
		entry.Provider = &provider
	}
	if faces := lookup(node, "fontFaces"); faces != nil && !isNull(faces) {
		entry.FontFaces = decodeFaces(faces)
	}
	return entry
}

// decodeFaces returns a non-nil slice for a declared fontFaces key. A single
// mapping is treated as a one-face list.
func decodeFaces(node *yaml.Node) []webfonts.FontFace {
	faces := []webfonts.FontFace{}
	switch node.Kind {
	case yaml.MappingNode:
		faces = append(faces, decodeFace(node))
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item = deref(item); item.Kind == yaml.MappingNode {
				faces = append(faces, decodeFace(item))
			}
		}
	}
	return faces
}

func decodeFace(node *yaml.Node) webfonts.FontFace {
	var face webfonts.FontFace
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			value = node.Content[i+1].Value
		}
		face.Set(node.Content[i].Value, value)
	}
	return face
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return deref(node.Content[i+1])
		}
	}
	return nil
}

func deref(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
