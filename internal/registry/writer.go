package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

// Format selects the WriterRegistrar encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// WriterRegistrar prints the faces of each run to w.
type WriterRegistrar struct {
	w      io.Writer
	format Format
}

// NewWriterRegistrar returns a registrar encoding faces as format.
func NewWriterRegistrar(w io.Writer, format Format) *WriterRegistrar {
	if format == "" {
		format = FormatJSON
	}
	return &WriterRegistrar{w: w, format: format}
}

func (r *WriterRegistrar) Name() string { return "stdout" }

// Register writes faces as a single JSON array or YAML document.
func (r *WriterRegistrar) Register(_ context.Context, _ string, faces []webfonts.FontFace) (Result, error) {
	if faces == nil {
		faces = []webfonts.FontFace{}
	}
	if err := Encode(r.w, r.format, faces); err != nil {
		return Result{}, err
	}
	return Result{Accepted: len(faces)}, nil
}

func (r *WriterRegistrar) Close() error { return nil }

// Encode writes v to w in the given format.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
