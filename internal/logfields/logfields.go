package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyOrigin      = "origin"
	KeyFontFamily  = "font_family"
	KeyProvider    = "provider"
	KeyFaces       = "faces"
	KeyDiagnostics = "diagnostics"
	KeySink        = "sink"
	KeyPath        = "path"
	KeyURL         = "url"
	KeySubject     = "subject"
	KeyJobName     = "job_name"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Origin(o string) slog.Attr       { return slog.String(KeyOrigin, o) }
func FontFamily(f string) slog.Attr   { return slog.String(KeyFontFamily, f) }
func Provider(p string) slog.Attr     { return slog.String(KeyProvider, p) }
func Faces(n int) slog.Attr           { return slog.Int(KeyFaces, n) }
func Diagnostics(n int) slog.Attr     { return slog.Int(KeyDiagnostics, n) }
func Sink(s string) slog.Attr         { return slog.String(KeySink, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func JobName(n string) slog.Attr      { return slog.String(KeyJobName, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
