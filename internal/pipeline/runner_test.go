package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webfonts/internal/config"
	werrors "git.home.luguber.info/inful/webfonts/internal/errors"
	"git.home.luguber.info/inful/webfonts/internal/eventstore"
	"git.home.luguber.info/inful/webfonts/internal/metrics"
	"git.home.luguber.info/inful/webfonts/internal/registry"
	"git.home.luguber.info/inful/webfonts/internal/retry"
	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

const themeJSON = `{
	"version": 2,
	"settings": {
		"typography": {
			"fontFamilies": [
				{
					"slug": "serif",
					"fontFamily": "Serif Pro",
					"provider": "local",
					"fontFaces": [
						{"fontFamily": "Serif Pro", "fontWeight": "400", "src": "file:./assets/fonts/serif.woff2"},
						{"fontFamily": "Serif Pro", "fontWeight": "700", "src": ["file:./assets/fonts/serif-bold.woff2"]}
					]
				},
				{"slug": "broken", "fontFamily": "Broken", "provider": "acme", "fontFaces": []}
			]
		}
	}
}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "theme.json"), []byte(themeJSON), 0o600))
	return &config.Config{
		Version: config.CurrentVersion,
		Theme: config.ThemeConfig{
			Directory: dir,
			BaseURI:   "https://example.test/themes/acme/",
			Settings:  []config.SettingsSource{{Origin: "theme", File: "theme.json"}},
		},
		Normalizer: config.NormalizerConfig{Workers: 2},
	}
}

type memRegistrar struct {
	runs     []string
	faces    []webfonts.FontFace
	err      error
	failures int // leading calls that fail with err
	calls    int
}

func (m *memRegistrar) Name() string { return "memory" }
func (m *memRegistrar) Register(_ context.Context, runID string, faces []webfonts.FontFace) (registry.Result, error) {
	m.calls++
	if m.err != nil && (m.failures == 0 || m.calls <= m.failures) {
		return registry.Result{}, m.err
	}
	m.runs = append(m.runs, runID)
	m.faces = faces
	return registry.Result{Accepted: len(faces)}, nil
}
func (m *memRegistrar) Close() error { return nil }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "run-" + strconv.Itoa(n)
	}
}

func TestRunner_Run(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := &memRegistrar{}
	r := NewRunner(testConfig(t), sink,
		WithRecorder(metrics.NewPrometheusRecorder(reg)),
		WithRunIDFunc(sequentialIDs()))

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, report.Faces, 2)
	src0, _ := report.Faces[0].Get("src")
	assert.Equal(t, []any{"https://example.test/themes/acme/assets/fonts/serif.woff2"}, src0)
	assert.Equal(t, "700", report.Faces[1].StringValue("font-weight"))
	assert.Equal(t, "local", report.Faces[1].StringValue("provider"))

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, webfonts.MissingFontFacesForProvider, report.Diagnostics[0].Kind)
	assert.Equal(t, "Broken", report.Diagnostics[0].Family)

	assert.Equal(t, []string{"run-1"}, sink.runs)
	assert.Equal(t, report.Faces, sink.faces)
	assert.Equal(t, 2, report.Result.Accepted)
	assert.Same(t, report, r.LastReport())

	assert.InDelta(t, 2, sumCounter(t, reg, "webfonts_faces_normalized_total"), 0)
	assert.InDelta(t, 1, sumCounter(t, reg, "webfonts_diagnostics_total"), 0)
	assert.InDelta(t, 1, sumCounter(t, reg, "webfonts_registrations_total"), 0)
}

func sumCounter(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range f.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRunner_NormalizeDoesNotRegister(t *testing.T) {
	sink := &memRegistrar{}
	r := NewRunner(testConfig(t), sink)

	report, err := r.Normalize(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Faces, 2)
	assert.Empty(t, sink.runs)
	assert.NotEmpty(t, report.RunID)
}

func TestRunner_Errors(t *testing.T) {
	_, err := NewRunner(testConfig(t), nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoRegistrar)

	cfg := testConfig(t)
	cfg.Theme.Settings = []config.SettingsSource{{Origin: "theme", File: "missing.json"}}
	report, err := NewRunner(cfg, &memRegistrar{}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, werrors.IsCategory(err, werrors.CategoryFileSystem))
	assert.Equal(t, err, report.Err)

	sinkErr := werrors.SinkUnavailable("memory", errors.New("down"))
	_, err = NewRunner(testConfig(t), &memRegistrar{err: sinkErr}).Run(context.Background())
	assert.ErrorIs(t, err, sinkErr)
}

func TestRunner_ParentThemeFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Theme.ParentBaseURI = "https://example.test/themes/parent"
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Theme.Directory, "assets", "fonts"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Theme.Directory, "assets", "fonts", "serif.woff2"), nil, 0o600))

	report, err := NewRunner(cfg, nil).Normalize(context.Background())
	require.NoError(t, err)
	src0, _ := report.Faces[0].Get("src")
	assert.Equal(t, []any{"https://example.test/themes/acme/assets/fonts/serif.woff2"}, src0)
	src1, _ := report.Faces[1].Get("src")
	assert.Equal(t, []any{"https://example.test/themes/parent/assets/fonts/serif-bold.woff2"}, src1)
}

func TestRunner_RetriesTransientSinkFailures(t *testing.T) {
	sink := &memRegistrar{err: werrors.SinkUnavailable("memory", errors.New("down")), failures: 2}
	policy := retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	r := NewRunner(testConfig(t), sink, WithRetryPolicy(policy))

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sink.calls)
	assert.Equal(t, 2, report.Result.Accepted)
}

func TestRunner_DoesNotRetryPermanentFailures(t *testing.T) {
	sink := &memRegistrar{err: werrors.RegistrationFailed("memory", errors.New("rejected"))}
	policy := retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)

	_, err := NewRunner(testConfig(t), sink, WithRetryPolicy(policy)).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, sink.calls)
}

func TestRunner_RecordsRunHistory(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ids := sequentialIDs()
	ctx := context.Background()

	ok := NewRunner(testConfig(t), &memRegistrar{}, WithEventStore(store), WithRunIDFunc(ids))
	_, err = ok.Run(ctx)
	require.NoError(t, err)
	_, err = ok.Normalize(ctx)
	require.NoError(t, err)

	failing := NewRunner(testConfig(t), &memRegistrar{err: errors.New("rejected")}, WithEventStore(store), WithRunIDFunc(ids))
	_, err = failing.Run(ctx)
	require.Error(t, err)

	projection := eventstore.NewRunHistoryProjection(store, 10)
	require.NoError(t, projection.Rebuild(ctx))

	first, found := projection.GetRun("run-1")
	require.True(t, found)
	assert.Equal(t, eventstore.RunStatusCompleted, first.Status)
	assert.Equal(t, "memory", first.Sink)
	assert.Equal(t, map[string]int{"theme": 2}, first.Faces)
	assert.Equal(t, 1, first.Diagnostics)
	assert.Equal(t, 2, first.Accepted)

	_, found = projection.GetRun("run-2")
	assert.False(t, found, "normalize-only runs are not recorded")

	events, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, eventstore.TypeRunStarted, events[0].Type())
	assert.Equal(t, eventstore.TypeRunCompleted, events[len(events)-1].Type())

	failed, found := projection.GetRun("run-3")
	require.True(t, found)
	assert.Equal(t, eventstore.RunStatusFailed, failed.Status)
	assert.Equal(t, StageRegister, failed.ErrorStage)
	assert.Equal(t, "rejected", failed.ErrorMessage)
}
