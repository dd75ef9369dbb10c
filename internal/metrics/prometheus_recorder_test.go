package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("normalize", 150*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncStageResult("normalize", ResultSuccess)
	pr.AddFacesNormalized("theme", 3)
	pr.AddFacesNormalized("custom", 0)
	pr.IncDiagnostic("missing_font_faces_for_provider")
	pr.IncRegistration("sqlite", ResultSuccess)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	assert.Equal(t, 3.0, testutil.ToFloat64(pr.facesNormalized.WithLabelValues("theme")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.registrations.WithLabelValues("sqlite", "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(pr.facesNormalized), "zero additions create no series")
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncDiagnostic("x")
	pr.ObserveRunDuration(time.Second)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRegistration("stdout", ResultSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "webfonts_registrations_total"))
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
