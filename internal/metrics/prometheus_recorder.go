package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	runDuration     prom.Histogram
	stageResults    *prom.CounterVec
	facesNormalized *prom.CounterVec
	diagnostics     *prom.CounterVec
	registrations   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "webfonts",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual registration stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "webfonts",
			Name:      "run_duration_seconds",
			Help:      "Total registration run duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "webfonts",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		facesNormalized: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "webfonts",
			Name:      "faces_normalized_total",
			Help:      "Font faces produced by the normalizer, by settings origin",
		}, []string{"origin"}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "webfonts",
			Name:      "diagnostics_total",
			Help:      "Theme settings diagnostics by kind",
		}, []string{"kind"}),
		registrations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "webfonts",
			Name:      "registrations_total",
			Help:      "Registration attempts by sink and result",
		}, []string{"sink", "result"}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.facesNormalized, pr.diagnostics, pr.registrations)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) AddFacesNormalized(origin string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.facesNormalized.WithLabelValues(origin).Add(float64(n))
}

func (p *PrometheusRecorder) IncDiagnostic(kind string) {
	if p == nil {
		return
	}
	p.diagnostics.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncRegistration(sink string, result ResultLabel) {
	if p == nil {
		return
	}
	p.registrations.WithLabelValues(sink, string(result)).Inc()
}
