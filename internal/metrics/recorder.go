package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for registration runs. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	AddFacesNormalized(origin string, n int)
	IncDiagnostic(kind string)
	IncRegistration(sink string, result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) AddFacesNormalized(string, int)             {}
func (NoopRecorder) IncDiagnostic(string)                       {}
func (NoopRecorder) IncRegistration(string, ResultLabel)        {}
