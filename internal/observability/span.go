package observability

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/webfonts/internal/logfields"
	"git.home.luguber.info/inful/webfonts/internal/metrics"
)

// StageSpan times one stage of a registration run.
type StageSpan struct {
	ctx      context.Context
	name     string
	start    time.Time
	recorder metrics.Recorder
	warned   bool
	now      func() time.Time
}

// StartStage begins a stage span. The returned context carries the stage
// name for logging.
func StartStage(ctx context.Context, stage string, recorder metrics.Recorder) (context.Context, *StageSpan) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	ctx = WithStage(ctx, stage)
	span := &StageSpan{ctx: ctx, name: stage, start: time.Now(), recorder: recorder, now: time.Now}
	DebugContext(ctx, "Stage started")
	return ctx, span
}

// Warn marks the stage as finished with warnings.
func (s *StageSpan) Warn() { s.warned = true }

// End records the stage duration and result. err takes precedence over Warn.
func (s *StageSpan) End(err error) time.Duration {
	d := s.now().Sub(s.start)
	result := metrics.ResultSuccess
	switch {
	case err != nil:
		result = metrics.ResultFailed
	case s.warned:
		result = metrics.ResultWarning
	}
	s.recorder.ObserveStageDuration(s.name, d)
	s.recorder.IncStageResult(s.name, result)

	attrs := []slog.Attr{logfields.DurationMS(float64(d.Microseconds()) / 1000), slog.String("result", string(result))}
	if err != nil {
		ErrorContext(s.ctx, "Stage failed", append(attrs, logfields.Error(err))...)
	} else {
		DebugContext(s.ctx, "Stage ended", attrs...)
	}
	return d
}
