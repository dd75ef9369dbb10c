// Package pipeline runs one registration: load theme settings, normalize
// font faces, hand them to a registrar and record the outcome.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/webfonts/internal/config"
	werrors "git.home.luguber.info/inful/webfonts/internal/errors"
	"git.home.luguber.info/inful/webfonts/internal/eventstore"
	"git.home.luguber.info/inful/webfonts/internal/logfields"
	"git.home.luguber.info/inful/webfonts/internal/metrics"
	"git.home.luguber.info/inful/webfonts/internal/observability"
	"git.home.luguber.info/inful/webfonts/internal/registry"
	"git.home.luguber.info/inful/webfonts/internal/retry"
	"git.home.luguber.info/inful/webfonts/internal/themejson"
	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

// Stage names used for logging and metrics.
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageRegister  = "register"
)

// ErrNoRegistrar is returned by Run when the runner was built without a sink.
var ErrNoRegistrar = errors.New("pipeline: no registrar configured")

// Report describes one run.
type Report struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Faces       []webfonts.FontFace
	Diagnostics []webfonts.Diagnostic
	Result      registry.Result
	Err         error
	FailedStage string
}

// Runner executes registration runs. Runs are serialized.
type Runner struct {
	sources   []themejson.Source
	resolve   webfonts.BaseURIResolver
	workers   int
	registrar registry.Registrar
	recorder  metrics.Recorder
	policy    retry.Policy
	events    eventstore.Store
	newRunID  func() string
	quiet     bool

	mu   sync.Mutex
	last *Report
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder sets the metrics recorder. The default records nothing.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithRetryPolicy overrides the sink retry policy taken from configuration.
func WithRetryPolicy(p retry.Policy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithEventStore records the events of every registration run in store.
func WithEventStore(store eventstore.Store) Option {
	return func(r *Runner) { r.events = store }
}

// WithRunIDFunc replaces the UUID run ID generator.
func WithRunIDFunc(fn func() string) Option {
	return func(r *Runner) { r.newRunID = fn }
}

// WithoutDiagnosticLog stops the runner from logging diagnostics. Callers
// that print Report.Diagnostics themselves use it.
func WithoutDiagnosticLog() Option {
	return func(r *Runner) { r.quiet = true }
}

// NewRunner builds a runner from configuration. registrar may be nil for
// runners that only normalize.
func NewRunner(cfg *config.Config, registrar registry.Registrar, opts ...Option) *Runner {
	resolver := webfonts.NewThemeFileResolver(cfg.Theme.Directory, cfg.Theme.BaseURI)
	if cfg.Theme.ParentBaseURI != "" {
		resolver.WithParent(cfg.Theme.ParentBaseURI)
	}

	paths := cfg.SettingsPaths()
	sources := make([]themejson.Source, len(paths))
	for i, s := range paths {
		sources[i] = themejson.Source{Origin: s.Origin, Path: s.File}
	}

	r := &Runner{
		sources:   sources,
		resolve:   resolver.Resolve,
		workers:   cfg.Normalizer.Workers,
		registrar: registrar,
		recorder:  metrics.NoopRecorder{},
		policy:    retry.FromConfig(cfg),
		newRunID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalize loads the settings files and returns the normalized faces
// without registering them.
func (r *Runner) Normalize(ctx context.Context) (*Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := r.begin()
	ctx = observability.WithRunID(ctx, report.RunID)
	err := r.normalize(ctx, report, false)
	return r.finish(ctx, report, err, false)
}

// Run performs a full registration.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.registrar == nil {
		return nil, ErrNoRegistrar
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	report := r.begin()
	ctx = observability.WithSink(observability.WithRunID(ctx, report.RunID), r.registrar.Name())
	observability.InfoContext(ctx, "Registration run started")
	r.emit(ctx, true, func() (*eventstore.BaseEvent, error) {
		paths := make([]string, len(r.sources))
		for i, s := range r.sources {
			paths[i] = s.Path
		}
		return eventstore.NewRunStarted(report.RunID, r.registrar.Name(), paths)
	})

	err := r.normalize(ctx, report, true)
	if err == nil {
		err = r.register(ctx, report)
	}
	return r.finish(ctx, report, err, true)
}

// LastReport returns the report of the most recent run, or nil.
func (r *Runner) LastReport() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Runner) begin() *Report {
	return &Report{RunID: r.newRunID(), StartedAt: time.Now()}
}

// emit appends an event when recording is on. Failures are logged, never
// returned: history must not fail a registration.
func (r *Runner) emit(ctx context.Context, record bool, mk func() (*eventstore.BaseEvent, error)) {
	if !record || r.events == nil {
		return
	}
	event, err := mk()
	if err == nil {
		err = r.events.Append(ctx, event)
	}
	if err != nil {
		observability.WarnContext(ctx, "Failed to record run event", logfields.Error(err))
	}
}

func (r *Runner) finish(ctx context.Context, report *Report, err error, record bool) (*Report, error) {
	report.Duration = time.Since(report.StartedAt)
	report.Err = err
	r.recorder.ObserveRunDuration(report.Duration)
	r.last = report

	// Record the outcome even when the run context was cancelled.
	recordCtx := context.WithoutCancel(ctx)
	if err != nil {
		r.emit(recordCtx, record, func() (*eventstore.BaseEvent, error) {
			return eventstore.NewRunFailed(report.RunID, report.FailedStage, err)
		})
	} else {
		r.emit(recordCtx, record, func() (*eventstore.BaseEvent, error) {
			return eventstore.NewRunCompleted(report.RunID, report.Duration)
		})
	}

	if err != nil {
		observability.ErrorContext(ctx, "Run failed", logfields.Error(err))
		return report, err
	}
	observability.InfoContext(ctx, "Run completed",
		logfields.Faces(len(report.Faces)),
		logfields.Diagnostics(len(report.Diagnostics)),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report, nil
}

func (r *Runner) normalize(ctx context.Context, report *Report, record bool) error {
	loadCtx, span := observability.StartStage(ctx, StageLoad, r.recorder)
	settings, err := themejson.Load(r.sources...)
	span.End(err)
	if err != nil {
		report.FailedStage = StageLoad
		return err
	}
	observability.DebugContext(loadCtx, "Theme settings loaded",
		slog.Int("origins", len(settings.Origins)), slog.Int("families", settings.FamilyCount()))

	normCtx, span := observability.StartStage(ctx, StageNormalize, r.recorder)
	for _, origin := range settings.Origins {
		if err := normCtx.Err(); err != nil {
			span.End(err)
			report.FailedStage = StageNormalize
			return err
		}
		n := webfonts.NewNormalizer(r.resolve,
			webfonts.WithWorkers(r.workers),
			webfonts.WithDiagnosticSink(func(d webfonts.Diagnostic) {
				span.Warn()
				r.recorder.IncDiagnostic(string(d.Kind))
				if !r.quiet {
					observability.WarnContext(normCtx, d.Message,
						logfields.Origin(d.Origin),
						logfields.FontFamily(d.Family),
						logfields.Provider(d.Provider))
				}
				r.emit(normCtx, record, func() (*eventstore.BaseEvent, error) {
					return eventstore.NewDiagnosticReported(report.RunID, eventstore.DiagnosticPayload{
						Kind: string(d.Kind), Origin: d.Origin, Family: d.Family, Provider: d.Provider, Message: d.Message,
					})
				})
			}))
		faces, diags := n.Normalize(&webfonts.ThemeTypographyConfig{Origins: []webfonts.Origin{origin}})
		r.recorder.AddFacesNormalized(origin.Name, len(faces))
		r.emit(normCtx, record, func() (*eventstore.BaseEvent, error) {
			return eventstore.NewFacesNormalized(report.RunID, origin.Name, len(faces))
		})
		report.Faces = append(report.Faces, faces...)
		report.Diagnostics = append(report.Diagnostics, diags...)
	}
	span.End(nil)
	return nil
}

func (r *Runner) register(ctx context.Context, report *Report) error {
	ctx, span := observability.StartStage(ctx, StageRegister, r.recorder)
	name := r.registrar.Name()
	err := r.policy.Do(ctx, werrors.IsRetryable, func(attempt int) error {
		if attempt > 0 {
			observability.WarnContext(ctx, "Retrying registration", slog.Int("attempt", attempt))
		}
		res, err := r.registrar.Register(ctx, report.RunID, report.Faces)
		report.Result = res
		if err != nil {
			r.recorder.IncRegistration(name, metrics.ResultFailed)
		}
		return err
	})
	span.End(err)
	if err != nil {
		report.FailedStage = StageRegister
		return err
	}
	res := report.Result
	r.emit(ctx, true, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewFacesRegistered(report.RunID, name, res.Accepted, res.Skipped)
	})
	result := metrics.ResultSuccess
	if res.Skipped > 0 {
		result = metrics.ResultWarning
	}
	r.recorder.IncRegistration(name, result)
	observability.InfoContext(ctx, "Faces registered",
		logfields.Faces(res.Accepted), slog.Int("skipped", res.Skipped))
	return nil
}
