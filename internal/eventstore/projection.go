package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunSummary is a read model of one registration run.
type RunSummary struct {
	RunID        string         `json:"run_id"`
	Status       string         `json:"status"`
	Sink         string         `json:"sink,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	Duration     time.Duration  `json:"duration,omitempty"`
	Faces        map[string]int `json:"faces,omitempty"` // per origin
	Diagnostics  int            `json:"diagnostics"`
	Accepted     int            `json:"accepted"`
	Skipped      int            `json:"skipped"`
	ErrorStage   string         `json:"error_stage,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// TotalFaces sums normalized faces across origins.
func (s *RunSummary) TotalFaces() int {
	n := 0
	for _, c := range s.Faces {
		n += c
	}
	return n
}

// RunHistoryProjection maintains an in-memory view of run history,
// reconstructed from events stored in the event store.
type RunHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	runs     map[string]*RunSummary // runID -> summary
	history  []*RunSummary          // finished runs, newest first
	maxSize  int
	lastSync time.Time
}

// NewRunHistoryProjection creates a new projection backed by the given store.
func NewRunHistoryProjection(store Store, maxHistorySize int) *RunHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &RunHistoryProjection{
		store:   store,
		runs:    make(map[string]*RunSummary),
		history: make([]*RunSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *RunHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.runs = make(map[string]*RunSummary)
	p.history = make([]*RunSummary, 0, p.maxSize)
	for _, event := range events {
		p.applyEventLocked(event)
	}

	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneRunsLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *RunHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *RunHistoryProjection) applyEventLocked(event Event) {
	runID := event.RunID()
	if runID == "" {
		return
	}

	summary, exists := p.runs[runID]
	if !exists {
		summary = &RunSummary{
			RunID:     runID,
			Status:    RunStatusRunning,
			StartedAt: event.Timestamp(),
			Faces:     make(map[string]int),
		}
		p.runs[runID] = summary
	}

	switch event.Type() {
	case TypeRunStarted:
		summary.StartedAt = event.Timestamp()
		var payload RunStartedPayload
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Sink = payload.Sink
		}

	case TypeFacesNormalized:
		var payload FacesNormalizedPayload
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Faces[payload.Origin] += payload.Faces
		}

	case TypeDiagnosticReported:
		summary.Diagnostics++

	case TypeFacesRegistered:
		var payload FacesRegisteredPayload
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Accepted = payload.Accepted
			summary.Skipped = payload.Skipped
		}

	case TypeRunCompleted:
		p.finishLocked(summary, event.Timestamp(), RunStatusCompleted)

	case TypeRunFailed:
		var payload RunFailedPayload
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.ErrorStage = payload.Stage
			summary.ErrorMessage = payload.Error
		}
		p.finishLocked(summary, event.Timestamp(), RunStatusFailed)
	}
}

func (p *RunHistoryProjection) finishLocked(summary *RunSummary, at time.Time, status string) {
	summary.CompletedAt = &at
	summary.Duration = at.Sub(summary.StartedAt)
	summary.Status = status

	for _, h := range p.history {
		if h.RunID == summary.RunID {
			return
		}
	}
	p.history = append([]*RunSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneRunsLocked()
}

// pruneRunsLocked drops finished runs that fell out of the bounded history.
func (p *RunHistoryProjection) pruneRunsLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.RunID] = struct{}{}
	}
	for id, summary := range p.runs {
		if summary.Status == RunStatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.runs, id)
		}
	}
}

// GetHistory returns finished runs, newest first.
func (p *RunHistoryProjection) GetHistory() []*RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*RunSummary, len(p.history))
	copy(result, p.history)
	return result
}

// GetRun returns a copy of the summary for a specific run.
func (p *RunHistoryProjection) GetRun(runID string) (*RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, exists := p.runs[runID]
	if !exists {
		return nil, false
	}
	cp := *summary
	return &cp, true
}

// LastSyncTime returns when the projection was last synchronized.
func (p *RunHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
