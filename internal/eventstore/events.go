package eventstore

import (
	"encoding/json"
	"time"

	werrors "git.home.luguber.info/inful/webfonts/internal/errors"
)

// RunStartedPayload is the payload of TypeRunStarted.
type RunStartedPayload struct {
	Sink    string   `json:"sink"`
	Sources []string `json:"sources"`
}

// FacesNormalizedPayload is the payload of TypeFacesNormalized, one per origin.
type FacesNormalizedPayload struct {
	Origin string `json:"origin"`
	Faces  int    `json:"faces"`
}

// DiagnosticPayload is the payload of TypeDiagnosticReported.
type DiagnosticPayload struct {
	Kind     string `json:"kind"`
	Origin   string `json:"origin"`
	Family   string `json:"family"`
	Provider string `json:"provider,omitempty"`
	Message  string `json:"message"`
}

// FacesRegisteredPayload is the payload of TypeFacesRegistered.
type FacesRegisteredPayload struct {
	Sink     string `json:"sink"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
}

// RunCompletedPayload is the payload of TypeRunCompleted.
type RunCompletedPayload struct {
	DurationMS int64 `json:"duration_ms"`
}

// RunFailedPayload is the payload of TypeRunFailed.
type RunFailedPayload struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

func newEvent(runID, eventType string, payload any) (*BaseEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, werrors.InternalError("failed to marshal "+eventType+" payload", err).
			WithContext("run_id", runID)
	}
	return &BaseEvent{
		EventRunID:     runID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
	}, nil
}

// NewRunStarted creates a RunStarted event.
func NewRunStarted(runID, sink string, sources []string) (*BaseEvent, error) {
	return newEvent(runID, TypeRunStarted, RunStartedPayload{Sink: sink, Sources: sources})
}

// NewFacesNormalized creates a FacesNormalized event.
func NewFacesNormalized(runID, origin string, faces int) (*BaseEvent, error) {
	return newEvent(runID, TypeFacesNormalized, FacesNormalizedPayload{Origin: origin, Faces: faces})
}

// NewDiagnosticReported creates a DiagnosticReported event.
func NewDiagnosticReported(runID string, d DiagnosticPayload) (*BaseEvent, error) {
	return newEvent(runID, TypeDiagnosticReported, d)
}

// NewFacesRegistered creates a FacesRegistered event.
func NewFacesRegistered(runID, sink string, accepted, skipped int) (*BaseEvent, error) {
	return newEvent(runID, TypeFacesRegistered, FacesRegisteredPayload{Sink: sink, Accepted: accepted, Skipped: skipped})
}

// NewRunCompleted creates a RunCompleted event.
func NewRunCompleted(runID string, duration time.Duration) (*BaseEvent, error) {
	return newEvent(runID, TypeRunCompleted, RunCompletedPayload{DurationMS: duration.Milliseconds()})
}

// NewRunFailed creates a RunFailed event.
func NewRunFailed(runID, stage string, cause error) (*BaseEvent, error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return newEvent(runID, TypeRunFailed, RunFailedPayload{Stage: stage, Error: msg})
}
