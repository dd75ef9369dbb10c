package eventstore

import "time"

// Event types.
const (
	TypeRunStarted         = "RunStarted"
	TypeFacesNormalized    = "FacesNormalized"
	TypeDiagnosticReported = "DiagnosticReported"
	TypeFacesRegistered    = "FacesRegistered"
	TypeRunCompleted       = "RunCompleted"
	TypeRunFailed          = "RunFailed"
)

// Event represents a domain event of a registration run.
type Event interface {
	// ID returns the unique identifier for this event.
	ID() int64
	// RunID returns the run identifier this event belongs to.
	RunID() string
	// Type returns the event type name.
	Type() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
	// Payload returns the event data as bytes.
	Payload() []byte
}

// BaseEvent provides a default implementation of Event.
type BaseEvent struct {
	EventID        int64
	EventRunID     string
	EventType      string
	EventTimestamp time.Time
	EventPayload   []byte
}

func (e *BaseEvent) ID() int64            { return e.EventID }
func (e *BaseEvent) RunID() string        { return e.EventRunID }
func (e *BaseEvent) Type() string         { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte      { return e.EventPayload }
