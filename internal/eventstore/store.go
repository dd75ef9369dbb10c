// Package eventstore records registration runs as an append-only event log
// and projects it into a run history.
package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, event Event) error

	// GetByRunID retrieves all events for a specific run.
	GetByRunID(ctx context.Context, runID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
