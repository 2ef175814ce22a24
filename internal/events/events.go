// Package events delivers in-process run notifications to subscribers.
// The engine publishes one event per cycle milestone; watchers subscribe
// per run.
package events

import (
	"errors"
	"strings"
	"time"
)

// Type enumerates cycle milestones.
type Type string

const (
	TypeCycleStarted       Type = "cycle-started"
	TypeCycleCommitted     Type = "cycle-committed"
	TypeOperatorRegistered Type = "operator-registered"
	TypeCycleFailed        Type = "cycle-failed"
)

// Event captures a single run notification.
type Event struct {
	EventID    string
	Type       Type
	RunID      string
	Cycle      int
	Seed       float64
	Fitness    float64
	State      any
	OperatorID string
	Reason     string
	At         time.Time
}

// Normalize applies canonical formatting before validation.
func (e *Event) Normalize() {
	if e == nil {
		return
	}
	e.EventID = strings.TrimSpace(e.EventID)
	e.RunID = strings.TrimSpace(e.RunID)
	e.Type = Type(strings.TrimSpace(string(e.Type)))
}

// Validate enforces baseline requirements for routed events.
func (e Event) Validate() error {
	if e.EventID == "" {
		return errors.New("event id is required")
	}
	if e.Type == "" {
		return errors.New("type is required")
	}
	if e.RunID == "" {
		return errors.New("run id is required")
	}
	return nil
}

// Logger records router diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}
