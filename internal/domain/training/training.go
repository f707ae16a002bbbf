// Package training defines training job outcomes and lifecycle events.
package training

import (
	"time"

	"github.com/toneforge/toneforge/internal/domain/tenant"
)

// TriggerStatus is the outcome of a training trigger request.
type TriggerStatus string

const (
	// StatusStarted means a new background job was scheduled.
	StatusStarted TriggerStatus = "started"
	// StatusAlreadyInFlight means a job for this tenant is still running.
	StatusAlreadyInFlight TriggerStatus = "already_in_flight"
	// StatusInsufficientData means the tenant has too few example pairs.
	StatusInsufficientData TriggerStatus = "insufficient_data"
)

// TriggerResult reports the outcome of a trigger request to the caller.
type TriggerResult struct {
	Status   TriggerStatus `json:"status"`
	JobID    string        `json:"jobId,omitempty"`
	Count    int           `json:"count"`
	Required int           `json:"required"`
}

// Event types published on the training lifecycle stream.
const (
	EventStarted   = "training.started"
	EventCompleted = "training.completed"
	EventFailed    = "training.failed"
)

// Event is one training lifecycle notification.
type Event struct {
	Type      string     `json:"type"`
	JobID     string     `json:"jobId"`
	Tenant    tenant.Key `json:"tenant"`
	Location  string     `json:"location,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
