// Package example defines the draft/final training pair record.
package example

import (
	"time"

	"github.com/toneforge/toneforge/internal/domain/tenant"
)

// Pair is one recorded draft and its human-edited final version.
// Pairs are immutable once appended; retention is an external concern.
type Pair struct {
	Draft     string     `json:"draft"`
	Final     string     `json:"final"`
	Tenant    tenant.Key `json:"tenant"`
	Timestamp time.Time  `json:"timestamp"`
}
