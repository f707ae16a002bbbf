package ws

import (
	"context"
	"testing"
	"time"

	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/domain/training"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub == nil {
		t.Fatal("expected non-nil hub")
	}
	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.ConnectionCount())
	}
}

func TestBroadcastTrainingEventNoConnections(t *testing.T) {
	hub := NewHub()

	// Broadcasting with no connections should not panic.
	hub.BroadcastTrainingEvent(context.Background(), training.Event{
		Type:      training.EventCompleted,
		JobID:     "j1",
		Tenant:    tenant.Key{UserID: "u1", AccountID: "a1"},
		Location:  "out/u1_a1",
		Timestamp: time.Now(),
	})
}

func TestHubRemoveNonexistent(t *testing.T) {
	hub := NewHub()

	// Removing a connection that was never added should not panic.
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := &conn{ws: nil, cancel: cancel}
	hub.remove(c)
}
