// Package testutil provides shared helpers for package tests: an in-memory
// database, message seeding, and a recording notification sink.
package testutil

import (
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wachat/wachat-backend/models"
)

// SetupTestDB opens an in-memory sqlite database and migrates the message
// schema. Each call returns an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Message{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// SeedMessage stores a message, filling in a sent status and a current
// timestamp when the caller leaves them zero.
func SeedMessage(t *testing.T, db *gorm.DB, msg models.Message) models.Message {
	t.Helper()

	if msg.Status == "" {
		msg.Status = models.StatusSent
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("Failed to seed message: %v", err)
	}
	return msg
}

// RecordedEvent is one event captured by RecordingNotifier.
type RecordedEvent struct {
	Event   string
	Message *models.Message
}

// RecordingNotifier implements realtime.Notifier and records every emitted
// event for assertions.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// Emit records the event.
func (n *RecordingNotifier) Emit(event string, msg *models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, RecordedEvent{Event: event, Message: msg})
}

// Events returns a copy of everything emitted so far.
func (n *RecordingNotifier) Events() []RecordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]RecordedEvent(nil), n.events...)
}
