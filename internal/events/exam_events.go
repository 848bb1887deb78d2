package events

import (
	"time"
)

// EventType represents different types of exam events
type EventType string

const (
	// Test lifecycle events
	EventTestPublished EventType = "test.published"
	EventTestArchived  EventType = "test.archived"

	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"

	// Scoring events
	EventEssayScored EventType = "scoring.essay_scored"
)

// ExamEvent is the base event structure published to the broker
type ExamEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Test lifecycle event payloads

type TestPublishedEvent struct {
	TestID    uint   `json:"test_id"`
	TestTitle string `json:"test_title"`
	Modality  string `json:"modality"`
	Duration  int    `json:"duration"` // seconds
	CreatedBy string `json:"created_by"`
}

type TestArchivedEvent struct {
	TestID     uint      `json:"test_id"`
	TestTitle  string    `json:"test_title"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Session event payloads

type SessionStartedEvent struct {
	Token     string    `json:"token"`
	TestID    uint      `json:"test_id"`
	TestTitle string    `json:"test_title"`
	UserID    string    `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  int       `json:"duration"` // seconds
}

type SessionCompletedEvent struct {
	Token            string    `json:"token"`
	TestID           uint      `json:"test_id"`
	TestTitle        string    `json:"test_title"`
	UserID           string    `json:"user_id"`
	CompletedAt      time.Time `json:"completed_at"`
	TotalScore       float64   `json:"total_score"`
	MaxPossibleScore float64   `json:"max_possible_score"`
	Percentage       float64   `json:"percentage"`
	BandEstimate     float64   `json:"band_estimate"`
	PendingCount     int       `json:"pending_count"`
}

// Scoring event payloads

type EssayScoredEvent struct {
	Token      string  `json:"token"`
	TestID     uint    `json:"test_id"`
	QuestionID uint    `json:"question_id"`
	UserID     string  `json:"user_id"`
	BandScore  float64 `json:"band_score"`
}
