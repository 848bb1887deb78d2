package models

import "time"

// TestProgress is the mutable state of one exam attempt. It is owned
// exclusively by the session state machine; everything else reads it
// through derived views.
type TestProgress struct {
	TestID uint `json:"test_id"`

	// Token identifies this attempt. Async results carry it back so a
	// response that outlives its session is dropped instead of merged.
	Token string `json:"token"`

	CurrentSection  int `json:"current_section"`
	CurrentQuestion int `json:"current_question"`

	TimeRemaining int  `json:"time_remaining"` // seconds
	Completed     bool `json:"completed"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Score float64 `json:"score"` // final aggregate, set by Complete

	// Answers is keyed by AnswerKey(questionID, subQuestionID).
	Answers map[string]*Answer `json:"answers"`
}
