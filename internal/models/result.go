package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestResult is the persisted outcome of a completed attempt. The
// per-section breakdown is derived at completion time and stored as a
// JSON snapshot alongside the summary columns.
type TestResult struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	TestID uint   `json:"test_id" gorm:"not null;index"`
	UserID string `json:"user_id" gorm:"not null;size:255;index"`
	Token  string `json:"token" gorm:"not null;size:64;uniqueIndex"`

	TotalScore       float64 `json:"total_score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	Percentage       int     `json:"percentage"`
	BandEstimate     float64 `json:"band_estimate"`

	AnsweredQuestions int `json:"answered_questions"`
	CorrectAnswers    int `json:"correct_answers"`
	IncorrectAnswers  int `json:"incorrect_answers"`

	Breakdown datatypes.JSON `json:"breakdown" gorm:"type:jsonb"` // []SectionBreakdown

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// SectionBreakdown is one section's slice of a stored TestResult.
type SectionBreakdown struct {
	SectionID  uint    `json:"section_id"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	Percentage int     `json:"percentage"`
	Answered   int     `json:"answered"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Unanswered int     `json:"unanswered"`
}

func (TestResult) TableName() string {
	return "test_results"
}
