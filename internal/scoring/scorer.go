package scoring

import (
	"github.com/ieltsprep/exam-service/internal/models"
)

// Outcome is what scoring a single submission yields. Pending marks
// AI-scored answers whose external score has not arrived yet, which
// callers must keep distinct from a score of zero.
type Outcome struct {
	IsCorrect bool    `json:"is_correct"`
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback,omitempty"`
	Pending   bool    `json:"pending,omitempty"`
}

// Scorer grades one question type. Implementations never panic on
// malformed content or payloads; they degrade to a zero Outcome so the
// caller can render an explicit invalid-question state.
type Scorer interface {
	Score(q *models.Question, sub *models.SubQuestion, raw any) Outcome
	Validate(q *models.Question) error
	Describe() string
}

// Config carries the scoring policy knobs.
type Config struct {
	// SimilarityThreshold accepts a translation / word-form unit as
	// correct when the AI similarity score reaches it.
	SimilarityThreshold float64

	// MinEssayLength is the character count under which a writing task
	// is auto-scored zero without consulting the external scorer.
	MinEssayLength int

	// BandScale is the top of the external scorer's band range.
	BandScale float64
}

// DefaultConfig matches the policy the exam player ships with.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.8,
		MinEssayLength:      100,
		BandScale:           9,
	}
}

func zero() Outcome {
	return Outcome{}
}

func incorrect(feedback string) Outcome {
	return Outcome{Feedback: feedback}
}
