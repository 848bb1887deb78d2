package scoring

import (
	"log/slog"

	"github.com/ieltsprep/exam-service/internal/models"
)

// Lookup resolves the scorer registered for a question type. A false
// return means the type is unknown; scoring then degrades to a zero
// outcome instead of failing.
type Lookup func(models.QuestionType) (Scorer, bool)

// Engine is the scoring entry point the session machine calls. It is
// stateless and safe for concurrent use.
type Engine struct {
	lookup Lookup
	logger *slog.Logger
}

func NewEngine(lookup Lookup, logger *slog.Logger) *Engine {
	return &Engine{lookup: lookup, logger: logger}
}

// Score grades one submission. Unknown or malformed questions yield
// {false, 0}; rendering the failure state is the caller's concern.
func (e *Engine) Score(q *models.Question, sub *models.SubQuestion, raw any) Outcome {
	if q == nil {
		return zero()
	}

	scorer, ok := e.lookup(q.Type)
	if !ok {
		e.logger.Warn("scoring requested for unregistered question type",
			"question_id", q.ID,
			"type", q.Type)
		return zero()
	}

	outcome := scorer.Score(q, sub, raw)

	// Clamp: score never exceeds the submission's max regardless of
	// what a scorer computed.
	max := q.Points
	if sub != nil {
		max = sub.Points
	}
	if outcome.Score > max {
		outcome.Score = max
	}
	if outcome.Score < 0 {
		outcome.Score = 0
	}
	return outcome
}

// MaxScore is the point value the submission is graded out of.
func MaxScore(q *models.Question, sub *models.SubQuestion) float64 {
	if sub != nil {
		return sub.Points
	}
	return q.Points
}
