package scoring

import (
	"fmt"

	"github.com/ieltsprep/exam-service/internal/models"
)

// FeedbackTooShort is stored on essays rejected before the external
// scorer is consulted.
const FeedbackTooShort = "Answer is too short."

// writingScorer handles both writing tasks. It never computes a score
// locally: it scales the band the external scorer reported into the
// question's point range, or reports a pending outcome while that
// score has not arrived. The one local rule is the minimum length cut.
type writingScorer struct {
	cfg Config
}

func (writingScorer) Describe() string { return "writing task" }

func (writingScorer) Validate(q *models.Question) error {
	content, err := decodeContent[models.WritingTaskContent](q)
	if err != nil {
		return err
	}
	if content.Prompt == "" && q.Text == "" {
		return fmt.Errorf("writing question %d has no prompt", q.ID)
	}
	return nil
}

func (s writingScorer) Score(q *models.Question, _ *models.SubQuestion, raw any) Outcome {
	answer, ok := writingPayload(raw)
	if !ok {
		return zero()
	}

	if len(answer.Text) < s.cfg.MinEssayLength {
		return incorrect(FeedbackTooShort)
	}

	if answer.BandScore == nil {
		return Outcome{Pending: true, Feedback: answer.Feedback}
	}

	scaled := ScaleBand(*answer.BandScore, q.Points, s.cfg.BandScale)
	return Outcome{
		IsCorrect: scaled > 0,
		Score:     scaled,
		Feedback:  answer.Feedback,
	}
}

func writingPayload(raw any) (*models.WritingAnswer, bool) {
	switch v := raw.(type) {
	case models.WritingAnswer:
		return &v, true
	case *models.WritingAnswer:
		return v, true
	default:
		return nil, false
	}
}
