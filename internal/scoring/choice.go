package scoring

import (
	"fmt"

	"github.com/ieltsprep/exam-service/internal/models"
)

// choiceScorer grades single-answer multiple choice: full points iff
// the selected option id is the one flagged correct.
type choiceScorer struct{}

func (choiceScorer) Describe() string { return "multiple choice" }

func (choiceScorer) Validate(q *models.Question) error {
	content, err := decodeContent[models.MultipleChoiceContent](q)
	if err != nil {
		return err
	}
	if len(content.Options) < 2 {
		return fmt.Errorf("multiple choice question %d needs at least 2 options", q.ID)
	}
	correct := 0
	for _, opt := range content.Options {
		if opt.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("multiple choice question %d must flag exactly one correct option, has %d", q.ID, correct)
	}
	return nil
}

func (choiceScorer) Score(q *models.Question, _ *models.SubQuestion, raw any) Outcome {
	content, err := decodeContent[models.MultipleChoiceContent](q)
	if err != nil || len(content.Options) == 0 {
		return zero()
	}

	selected, ok := responseText(raw)
	if !ok || selected == "" {
		return zero()
	}

	for _, opt := range content.Options {
		if opt.Correct {
			if opt.ID == selected {
				return Outcome{IsCorrect: true, Score: q.Points}
			}
			return zero()
		}
	}
	return zero() // no correct option flagged: malformed
}
