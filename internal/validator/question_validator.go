package validator

import (
	"fmt"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/registry"
)

// QuestionValidator checks a question's content against the scorer
// registered for its type, so authoring rejects what scoring could not
// grade.
type QuestionValidator struct {
	registry *registry.Registry
}

func NewQuestionValidator(reg *registry.Registry) *QuestionValidator {
	return &QuestionValidator{registry: reg}
}

// ValidateQuestion validates a complete question object.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) error {
	if q.Text == "" {
		return fmt.Errorf("question text is required")
	}
	if q.Points <= 0 {
		return fmt.Errorf("question points must be positive")
	}
	if q.Strategy != "" && q.Strategy != models.StrategyPartial && q.Strategy != models.StrategyAllOrNothing {
		return fmt.Errorf("unknown scoring strategy %q", q.Strategy)
	}

	d, ok := v.registry.Get(q.Type)
	if !ok {
		return fmt.Errorf("unsupported question type: %s", q.Type)
	}
	if q.Strategy == models.StrategyPartial && !d.SupportsPartialScoring {
		return fmt.Errorf("%s does not support partial scoring", q.Type)
	}
	if len(q.SubQuestions) > 0 && !d.HasSubQuestions {
		return fmt.Errorf("%s does not decompose into sub-questions", q.Type)
	}

	return d.Scorer.Validate(q)
}

// ValidateBatch validates multiple questions.
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}
	for i, q := range questions {
		if err := v.ValidateQuestion(q); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}
	return nil
}

// ValidateTest validates a test and every question in it.
func (v *QuestionValidator) ValidateTest(t *models.Test) error {
	if len(t.Sections) == 0 {
		return fmt.Errorf("test must have at least one section")
	}
	for si := range t.Sections {
		sec := &t.Sections[si]
		for qi := range sec.Questions {
			if err := v.ValidateQuestion(&sec.Questions[qi]); err != nil {
				return fmt.Errorf("section %q: %w", sec.Title, err)
			}
		}
	}
	return nil
}
