package scoring

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ieltsprep/exam-service/internal/models"
)

// unit is one gradable sub-part of a composite question: a blank, a
// statement, a match item.
type unit struct {
	ID       string
	Accepted []string
}

// unitScorer grades every composite type that decomposes into an
// ordered set of gradable units. The per-type difference is only how
// the units are decoded out of the question content.
type unitScorer struct {
	name   string
	decode func(*models.Question) ([]unit, error)
}

func (s unitScorer) Describe() string { return s.name }

func (s unitScorer) Validate(q *models.Question) error {
	units, err := s.units(q)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return fmt.Errorf("%s question %d has no gradable units", s.name, q.ID)
	}
	for _, u := range units {
		if len(u.Accepted) == 0 {
			return fmt.Errorf("unit %q has no acceptable answers", u.ID)
		}
	}
	return nil
}

func (s unitScorer) Score(q *models.Question, sub *models.SubQuestion, raw any) Outcome {
	if sub != nil {
		return scoreSubQuestion(sub, raw, nil)
	}

	units, err := s.units(q)
	if err != nil || len(units) == 0 {
		return zero()
	}

	answers, ok := unitResponses(raw)
	if !ok {
		return zero()
	}

	correct := 0
	for _, u := range units {
		if matchesAny(answers[u.ID], u.Accepted) {
			correct++
		}
	}
	return applyStrategy(q, correct, len(units))
}

// units decodes the content-defined units and falls back to the
// question's sub-question list when the content carries none.
func (s unitScorer) units(q *models.Question) ([]unit, error) {
	units, err := s.decode(q)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		for _, sq := range q.SubQuestions {
			units = append(units, unit{ID: fmt.Sprintf("s%d", sq.ID), Accepted: sq.AcceptedAnswers})
		}
	}
	return units, nil
}

// applyStrategy turns a correct-unit count into a question-level score.
func applyStrategy(q *models.Question, correct, total int) Outcome {
	if total == 0 {
		return zero()
	}
	allCorrect := correct == total
	switch q.Strategy {
	case models.StrategyPartial:
		score := math.Round(float64(correct) / float64(total) * q.Points)
		return Outcome{IsCorrect: allCorrect, Score: score}
	default: // all-or-nothing
		if allCorrect {
			return Outcome{IsCorrect: true, Score: q.Points}
		}
		return zero()
	}
}

// scoreSubQuestion awards the sub-question's own point value
// atomically. extraCheck, when non-nil, may accept a response the
// exact match rejected (AI similarity for translation types).
func scoreSubQuestion(sub *models.SubQuestion, raw any, extraCheck func(raw any) bool) Outcome {
	resp, ok := responseText(raw)
	if !ok {
		return zero()
	}
	if matchesAny(resp, sub.AcceptedAnswers) {
		return Outcome{IsCorrect: true, Score: sub.Points}
	}
	if extraCheck != nil && extraCheck(raw) {
		return Outcome{IsCorrect: true, Score: sub.Points}
	}
	return zero()
}

// ===== PAYLOAD EXTRACTION =====

func responseText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case models.TextAnswer:
		return v.Text, true
	case *models.TextAnswer:
		return v.Text, true
	case models.SelectionAnswer:
		return v.SelectedOption, true
	case *models.SelectionAnswer:
		return v.SelectedOption, true
	default:
		return "", false
	}
}

func unitResponses(raw any) (map[string]string, bool) {
	switch v := raw.(type) {
	case models.UnitAnswers:
		return v.Answers, true
	case *models.UnitAnswers:
		return v.Answers, true
	case map[string]string:
		return v, true
	default:
		return nil, false
	}
}

// ===== PER-TYPE DECODERS =====

func decodeContent[T any](q *models.Question) (*T, error) {
	var content T
	if len(q.Content) == 0 {
		return &content, nil
	}
	if err := json.Unmarshal(q.Content, &content); err != nil {
		return nil, fmt.Errorf("invalid %s content: %w", q.Type, err)
	}
	return &content, nil
}

func blanksToUnits(blanks []models.Blank) []unit {
	units := make([]unit, len(blanks))
	for i, b := range blanks {
		units[i] = unit{ID: b.ID, Accepted: b.Accepted}
	}
	return units
}

func matchesToUnits(items []models.MatchItem) []unit {
	units := make([]unit, len(items))
	for i, it := range items {
		units[i] = unit{ID: it.ID, Accepted: []string{it.CorrectOption}}
	}
	return units
}

func completionUnits(q *models.Question) ([]unit, error) {
	content, err := decodeContent[models.CompletionContent](q)
	if err != nil {
		return nil, err
	}
	return blanksToUnits(content.Blanks), nil
}

func shortAnswerUnits(q *models.Question) ([]unit, error) {
	content, err := decodeContent[models.ShortAnswerContent](q)
	if err != nil {
		return nil, err
	}
	return blanksToUnits(content.Items), nil
}

func labelingUnits(q *models.Question) ([]unit, error) {
	content, err := decodeContent[models.LabelingContent](q)
	if err != nil {
		return nil, err
	}
	return blanksToUnits(content.Labels), nil
}

func matchingUnits(q *models.Question) ([]unit, error) {
	content, err := decodeContent[models.MatchingContent](q)
	if err != nil {
		return nil, err
	}
	return matchesToUnits(content.Items), nil
}

func matchingHeadingsUnits(q *models.Question) ([]unit, error) {
	content, err := decodeContent[models.MatchingHeadingsContent](q)
	if err != nil {
		return nil, err
	}
	return matchesToUnits(content.Paragraphs), nil
}

func trueFalseNotGivenUnits(q *models.Question) ([]unit, error) {
	content, err := decodeContent[models.TrueFalseNotGivenContent](q)
	if err != nil {
		return nil, err
	}
	units := make([]unit, len(content.Statements))
	for i, st := range content.Statements {
		units[i] = unit{ID: st.ID, Accepted: []string{string(st.Verdict)}}
	}
	return units, nil
}

func pickFromListUnits(q *models.Question) ([]unit, error) {
	content, err := decodeContent[models.PickFromListContent](q)
	if err != nil {
		return nil, err
	}
	return blanksToUnits(content.Slots), nil
}
