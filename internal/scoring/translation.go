package scoring

import (
	"strconv"

	"github.com/ieltsprep/exam-service/internal/models"
)

// translationScorer grades word-form and sentence-translation units. A
// unit is correct on exact (normalized) match against the reference
// answers, or when the AI similarity score the payload carries reaches
// the configured threshold. Never a blend of the two.
type translationScorer struct {
	name string
	cfg  Config
}

func (s translationScorer) Describe() string { return s.name }

func (s translationScorer) Validate(q *models.Question) error {
	base := unitScorer{name: s.name, decode: func(q *models.Question) ([]unit, error) { return nil, nil }}
	return base.Validate(q)
}

func (s translationScorer) Score(q *models.Question, sub *models.SubQuestion, raw any) Outcome {
	if sub != nil {
		return scoreSubQuestion(sub, raw, s.similarityAccepts)
	}

	// Whole-question submission: each sub-question is a unit. Only the
	// exact-match path applies here; similarity rides on per-unit
	// payloads.
	answers, ok := unitResponses(raw)
	if !ok {
		return zero()
	}
	if len(q.SubQuestions) == 0 {
		return zero()
	}
	correct := 0
	for _, sq := range q.SubQuestions {
		resp, ok := answers[models.AnswerKey(q.ID, &sq.ID)]
		if !ok {
			resp = answers[strconv.FormatUint(uint64(sq.ID), 10)]
		}
		if matchesAny(resp, sq.AcceptedAnswers) {
			correct++
		}
	}
	return applyStrategy(q, correct, len(q.SubQuestions))
}

func (s translationScorer) similarityAccepts(raw any) bool {
	switch v := raw.(type) {
	case models.TextAnswer:
		return v.Similarity != nil && *v.Similarity >= s.cfg.SimilarityThreshold
	case *models.TextAnswer:
		return v.Similarity != nil && *v.Similarity >= s.cfg.SimilarityThreshold
	default:
		return false
	}
}
