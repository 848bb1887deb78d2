// Package stats derives section and test level statistics from the
// answer map. It is a pure fold: safe on a partially populated or
// empty map, recomputed on demand, and it never mutates its inputs.
package stats

import (
	"math"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/scoring"
)

// SectionStats is a section-level projection over the answer map.
type SectionStats struct {
	SectionID        uint    `json:"section_id"`
	Answers          int     `json:"answers"`
	Score            float64 `json:"score"`
	TotalScore       float64 `json:"total_score"`
	Percentage       int     `json:"percentage"`
	TotalQuestions   int     `json:"total_questions"`
	Unanswered       int     `json:"unanswered"`
	CorrectAnswers   int     `json:"correct_answers"`
	IncorrectAnswers int     `json:"incorrect_answers"`
	Pending          int     `json:"pending"`
}

// TestStats aggregates the whole test and adds the band estimate the
// results view shows.
type TestStats struct {
	TestID           uint    `json:"test_id"`
	Answers          int     `json:"answers"`
	Score            float64 `json:"score"`
	TotalScore       float64 `json:"total_score"`
	Percentage       int     `json:"percentage"`
	TotalQuestions   int     `json:"total_questions"`
	Unanswered       int     `json:"unanswered"`
	CorrectAnswers   int     `json:"correct_answers"`
	IncorrectAnswers int     `json:"incorrect_answers"`
	Pending          int     `json:"pending"`
	BandEstimate     float64 `json:"band_estimate"`

	Sections []SectionStats `json:"sections"`
}

// ForSection folds the answer map down to one section. Questions with
// sub-question records are counted once: answered when any sub record
// exists, correct only when every present record is correct.
func ForSection(sec *models.Section, answers map[string]*models.Answer) SectionStats {
	s := SectionStats{
		SectionID:      sec.ID,
		TotalQuestions: len(sec.Questions),
	}

	for i := range sec.Questions {
		q := &sec.Questions[i]
		s.TotalScore += q.Points

		records := questionRecords(q, answers)
		if len(records) == 0 {
			s.Unanswered++
			continue
		}

		s.Answers++

		// Pending records are answered but not yet graded; they decide
		// neither correctness bucket.
		correct := true
		graded := 0
		pending := false
		for _, r := range records {
			s.Score += r.Score
			if r.Pending {
				pending = true
				continue
			}
			graded++
			if !r.IsCorrect {
				correct = false
			}
		}
		if pending {
			s.Pending++
		}
		switch {
		case graded == 0:
		case correct:
			s.CorrectAnswers++
		default:
			s.IncorrectAnswers++
		}
	}

	s.Percentage = percentage(s.Score, s.TotalScore)
	return s
}

// ForTest folds every section and derives the overall percentage and
// band estimate.
func ForTest(t *models.Test, answers map[string]*models.Answer) TestStats {
	out := TestStats{TestID: t.ID}

	for i := range t.Sections {
		sec := ForSection(&t.Sections[i], answers)
		out.Sections = append(out.Sections, sec)

		out.Answers += sec.Answers
		out.Score += sec.Score
		out.TotalScore += sec.TotalScore
		out.TotalQuestions += sec.TotalQuestions
		out.Unanswered += sec.Unanswered
		out.CorrectAnswers += sec.CorrectAnswers
		out.IncorrectAnswers += sec.IncorrectAnswers
		out.Pending += sec.Pending
	}

	out.Percentage = percentage(out.Score, out.TotalScore)
	out.BandEstimate = scoring.EstimateBand(out.Percentage)
	return out
}

// Breakdown renders per-section stats into the shape stored on a
// persisted TestResult.
func Breakdown(t *models.Test, answers map[string]*models.Answer) []models.SectionBreakdown {
	out := make([]models.SectionBreakdown, 0, len(t.Sections))
	for i := range t.Sections {
		sec := &t.Sections[i]
		s := ForSection(sec, answers)
		out = append(out, models.SectionBreakdown{
			SectionID:  sec.ID,
			Title:      sec.Title,
			Score:      s.Score,
			MaxScore:   s.TotalScore,
			Percentage: s.Percentage,
			Answered:   s.Answers,
			Correct:    s.CorrectAnswers,
			Incorrect:  s.IncorrectAnswers,
			Unanswered: s.Unanswered,
		})
	}
	return out
}

// questionRecords collects the answer records belonging to a question:
// its whole-question record plus any sub-question records.
func questionRecords(q *models.Question, answers map[string]*models.Answer) []*models.Answer {
	var records []*models.Answer
	if a, ok := answers[models.AnswerKey(q.ID, nil)]; ok {
		records = append(records, a)
	}
	for i := range q.SubQuestions {
		if a, ok := answers[models.AnswerKey(q.ID, &q.SubQuestions[i].ID)]; ok {
			records = append(records, a)
		}
	}
	return records
}

// percentage is round(score/max*100) with max==0 defined as 0, never
// NaN.
func percentage(score, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(score / max * 100))
}
