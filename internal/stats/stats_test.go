package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ieltsprep/exam-service/internal/models"
)

func statTest() *models.Test {
	return &models.Test{
		ID: 1,
		Sections: []models.Section{
			{
				ID: 11, Title: "Section 1",
				Questions: []models.Question{
					{ID: 101, SectionID: 11, Points: 1},
					{ID: 102, SectionID: 11, Points: 2},
				},
			},
			{
				ID: 12, Title: "Section 2",
				Questions: []models.Question{
					{
						ID: 103, SectionID: 12, Points: 2,
						SubQuestions: []models.SubQuestion{
							{ID: 1031, QuestionID: 103, Points: 1},
							{ID: 1032, QuestionID: 103, Points: 1},
						},
					},
				},
			},
		},
	}
}

func answer(questionID uint, sub *uint, score float64, correct bool) *models.Answer {
	return &models.Answer{
		QuestionID:    questionID,
		SubQuestionID: sub,
		Score:         score,
		IsCorrect:     correct,
	}
}

func TestForTest_EmptyAnswerMap(t *testing.T) {
	out := ForTest(statTest(), map[string]*models.Answer{})

	assert.Equal(t, 0, out.Answers)
	assert.Equal(t, 0.0, out.Score)
	assert.Equal(t, 5.0, out.TotalScore)
	assert.Equal(t, 0, out.Percentage)
	assert.Equal(t, 3, out.TotalQuestions)
	assert.Equal(t, 3, out.Unanswered)
	assert.Equal(t, 0.0, out.BandEstimate)
	assert.Len(t, out.Sections, 2)
}

func TestForTest_PartiallyAnswered(t *testing.T) {
	answers := map[string]*models.Answer{
		models.AnswerKey(101, nil): answer(101, nil, 1, true),
		models.AnswerKey(102, nil): answer(102, nil, 0, false),
	}
	out := ForTest(statTest(), answers)

	assert.Equal(t, 2, out.Answers)
	assert.Equal(t, 1.0, out.Score)
	assert.Equal(t, 1, out.CorrectAnswers)
	assert.Equal(t, 1, out.IncorrectAnswers)
	assert.Equal(t, 1, out.Unanswered)
	assert.Equal(t, 20, out.Percentage)
}

func TestForSection_SubQuestionRecordsCountOnce(t *testing.T) {
	test := statTest()
	sub1 := uint(1031)
	sub2 := uint(1032)
	answers := map[string]*models.Answer{
		models.AnswerKey(103, &sub1): answer(103, &sub1, 1, true),
		models.AnswerKey(103, &sub2): answer(103, &sub2, 0, false),
	}

	out := ForSection(&test.Sections[1], answers)
	assert.Equal(t, 1, out.Answers, "sub records roll up to one answered question")
	assert.Equal(t, 0, out.CorrectAnswers, "one wrong sub makes the question incorrect")
	assert.Equal(t, 1, out.IncorrectAnswers)
	assert.Equal(t, 1.0, out.Score)
	assert.Equal(t, 0, out.Unanswered)
}

func TestForSection_AllSubsCorrect(t *testing.T) {
	test := statTest()
	sub1 := uint(1031)
	sub2 := uint(1032)
	answers := map[string]*models.Answer{
		models.AnswerKey(103, &sub1): answer(103, &sub1, 1, true),
		models.AnswerKey(103, &sub2): answer(103, &sub2, 1, true),
	}

	out := ForSection(&test.Sections[1], answers)
	assert.Equal(t, 1, out.CorrectAnswers)
	assert.Equal(t, 2.0, out.Score)
	assert.Equal(t, 100, out.Percentage)
}

func TestForTest_FullScoreBandEstimate(t *testing.T) {
	sub1 := uint(1031)
	sub2 := uint(1032)
	answers := map[string]*models.Answer{
		models.AnswerKey(101, nil):   answer(101, nil, 1, true),
		models.AnswerKey(102, nil):   answer(102, nil, 2, true),
		models.AnswerKey(103, &sub1): answer(103, &sub1, 1, true),
		models.AnswerKey(103, &sub2): answer(103, &sub2, 1, true),
	}
	out := ForTest(statTest(), answers)

	assert.Equal(t, 100, out.Percentage)
	assert.Equal(t, 9.0, out.BandEstimate)
	assert.Equal(t, 0, out.Unanswered)
}

func TestForTest_PendingAnswerNotIncorrect(t *testing.T) {
	pending := answer(101, nil, 0, false)
	pending.Pending = true
	answers := map[string]*models.Answer{
		models.AnswerKey(101, nil): pending,
		models.AnswerKey(102, nil): answer(102, nil, 0, false),
	}
	out := ForTest(statTest(), answers)

	assert.Equal(t, 2, out.Answers)
	assert.Equal(t, 1, out.Pending)
	assert.Equal(t, 0, out.CorrectAnswers)
	assert.Equal(t, 1, out.IncorrectAnswers, "only the graded wrong answer is incorrect")
	assert.Equal(t, 1, out.Unanswered)
	assert.Equal(t, 1, out.Sections[0].Pending)
}

func TestForTest_ZeroPointTestNeverNaN(t *testing.T) {
	empty := &models.Test{ID: 2, Sections: []models.Section{{ID: 21}}}
	out := ForTest(empty, nil)
	assert.Equal(t, 0, out.Percentage)
	assert.Equal(t, 0.0, out.BandEstimate)
}

func TestBreakdown(t *testing.T) {
	answers := map[string]*models.Answer{
		models.AnswerKey(101, nil): answer(101, nil, 1, true),
	}
	out := Breakdown(statTest(), answers)

	assert.Len(t, out, 2)
	assert.Equal(t, uint(11), out[0].SectionID)
	assert.Equal(t, "Section 1", out[0].Title)
	assert.Equal(t, 1.0, out[0].Score)
	assert.Equal(t, 3.0, out[0].MaxScore)
	assert.Equal(t, 33, out[0].Percentage)
	assert.Equal(t, 1, out[1].Unanswered)
}
