package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/registry"
	"github.com/ieltsprep/exam-service/internal/scoring"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEngine() *scoring.Engine {
	reg := registry.Default(scoring.DefaultConfig())
	return scoring.NewEngine(reg.Scorer, testLogger())
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func sampleTest(t *testing.T) *models.Test {
	return &models.Test{
		ID:       1,
		Title:    "Listening Practice 1",
		Modality: models.ModalityListening,
		Duration: 1800,
		Sections: []models.Section{
			{
				ID: 11, TestID: 1, Title: "Section 1", Order: 1,
				Questions: []models.Question{
					{
						ID: 101, SectionID: 11, Type: models.MultipleChoice, Points: 1, Index: 1,
						Content: mustJSON(t, models.MultipleChoiceContent{
							Options: []models.ChoiceOption{
								{ID: "A", Text: "north"},
								{ID: "B", Text: "south", Correct: true},
							},
						}),
					},
					{
						ID: 102, SectionID: 11, Type: models.Completion, Points: 2,
						Strategy: models.StrategyPartial, Index: 2,
						Content: mustJSON(t, models.CompletionContent{
							Blanks: []models.Blank{
								{ID: "b1", Accepted: []string{"harbour"}},
								{ID: "b2", Accepted: []string{"ferry"}},
							},
						}),
					},
				},
			},
			{
				ID: 12, TestID: 1, Title: "Section 2", Order: 2,
				Questions: []models.Question{
					{
						ID: 103, SectionID: 12, Type: models.SentenceTranslation, Points: 2,
						Strategy: models.StrategyPartial, Index: 3,
						SubQuestions: []models.SubQuestion{
							{ID: 1031, QuestionID: 103, Points: 1, AcceptedAnswers: []string{"I went home"}},
							{ID: 1032, QuestionID: 103, Points: 1, AcceptedAnswers: []string{"She is reading"}},
						},
					},
				},
			},
		},
	}
}

func startedSession(t *testing.T) *Session {
	s := New(testEngine(), testLogger())
	s.LoadTest(sampleTest(t))
	s.Start()
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := New(testEngine(), testLogger())
	assert.Equal(t, StateNotStarted, s.State())

	// Operations before a test is loaded are silent no-ops.
	s.Start()
	s.NextSection()
	s.Complete()
	assert.Equal(t, StateNotStarted, s.State())
	assert.Nil(t, s.SubmitAnswer(101, "x", nil))

	s.LoadTest(sampleTest(t))
	assert.Equal(t, StateNotStarted, s.State())

	s.Start()
	assert.Equal(t, StateInProgress, s.State())
	require.NotNil(t, s.Progress())
	assert.NotEmpty(t, s.Token())
	assert.Equal(t, 1800, s.Progress().TimeRemaining)

	// Starting again does not replace the live attempt.
	token := s.Token()
	s.Start()
	assert.Equal(t, token, s.Token())

	s.Complete()
	assert.Equal(t, StateCompleted, s.State())
	require.NotNil(t, s.Progress().CompletedAt)

	// Completed attempts reject further submissions and transitions.
	assert.Nil(t, s.SubmitAnswer(101, models.SelectionAnswer{SelectedOption: "B"}, nil))
	s.Complete()
	assert.Equal(t, StateCompleted, s.State())

	s.Reset()
	assert.Equal(t, StateNotStarted, s.State())
	assert.Nil(t, s.Progress())
}

func TestSubmitAnswer(t *testing.T) {
	t.Run("scores and stores the answer", func(t *testing.T) {
		s := startedSession(t)
		answer := s.SubmitAnswer(101, models.SelectionAnswer{SelectedOption: "B"}, nil)
		require.NotNil(t, answer)
		assert.True(t, answer.IsCorrect)
		assert.Equal(t, 1.0, answer.Score)
		assert.Equal(t, uint(11), answer.SectionID)
		assert.Equal(t, 1.0, answer.MaxScore)
	})

	t.Run("resubmission overwrites instead of accumulating", func(t *testing.T) {
		s := startedSession(t)
		first := s.SubmitAnswer(101, models.SelectionAnswer{SelectedOption: "A"}, nil)
		require.NotNil(t, first)
		assert.False(t, first.IsCorrect)

		second := s.SubmitAnswer(101, models.SelectionAnswer{SelectedOption: "B"}, nil)
		require.NotNil(t, second)
		assert.True(t, second.IsCorrect)

		progress := s.Progress()
		assert.Len(t, progress.Answers, 1)
		assert.True(t, progress.Answers[models.AnswerKey(101, nil)].IsCorrect)
	})

	t.Run("rejects questions outside the loaded test", func(t *testing.T) {
		s := startedSession(t)
		assert.Nil(t, s.SubmitAnswer(999, "anything", nil))
		assert.Empty(t, s.Progress().Answers)
	})

	t.Run("rejects unknown sub-question ids", func(t *testing.T) {
		s := startedSession(t)
		bogus := uint(7777)
		assert.Nil(t, s.SubmitAnswer(103, models.TextAnswer{Text: "I went home"}, &bogus))
	})

	t.Run("sub-question submissions key by sub id", func(t *testing.T) {
		s := startedSession(t)
		subID := uint(1031)
		answer := s.SubmitAnswer(103, models.TextAnswer{Text: "I went home"}, &subID)
		require.NotNil(t, answer)
		assert.True(t, answer.IsCorrect)
		assert.Equal(t, 1.0, answer.Score)
		require.NotNil(t, answer.ParentQuestionID)
		assert.Equal(t, uint(103), *answer.ParentQuestionID)

		progress := s.Progress()
		assert.Contains(t, progress.Answers, "s1031")
	})
}

func TestSectionNavigation(t *testing.T) {
	t.Run("previous at first section is a no-op", func(t *testing.T) {
		s := startedSession(t)
		s.PreviousSection()
		assert.Equal(t, 0, s.Progress().CurrentSection)
	})

	t.Run("next walks forward then completes past the end", func(t *testing.T) {
		s := startedSession(t)
		s.NextSection()
		assert.Equal(t, 1, s.Progress().CurrentSection)
		assert.Equal(t, StateInProgress, s.State())

		s.NextSection()
		assert.Equal(t, StateCompleted, s.State())
	})

	t.Run("jump is bounds checked", func(t *testing.T) {
		s := startedSession(t)
		s.JumpToSection(1)
		assert.Equal(t, 1, s.Progress().CurrentSection)

		s.JumpToSection(5)
		assert.Equal(t, 1, s.Progress().CurrentSection)
		s.JumpToSection(-1)
		assert.Equal(t, 1, s.Progress().CurrentSection)
	})

	t.Run("navigation resets the question cursor", func(t *testing.T) {
		s := startedSession(t)
		s.NextSection()
		assert.Equal(t, 0, s.Progress().CurrentQuestion)
	})
}

func TestComplete_SumsScores(t *testing.T) {
	s := startedSession(t)
	s.SubmitAnswer(101, models.SelectionAnswer{SelectedOption: "B"}, nil)
	s.SubmitAnswer(102, models.UnitAnswers{Answers: map[string]string{"b1": "harbour", "b2": "dock"}}, nil)

	s.Complete()
	progress := s.Progress()
	// 1 point for the choice plus round(1/2*2)=1 for the completion.
	assert.Equal(t, 2.0, progress.Score)
}

func TestUpdateTimeRemaining(t *testing.T) {
	s := startedSession(t)

	s.UpdateTimeRemaining(500)
	assert.Equal(t, 500, s.Progress().TimeRemaining)

	s.UpdateTimeRemaining(-10)
	assert.Equal(t, 0, s.Progress().TimeRemaining)

	// Zero never force-completes; that call belongs to the timer owner.
	assert.Equal(t, StateInProgress, s.State())

	s.Complete()
	s.UpdateTimeRemaining(100)
	assert.Equal(t, 0, s.Progress().TimeRemaining)
}

func TestMergeAIScore(t *testing.T) {
	essay := make([]byte, 300)
	for i := range essay {
		essay[i] = 'b'
	}

	writingTest := &models.Test{
		ID: 2, Title: "Writing Practice", Modality: models.ModalityWriting, Duration: 3600,
		Sections: []models.Section{{
			ID: 21, TestID: 2, Title: "Task 2", Order: 1,
			Questions: []models.Question{{
				ID: 201, SectionID: 21, Type: models.WritingTask2, Points: 9, Index: 1,
			}},
		}},
	}

	setup := func(t *testing.T) *Session {
		s := New(testEngine(), testLogger())
		s.LoadTest(writingTest)
		s.Start()
		answer := s.SubmitAnswer(201, models.WritingAnswer{Text: string(essay)}, nil)
		require.NotNil(t, answer)
		require.True(t, answer.Pending)
		return s
	}

	t.Run("merges band into pending answer", func(t *testing.T) {
		s := setup(t)
		ok := s.MergeAIScore(s.Token(), 201, 7, "Good cohesion.")
		assert.True(t, ok)

		answer := s.Progress().Answers[models.AnswerKey(201, nil)]
		assert.False(t, answer.Pending)
		assert.True(t, answer.IsCorrect)
		assert.Equal(t, 7.0, answer.Score)
		assert.Equal(t, "Good cohesion.", answer.Feedback)
	})

	t.Run("result arriving after completion is dropped", func(t *testing.T) {
		s := setup(t)
		token := s.Token()
		s.Complete()

		assert.False(t, s.MergeAIScore(token, 201, 7, "late"))

		answer := s.Progress().Answers[models.AnswerKey(201, nil)]
		assert.True(t, answer.Pending)
		assert.Equal(t, 0.0, answer.Score)
		assert.Equal(t, answer.Score, s.Progress().Score)
	})

	t.Run("stale token after reset is dropped", func(t *testing.T) {
		s := setup(t)
		stale := s.Token()
		s.Reset()
		s.Start()
		assert.False(t, s.MergeAIScore(stale, 201, 7, "late"))
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		s := setup(t)
		assert.False(t, s.MergeAIScore("bogus", 201, 7, ""))
	})

	t.Run("merge without a submitted answer rejected", func(t *testing.T) {
		s := New(testEngine(), testLogger())
		s.LoadTest(writingTest)
		s.Start()
		assert.False(t, s.MergeAIScore(s.Token(), 201, 7, ""))
	})
}

func TestProgressSnapshotIsolation(t *testing.T) {
	s := startedSession(t)
	s.SubmitAnswer(101, models.SelectionAnswer{SelectedOption: "B"}, nil)

	snapshot := s.Progress()
	snapshot.Answers[models.AnswerKey(101, nil)].Score = 42
	snapshot.CurrentSection = 9

	fresh := s.Progress()
	assert.Equal(t, 1.0, fresh.Answers[models.AnswerKey(101, nil)].Score)
	assert.Equal(t, 0, fresh.CurrentSection)
}

func TestManager(t *testing.T) {
	m := NewManager(testEngine(), testLogger())

	alice := m.ForUser("alice")
	bob := m.ForUser("bob")
	assert.NotSame(t, alice, bob)
	assert.Same(t, alice, m.ForUser("alice"))

	alice.LoadTest(sampleTest(t))
	alice.Start()
	assert.Equal(t, StateNotStarted, bob.State())

	m.Drop("alice")
	assert.NotSame(t, alice, m.ForUser("alice"))
}
