package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/ieltsprep/exam-service/internal/ai"
	"github.com/ieltsprep/exam-service/internal/cache"
	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/registry"
	"github.com/ieltsprep/exam-service/internal/scoring"
	"github.com/ieltsprep/exam-service/internal/session"
)

func writingTaskContent(t *testing.T) datatypes.JSON {
	t.Helper()
	b, err := json.Marshal(models.WritingTaskContent{Prompt: "Describe the chart."})
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	return datatypes.JSON(b)
}

func publishedWritingTest(t *testing.T) *models.Test {
	return &models.Test{
		ID:        2,
		Title:     "Writing Practice",
		Modality:  models.ModalityWriting,
		Duration:  3600,
		Status:    models.TestPublished,
		CreatedBy: "teacher-1",
		Sections: []models.Section{{
			ID: 21, TestID: 2, Title: "Task 2", Order: 1,
			Questions: []models.Question{{
				ID: 201, SectionID: 21, Type: models.WritingTask2, Points: 9, Index: 1,
				Text: "Write about the chart.", Content: writingTaskContent(t),
			}},
		}},
	}
}

func newExamServiceForScoring(t *testing.T, repo *mockRepository, scorer *ai.Client) ExamService {
	cfg := scoring.Config{SimilarityThreshold: 0.8, MinEssayLength: 100, BandScale: 9}
	reg := registry.Default(cfg)
	engine := scoring.NewEngine(reg.Scorer, serviceLogger())
	sessions := session.NewManager(engine, serviceLogger())

	tests := NewTestService(repo, serviceValidator(), cache.NoopCache{}, nil, serviceLogger())
	results := NewResultService(repo, nil, serviceLogger())
	return NewExamService(sessions, tests, results, scorer, cfg, nil, serviceLogger())
}

func TestExamService_ScoreEssay_TooShortSkipsScorer(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		json.NewEncoder(w).Encode(ai.ScoreResponse{Score: 7})
	}))
	defer srv.Close()

	repo := newMockRepository()
	repo.test.On("GetByIDWithSections", mock.Anything, uint(2)).Return(publishedWritingTest(t), nil)

	svc := newExamServiceForScoring(t, repo, ai.NewClient(srv.URL, "", serviceLogger()))
	ctx := context.Background()

	_, err := svc.Start(ctx, "student-1", 2)
	require.NoError(t, err)

	submitted, err := svc.SubmitAnswer(ctx, "student-1", 201, nil, models.WritingAnswer{Text: "Too short."})
	require.NoError(t, err)
	require.Equal(t, scoring.FeedbackTooShort, submitted.Feedback)
	require.False(t, submitted.Pending)

	answer, err := svc.ScoreEssay(ctx, "student-1", 201)

	assert.NoError(t, err)
	assert.Equal(t, scoring.FeedbackTooShort, answer.Feedback)
	assert.Equal(t, 0.0, answer.Score)
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls), "scorer must not be called for a too-short essay")
}

func TestExamService_ScoreEssay_MergesBand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ai.ScoreResponse{Score: 7, Feedback: "Good cohesion."})
	}))
	defer srv.Close()

	repo := newMockRepository()
	repo.test.On("GetByIDWithSections", mock.Anything, uint(2)).Return(publishedWritingTest(t), nil)

	svc := newExamServiceForScoring(t, repo, ai.NewClient(srv.URL, "", serviceLogger()))
	ctx := context.Background()

	_, err := svc.Start(ctx, "student-1", 2)
	require.NoError(t, err)

	essay := strings.Repeat("rail usage rose steadily ", 20)
	submitted, err := svc.SubmitAnswer(ctx, "student-1", 201, nil, models.WritingAnswer{Text: essay})
	require.NoError(t, err)
	require.True(t, submitted.Pending)

	answer, err := svc.ScoreEssay(ctx, "student-1", 201)

	assert.NoError(t, err)
	assert.False(t, answer.Pending)
	assert.Equal(t, 7.0, answer.Score)
	assert.Equal(t, "Good cohesion.", answer.Feedback)
}
