package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/ieltsprep/exam-service/internal/events"
	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/repositories"
	"github.com/ieltsprep/exam-service/internal/stats"
)

// ResultService persists completed attempts and serves them back.
type ResultService interface {
	Record(ctx context.Context, userID string, test *models.Test, progress *models.TestProgress) (*models.TestResult, error)
	GetByToken(ctx context.Context, token, userID string) (*models.TestResult, error)
	List(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error)
}

type resultService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewResultService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) ResultService {
	return &resultService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Record folds the answer map into a TestResult row and stores it. The
// attempt is already completed by the caller; a storage failure here is
// reported but never reopens the attempt.
func (s *resultService) Record(ctx context.Context, userID string, test *models.Test, progress *models.TestProgress) (*models.TestResult, error) {
	if test == nil || progress == nil || !progress.Completed {
		return nil, ErrSessionNotActive
	}

	testStats := stats.ForTest(test, progress.Answers)
	breakdown := stats.Breakdown(test, progress.Answers)

	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal section breakdown: %w", err)
	}

	completedAt := time.Now()
	if progress.CompletedAt != nil {
		completedAt = *progress.CompletedAt
	}

	result := &models.TestResult{
		TestID:            test.ID,
		UserID:            userID,
		Token:             progress.Token,
		TotalScore:        testStats.Score,
		MaxPossibleScore:  testStats.TotalScore,
		Percentage:        testStats.Percentage,
		BandEstimate:      testStats.BandEstimate,
		AnsweredQuestions: testStats.Answers,
		CorrectAnswers:    testStats.CorrectAnswers,
		IncorrectAnswers:  testStats.IncorrectAnswers,
		Breakdown:         breakdownJSON,
		StartedAt:         progress.StartedAt,
		CompletedAt:       completedAt,
	}

	if err := s.repo.Result().Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to store test result: %w", err)
	}

	s.logger.Info("Test result recorded",
		"token", result.Token,
		"test_id", result.TestID,
		"user_id", userID,
		"score", result.TotalScore,
		"band_estimate", result.BandEstimate)

	pending := 0
	for _, a := range progress.Answers {
		if a.Pending {
			pending++
		}
	}

	s.publishEvent(ctx, &events.SessionCompletedEvent{
		Token:            result.Token,
		TestID:           test.ID,
		TestTitle:        test.Title,
		UserID:           userID,
		CompletedAt:      completedAt,
		TotalScore:       result.TotalScore,
		MaxPossibleScore: result.MaxPossibleScore,
		Percentage:       float64(result.Percentage),
		BandEstimate:     result.BandEstimate,
		PendingCount:     pending,
	})

	return result, nil
}

func (s *resultService) GetByToken(ctx context.Context, token, userID string) (*models.TestResult, error) {
	result, err := s.repo.Result().GetByToken(ctx, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get test result: %w", err)
	}
	if userID != "" && result.UserID != userID {
		return nil, ErrResultAccessDenied
	}
	return result, nil
}

func (s *resultService) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.Result().List(ctx, filters)
}

func (s *resultService) publishEvent(ctx context.Context, data *events.SessionCompletedEvent) {
	if s.publisher == nil {
		return
	}
	event := &events.ExamEvent{
		ID:        watermill.NewUUID(),
		Type:      events.EventSessionCompleted,
		Timestamp: time.Now(),
		Source:    "exam-service",
		Version:   "1.0",
		Data:      data,
	}
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish completion event", "token", data.Token, "error", err)
	}
}
