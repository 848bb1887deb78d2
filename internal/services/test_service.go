package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/ieltsprep/exam-service/internal/cache"
	"github.com/ieltsprep/exam-service/internal/events"
	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/repositories"
	"github.com/ieltsprep/exam-service/internal/validator"
)

const (
	testCacheTTL       = 15 * time.Minute
	testCacheKeyPrefix = "test:published:"
)

// TestService manages test authoring: creation, editing, listing and
// the Draft -> Published -> Archived lifecycle.
type TestService interface {
	Create(ctx context.Context, test *models.Test, creatorID string) (*models.Test, error)
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetPublished(ctx context.Context, id uint) (*models.Test, error)
	Update(ctx context.Context, test *models.Test, userID string) (*models.Test, error)
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error)
	Publish(ctx context.Context, id uint, userID string) (*models.Test, error)
	Archive(ctx context.Context, id uint, userID string) (*models.Test, error)
}

type testService struct {
	repo      repositories.Repository
	validator *validator.Validator
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewTestService(
	repo repositories.Repository,
	v *validator.Validator,
	c cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) TestService {
	return &testService{
		repo:      repo,
		validator: v,
		cache:     c,
		publisher: publisher,
		logger:    logger,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *testService) Create(ctx context.Context, test *models.Test, creatorID string) (*models.Test, error) {
	s.logger.Info("Creating test", "creator_id", creatorID, "title", test.Title)

	if err := s.validator.Validate(test); err != nil {
		return nil, err
	}
	if err := s.validator.Question().ValidateTest(test); err != nil {
		return nil, err
	}

	exists, err := s.repo.Test().ExistsByTitle(ctx, test.Title, creatorID, nil)
	if err != nil {
		return nil, fmt.Errorf("title check failed: %w", err)
	}
	if exists {
		return nil, ErrTestDuplicateTitle
	}

	test.Status = models.TestDraft
	test.CreatedBy = creatorID
	test.Version = 1
	test.TotalQuestions = countQuestions(test)

	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	return test, nil
}

func (s *testService) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByIDWithSections(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

// GetPublished returns a published test, serving from cache when warm.
// Draft and archived tests are invisible to test takers.
func (s *testService) GetPublished(ctx context.Context, id uint) (*models.Test, error) {
	key := fmt.Sprintf("%s%d", testCacheKeyPrefix, id)

	var cached models.Test
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	test, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.Status != models.TestPublished {
		return nil, ErrTestNotPublished
	}

	if err := s.cache.Set(ctx, key, test, testCacheTTL); err != nil {
		s.logger.Warn("Failed to cache published test", "test_id", id, "error", err)
	}
	return test, nil
}

func (s *testService) Update(ctx context.Context, test *models.Test, userID string) (*models.Test, error) {
	s.logger.Info("Updating test", "test_id", test.ID, "user_id", userID)

	existing, err := s.GetByID(ctx, test.ID)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != userID {
		return nil, NewPermissionError(userID, test.ID, "test", "update", "not the test owner")
	}
	if existing.Status != models.TestDraft {
		return nil, ErrTestNotEditable
	}

	if err := s.validator.Validate(test); err != nil {
		return nil, err
	}
	if err := s.validator.Question().ValidateTest(test); err != nil {
		return nil, err
	}

	exists, err := s.repo.Test().ExistsByTitle(ctx, test.Title, userID, &test.ID)
	if err != nil {
		return nil, fmt.Errorf("title check failed: %w", err)
	}
	if exists {
		return nil, ErrTestDuplicateTitle
	}

	test.Status = existing.Status
	test.CreatedBy = existing.CreatedBy
	test.Version = existing.Version + 1
	test.TotalQuestions = countQuestions(test)

	if err := s.repo.Test().Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	s.invalidate(ctx, test.ID)
	return test, nil
}

func (s *testService) Delete(ctx context.Context, id uint, userID string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.CreatedBy != userID {
		return NewPermissionError(userID, id, "test", "delete", "not the test owner")
	}
	if existing.Status == models.TestPublished {
		return NewBusinessRuleError("delete_published", "published tests must be archived before deletion", map[string]interface{}{
			"test_id": id,
		})
	}

	if err := s.repo.Test().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to delete test: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *testService) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	return s.repo.Test().List(ctx, filters)
}

// ===== LIFECYCLE TRANSITIONS =====

func (s *testService) Publish(ctx context.Context, id uint, userID string) (*models.Test, error) {
	test, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "test", "publish", "not the test owner")
	}
	if test.Status != models.TestDraft {
		return nil, ErrTestInvalidStatus
	}
	if countQuestions(test) == 0 {
		return nil, ErrTestHasNoQuestions
	}

	if err := s.repo.Test().UpdateStatus(ctx, id, models.TestPublished); err != nil {
		return nil, fmt.Errorf("failed to publish test: %w", err)
	}
	test.Status = models.TestPublished

	s.publishEvent(ctx, events.EventTestPublished, &events.TestPublishedEvent{
		TestID:    test.ID,
		TestTitle: test.Title,
		Modality:  string(test.Modality),
		Duration:  test.Duration,
		CreatedBy: test.CreatedBy,
	})
	return test, nil
}

func (s *testService) Archive(ctx context.Context, id uint, userID string) (*models.Test, error) {
	test, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "test", "archive", "not the test owner")
	}
	if test.Status != models.TestPublished {
		return nil, ErrTestInvalidStatus
	}

	if err := s.repo.Test().UpdateStatus(ctx, id, models.TestArchived); err != nil {
		return nil, fmt.Errorf("failed to archive test: %w", err)
	}
	test.Status = models.TestArchived

	s.invalidate(ctx, id)
	s.publishEvent(ctx, events.EventTestArchived, &events.TestArchivedEvent{
		TestID:     test.ID,
		TestTitle:  test.Title,
		ArchivedAt: time.Now(),
	})
	return test, nil
}

// ===== HELPERS =====

func (s *testService) invalidate(ctx context.Context, id uint) {
	key := fmt.Sprintf("%s%d", testCacheKeyPrefix, id)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to invalidate test cache", "test_id", id, "error", err)
	}
}

func (s *testService) publishEvent(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	event := &events.ExamEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "exam-service",
		Version:   "1.0",
		Data:      data,
	}
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}

func countQuestions(t *models.Test) int {
	total := 0
	for i := range t.Sections {
		total += len(t.Sections[i].Questions)
	}
	return total
}
