package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/repositories"
	"github.com/ieltsprep/exam-service/internal/validator"
)

// CurriculumService manages courses and their ordered sessions. A
// course session may reference a published test as its material.
type CurriculumService interface {
	CreateCourse(ctx context.Context, course *models.Course, creatorID string) (*models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course, userID string) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uint, userID string) error
	ListCourses(ctx context.Context, createdBy string) ([]*models.Course, error)

	AddSession(ctx context.Context, courseID uint, sess *models.CourseSession, userID string) (*models.CourseSession, error)
	UpdateSession(ctx context.Context, courseID uint, sess *models.CourseSession, userID string) (*models.CourseSession, error)
	RemoveSession(ctx context.Context, courseID, sessionID uint, userID string) error
	ReorderSessions(ctx context.Context, courseID uint, orderedIDs []uint, userID string) error
}

type curriculumService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
}

func NewCurriculumService(repo repositories.Repository, v *validator.Validator, logger *slog.Logger) CurriculumService {
	return &curriculumService{
		repo:      repo,
		validator: v,
		logger:    logger,
	}
}

// ===== COURSES =====

func (s *curriculumService) CreateCourse(ctx context.Context, course *models.Course, creatorID string) (*models.Course, error) {
	if err := s.validator.Validate(course); err != nil {
		return nil, err
	}
	course.CreatedBy = creatorID

	if err := s.repo.Curriculum().CreateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	s.logger.Info("Course created", "course_id", course.ID, "creator_id", creatorID)
	return course, nil
}

func (s *curriculumService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Curriculum().GetCourseWithSessions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *curriculumService) UpdateCourse(ctx context.Context, course *models.Course, userID string) (*models.Course, error) {
	existing, err := s.ownedCourse(ctx, course.ID, userID, "update")
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(course); err != nil {
		return nil, err
	}

	course.CreatedBy = existing.CreatedBy
	if err := s.repo.Curriculum().UpdateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

func (s *curriculumService) DeleteCourse(ctx context.Context, id uint, userID string) error {
	if _, err := s.ownedCourse(ctx, id, userID, "delete"); err != nil {
		return err
	}
	if err := s.repo.Curriculum().DeleteCourse(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (s *curriculumService) ListCourses(ctx context.Context, createdBy string) ([]*models.Course, error) {
	return s.repo.Curriculum().ListCourses(ctx, createdBy)
}

// ===== COURSE SESSIONS =====

func (s *curriculumService) AddSession(ctx context.Context, courseID uint, sess *models.CourseSession, userID string) (*models.CourseSession, error) {
	if _, err := s.ownedCourse(ctx, courseID, userID, "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(sess); err != nil {
		return nil, err
	}
	if err := s.checkSessionTest(ctx, sess); err != nil {
		return nil, err
	}

	sess.CourseID = courseID
	if err := s.repo.Curriculum().AddSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to add course session: %w", err)
	}
	return sess, nil
}

func (s *curriculumService) UpdateSession(ctx context.Context, courseID uint, sess *models.CourseSession, userID string) (*models.CourseSession, error) {
	if _, err := s.ownedCourse(ctx, courseID, userID, "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(sess); err != nil {
		return nil, err
	}
	if err := s.checkSessionTest(ctx, sess); err != nil {
		return nil, err
	}

	sess.CourseID = courseID
	if err := s.repo.Curriculum().UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to update course session: %w", err)
	}
	return sess, nil
}

func (s *curriculumService) RemoveSession(ctx context.Context, courseID, sessionID uint, userID string) error {
	if _, err := s.ownedCourse(ctx, courseID, userID, "update"); err != nil {
		return err
	}
	if err := s.repo.Curriculum().RemoveSession(ctx, courseID, sessionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseSessionNotFound
		}
		return fmt.Errorf("failed to remove course session: %w", err)
	}
	return nil
}

func (s *curriculumService) ReorderSessions(ctx context.Context, courseID uint, orderedIDs []uint, userID string) error {
	if _, err := s.ownedCourse(ctx, courseID, userID, "update"); err != nil {
		return err
	}
	if len(orderedIDs) == 0 {
		return ErrBadRequest
	}
	if err := s.repo.Curriculum().ReorderSessions(ctx, courseID, orderedIDs); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseSessionNotFound
		}
		return fmt.Errorf("failed to reorder course sessions: %w", err)
	}
	return nil
}

// ===== HELPERS =====

func (s *curriculumService) ownedCourse(ctx context.Context, id uint, userID, action string) (*models.Course, error) {
	course, err := s.repo.Curriculum().GetCourse(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "course", action, "not the course owner")
	}
	return course, nil
}

// checkSessionTest verifies a referenced test exists and is published.
func (s *curriculumService) checkSessionTest(ctx context.Context, sess *models.CourseSession) error {
	if sess.TestID == nil {
		return nil
	}
	test, err := s.repo.Test().GetByID(ctx, *sess.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to get test: %w", err)
	}
	if test.Status != models.TestPublished {
		return ErrTestNotPublished
	}
	return nil
}
