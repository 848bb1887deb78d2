package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/repositories"
)

type curriculumRepository struct {
	db *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) repositories.CurriculumRepository {
	return &curriculumRepository{db: db}
}

func (r *curriculumRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *curriculumRepository) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *curriculumRepository) GetCourseWithSessions(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_sessions.\"order\" ASC")
		}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *curriculumRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (r *curriculumRepository) DeleteCourse(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.CourseSession{}).Error; err != nil {
			return fmt.Errorf("failed to delete course sessions: %w", err)
		}
		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete course: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *curriculumRepository) ListCourses(ctx context.Context, createdBy string) ([]*models.Course, error) {
	var courses []*models.Course
	query := r.db.WithContext(ctx).Model(&models.Course{})
	if createdBy != "" {
		query = query.Where("created_by = ?", createdBy)
	}
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (r *curriculumRepository) AddSession(ctx context.Context, session *models.CourseSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if session.Order == 0 {
			var maxOrder int
			row := tx.Model(&models.CourseSession{}).
				Where("course_id = ?", session.CourseID).
				Select("COALESCE(MAX(\"order\"), 0)").
				Row()
			if err := row.Scan(&maxOrder); err != nil {
				return fmt.Errorf("failed to determine session order: %w", err)
			}
			session.Order = maxOrder + 1
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to add course session: %w", err)
		}
		return nil
	})
}

func (r *curriculumRepository) UpdateSession(ctx context.Context, session *models.CourseSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update course session: %w", err)
	}
	return nil
}

func (r *curriculumRepository) RemoveSession(ctx context.Context, courseID, sessionID uint) error {
	result := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.CourseSession{}, sessionID)
	if result.Error != nil {
		return fmt.Errorf("failed to remove course session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *curriculumRepository) ReorderSessions(ctx context.Context, courseID uint, orderedIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			result := tx.Model(&models.CourseSession{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("\"order\"", i+1)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder course session %d: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
