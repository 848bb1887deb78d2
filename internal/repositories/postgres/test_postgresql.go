package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/repositories"
)

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) repositories.TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(test).Error; err != nil {
			return fmt.Errorf("failed to create test: %w", err)
		}
		return nil
	})
}

func (r *testRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	err := r.db.WithContext(ctx).First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) GetByIDWithSections(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.\"order\" ASC")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.index ASC")
		}).
		Preload("Sections.Questions.SubQuestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_questions.index ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) Update(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replace nested sections wholesale so removed questions do not linger.
		if err := tx.Where("test_id = ?", test.ID).Delete(&models.Section{}).Error; err != nil {
			return fmt.Errorf("failed to clear sections: %w", err)
		}
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(test).Error; err != nil {
			return fmt.Errorf("failed to update test: %w", err)
		}
		return nil
	})
}

func (r *testRepository) UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update test status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *testRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Test{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete test: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *testRepository) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Test{})

	if filters.Modality != nil {
		query = query.Where("modality = ?", *filters.Modality)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tests: %w", err)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var tests []*models.Test
	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}
	return tests, total, nil
}

func (r *testRepository) ExistsByTitle(ctx context.Context, title, createdBy string, excludeID *uint) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("title = ? AND created_by = ?", title, createdBy)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check test title: %w", err)
	}
	return count > 0, nil
}
