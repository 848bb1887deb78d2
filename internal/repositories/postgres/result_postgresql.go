package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/repositories"
)

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) repositories.ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, result *models.TestResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create test result: %w", err)
	}
	return nil
}

func (r *resultRepository) GetByToken(ctx context.Context, token string) (*models.TestResult, error) {
	var result models.TestResult
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepository) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TestResult{})

	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count test results: %w", err)
	}

	query = query.Order("completed_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var results []*models.TestResult
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list test results: %w", err)
	}
	return results, total, nil
}
