package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ieltsprep/exam-service/internal/models"
)

// ===== FILTERS =====

type TestFilters struct {
	Modality  *models.Modality   `json:"modality"`
	Status    *models.TestStatus `json:"status"`
	CreatedBy *string            `json:"created_by"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	TestID *uint   `json:"test_id"`
	UserID *string `json:"user_id"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetByIDWithSections(ctx context.Context, id uint) (*models.Test, error)
	Update(ctx context.Context, test *models.Test) error
	UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
	ExistsByTitle(ctx context.Context, title, createdBy string, excludeID *uint) (bool, error)
}

type ResultRepository interface {
	Create(ctx context.Context, result *models.TestResult) error
	GetByToken(ctx context.Context, token string) (*models.TestResult, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.TestResult, int64, error)
}

type CurriculumRepository interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetCourseWithSessions(ctx context.Context, id uint) (*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uint) error
	ListCourses(ctx context.Context, createdBy string) ([]*models.Course, error)

	AddSession(ctx context.Context, session *models.CourseSession) error
	UpdateSession(ctx context.Context, session *models.CourseSession) error
	RemoveSession(ctx context.Context, courseID, sessionID uint) error
	ReorderSessions(ctx context.Context, courseID uint, orderedIDs []uint) error
}

// Repository aggregates the per-aggregate repositories.
type Repository interface {
	Test() TestRepository
	Result() ResultRepository
	Curriculum() CurriculumRepository
}

// IsNotFoundError reports whether err is the storage layer's
// record-not-found condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
