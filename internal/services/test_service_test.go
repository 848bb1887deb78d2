package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ieltsprep/exam-service/internal/cache"
	"github.com/ieltsprep/exam-service/internal/events"
	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/registry"
	"github.com/ieltsprep/exam-service/internal/repositories"
	"github.com/ieltsprep/exam-service/internal/scoring"
	"github.com/ieltsprep/exam-service/internal/validator"
)

// MockTestRepository is a mock implementation of TestRepository
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetByIDWithSections(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) Update(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTestRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTestRepository) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Test), args.Get(1).(int64), args.Error(2)
}

func (m *MockTestRepository) ExistsByTitle(ctx context.Context, title, createdBy string, excludeID *uint) (bool, error) {
	args := m.Called(ctx, title, createdBy, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, result *models.TestResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByToken(ctx context.Context, token string) (*models.TestResult, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestResult), args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.TestResult), args.Get(1).(int64), args.Error(2)
}

// MockCurriculumRepository is a mock implementation of CurriculumRepository
type MockCurriculumRepository struct {
	mock.Mock
}

func (m *MockCurriculumRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCurriculumRepository) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCurriculumRepository) GetCourseWithSessions(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCurriculumRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCurriculumRepository) DeleteCourse(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCurriculumRepository) ListCourses(ctx context.Context, createdBy string) ([]*models.Course, error) {
	args := m.Called(ctx, createdBy)
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *MockCurriculumRepository) AddSession(ctx context.Context, session *models.CourseSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockCurriculumRepository) UpdateSession(ctx context.Context, session *models.CourseSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockCurriculumRepository) RemoveSession(ctx context.Context, courseID, sessionID uint) error {
	args := m.Called(ctx, courseID, sessionID)
	return args.Error(0)
}

func (m *MockCurriculumRepository) ReorderSessions(ctx context.Context, courseID uint, orderedIDs []uint) error {
	args := m.Called(ctx, courseID, orderedIDs)
	return args.Error(0)
}

// mockRepository aggregates the mocks behind the Repository interface.
type mockRepository struct {
	test       *MockTestRepository
	result     *MockResultRepository
	curriculum *MockCurriculumRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		test:       &MockTestRepository{},
		result:     &MockResultRepository{},
		curriculum: &MockCurriculumRepository{},
	}
}

func (m *mockRepository) Test() repositories.TestRepository             { return m.test }
func (m *mockRepository) Result() repositories.ResultRepository         { return m.result }
func (m *mockRepository) Curriculum() repositories.CurriculumRepository { return m.curriculum }

func serviceLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serviceValidator() *validator.Validator {
	reg := registry.Default(scoring.Config{SimilarityThreshold: 0.8, MinEssayLength: 100, BandScale: 9})
	return validator.New(reg)
}

func mcContent(t *testing.T) datatypes.JSON {
	t.Helper()
	b, err := json.Marshal(models.MultipleChoiceContent{
		Options: []models.ChoiceOption{
			{ID: "A", Text: "Option A"},
			{ID: "B", Text: "Option B", Correct: true},
			{ID: "C", Text: "Option C"},
		},
	})
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	return datatypes.JSON(b)
}

func draftTest(t *testing.T) *models.Test {
	return &models.Test{
		Title:    "Academic Reading Practice 1",
		Modality: models.ModalityReading,
		Duration: 3600,
		Sections: []models.Section{
			{
				Title: "Passage 1",
				Questions: []models.Question{
					{Type: models.MultipleChoice, Text: "What is the main idea?", Points: 1, Content: mcContent(t)},
				},
			},
		},
	}
}

func newTestServiceWithMocks(repo *mockRepository, publisher events.EventPublisher) TestService {
	return NewTestService(repo, serviceValidator(), cache.NoopCache{}, publisher, serviceLogger())
}

func TestTestService_Create(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)
	test := draftTest(t)

	repo.test.On("ExistsByTitle", mock.Anything, test.Title, "teacher-1", (*uint)(nil)).Return(false, nil)
	repo.test.On("Create", mock.Anything, test).Return(nil)

	created, err := svc.Create(context.Background(), test, "teacher-1")

	assert.NoError(t, err)
	assert.Equal(t, models.TestDraft, created.Status)
	assert.Equal(t, "teacher-1", created.CreatedBy)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, 1, created.TotalQuestions)
	repo.test.AssertExpectations(t)
}

func TestTestService_Create_DuplicateTitle(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)
	test := draftTest(t)

	repo.test.On("ExistsByTitle", mock.Anything, test.Title, "teacher-1", (*uint)(nil)).Return(true, nil)

	_, err := svc.Create(context.Background(), test, "teacher-1")
	assert.ErrorIs(t, err, ErrTestDuplicateTitle)
	repo.test.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTestService_Create_ValidationFailure(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	_, err := svc.Create(context.Background(), &models.Test{Title: "", Modality: "singing", Duration: 10}, "teacher-1")

	assert.Error(t, err)
	assert.True(t, IsValidation(err))
	repo.test.AssertNotCalled(t, "ExistsByTitle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTestService_GetByID_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	repo.test.On("GetByIDWithSections", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestTestService_Update_OnlyOwnerAndDraft(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	stored := draftTest(t)
	stored.ID = 7
	stored.CreatedBy = "teacher-1"
	stored.Status = models.TestDraft
	repo.test.On("GetByIDWithSections", mock.Anything, uint(7)).Return(stored, nil)

	update := draftTest(t)
	update.ID = 7
	_, err := svc.Update(context.Background(), update, "someone-else")
	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
	assert.Equal(t, "update", permErr.Action)

	stored.Status = models.TestPublished
	_, err = svc.Update(context.Background(), update, "teacher-1")
	assert.ErrorIs(t, err, ErrTestNotEditable)
}

func TestTestService_Update_BumpsVersion(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	stored := draftTest(t)
	stored.ID = 7
	stored.CreatedBy = "teacher-1"
	stored.Version = 3
	repo.test.On("GetByIDWithSections", mock.Anything, uint(7)).Return(stored, nil)
	repo.test.On("ExistsByTitle", mock.Anything, mock.Anything, "teacher-1", mock.Anything).Return(false, nil)
	repo.test.On("Update", mock.Anything, mock.Anything).Return(nil)

	update := draftTest(t)
	update.ID = 7
	updated, err := svc.Update(context.Background(), update, "teacher-1")

	assert.NoError(t, err)
	assert.Equal(t, 4, updated.Version)
	assert.Equal(t, "teacher-1", updated.CreatedBy)
}

func TestTestService_Delete_PublishedRejected(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	stored := draftTest(t)
	stored.ID = 7
	stored.CreatedBy = "teacher-1"
	stored.Status = models.TestPublished
	repo.test.On("GetByIDWithSections", mock.Anything, uint(7)).Return(stored, nil)

	err := svc.Delete(context.Background(), 7, "teacher-1")
	assert.True(t, IsBusinessRule(err))
	repo.test.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTestService_Publish(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(serviceLogger())
	svc := newTestServiceWithMocks(repo, publisher)

	stored := draftTest(t)
	stored.ID = 7
	stored.CreatedBy = "teacher-1"
	repo.test.On("GetByIDWithSections", mock.Anything, uint(7)).Return(stored, nil)
	repo.test.On("UpdateStatus", mock.Anything, uint(7), models.TestPublished).Return(nil)

	published, err := svc.Publish(context.Background(), 7, "teacher-1")

	assert.NoError(t, err)
	assert.Equal(t, models.TestPublished, published.Status)

	emitted := publisher.GetPublishedEvents()
	assert.Len(t, emitted, 1)
	assert.Equal(t, events.EventTestPublished, emitted[0].Type)
}

func TestTestService_Publish_EmptyTestRejected(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	stored := &models.Test{
		ID:        7,
		Title:     "Empty",
		Modality:  models.ModalityReading,
		Duration:  3600,
		CreatedBy: "teacher-1",
		Status:    models.TestDraft,
		Sections:  []models.Section{{Title: "Passage 1"}},
	}
	repo.test.On("GetByIDWithSections", mock.Anything, uint(7)).Return(stored, nil)

	_, err := svc.Publish(context.Background(), 7, "teacher-1")
	assert.ErrorIs(t, err, ErrTestHasNoQuestions)
	repo.test.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestTestService_Archive_RequiresPublished(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	stored := draftTest(t)
	stored.ID = 7
	stored.CreatedBy = "teacher-1"
	stored.Status = models.TestDraft
	repo.test.On("GetByIDWithSections", mock.Anything, uint(7)).Return(stored, nil)

	_, err := svc.Archive(context.Background(), 7, "teacher-1")
	assert.ErrorIs(t, err, ErrTestInvalidStatus)
}

func TestTestService_GetPublished_DraftInvisible(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	stored := draftTest(t)
	stored.ID = 7
	stored.Status = models.TestDraft
	repo.test.On("GetByIDWithSections", mock.Anything, uint(7)).Return(stored, nil)

	_, err := svc.GetPublished(context.Background(), 7)
	assert.ErrorIs(t, err, ErrTestNotPublished)
}

func TestTestService_List_ClampsLimit(t *testing.T) {
	repo := newMockRepository()
	svc := newTestServiceWithMocks(repo, nil)

	repo.test.On("List", mock.Anything, mock.MatchedBy(func(f repositories.TestFilters) bool {
		return f.Limit == 20
	})).Return([]*models.Test{}, int64(0), nil)

	_, _, err := svc.List(context.Background(), repositories.TestFilters{Limit: 500})
	assert.NoError(t, err)
	repo.test.AssertExpectations(t)
}
