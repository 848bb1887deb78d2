package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/repositories"
)

// ImportExportService moves test definitions and results across the
// service boundary: YAML in for authoring, CSV/XLSX out for reporting.
type ImportExportService interface {
	ImportTestFromYAML(ctx context.Context, data []byte, creatorID string) (*models.Test, error)
	ExportResultsToCSV(ctx context.Context, testID uint, userID string) ([]byte, error)
	ExportResultsToExcel(ctx context.Context, testID uint, userID string) ([]byte, error)
}

type importExportService struct {
	repo   repositories.Repository
	tests  TestService
	logger *slog.Logger
}

func NewImportExportService(repo repositories.Repository, tests TestService, logger *slog.Logger) ImportExportService {
	return &importExportService{
		repo:   repo,
		tests:  tests,
		logger: logger,
	}
}

// ===== YAML IMPORT =====

// testDocument is the YAML authoring format. Question content is a
// free-form mapping validated against the question type after decode.
type testDocument struct {
	Title        string            `yaml:"title"`
	Description  string            `yaml:"description"`
	Modality     string            `yaml:"modality"`
	Duration     int               `yaml:"duration"`
	Instructions string            `yaml:"instructions"`
	Sections     []sectionDocument `yaml:"sections"`
}

type sectionDocument struct {
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Duration    int                `yaml:"duration"`
	AudioURL    string             `yaml:"audio_url"`
	Passage     string             `yaml:"passage"`
	Questions   []questionDocument `yaml:"questions"`
}

type questionDocument struct {
	Type         string                `yaml:"type"`
	Text         string                `yaml:"text"`
	Points       float64               `yaml:"points"`
	Strategy     string                `yaml:"strategy"`
	Content      map[string]any        `yaml:"content"`
	SubQuestions []subQuestionDocument `yaml:"sub_questions"`
}

type subQuestionDocument struct {
	Text     string   `yaml:"text"`
	Points   float64  `yaml:"points"`
	Accepted []string `yaml:"accepted"`
}

func (s *importExportService) ImportTestFromYAML(ctx context.Context, data []byte, creatorID string) (*models.Test, error) {
	var doc testDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML: %v", ErrBadRequest, err)
	}

	test, err := doc.toModel()
	if err != nil {
		return nil, err
	}

	created, err := s.tests.Create(ctx, test, creatorID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Test imported from YAML",
		"test_id", created.ID,
		"title", created.Title,
		"questions", created.TotalQuestions,
		"creator_id", creatorID)
	return created, nil
}

func (d *testDocument) toModel() (*models.Test, error) {
	test := &models.Test{
		Title:        d.Title,
		Modality:     models.Modality(d.Modality),
		Duration:     d.Duration,
		Instructions: d.Instructions,
	}

	for si, sd := range d.Sections {
		section := models.Section{
			Title:       sd.Title,
			Description: sd.Description,
			Duration:    sd.Duration,
			Order:       si + 1,
		}
		if sd.AudioURL != "" {
			url := sd.AudioURL
			section.AudioURL = &url
		}
		if sd.Passage != "" {
			passage := sd.Passage
			section.Passage = &passage
		}

		for qi, qd := range sd.Questions {
			question, err := qd.toModel(qi + 1)
			if err != nil {
				return nil, fmt.Errorf("section %d question %d: %w", si+1, qi+1, err)
			}
			section.Questions = append(section.Questions, *question)
		}
		test.Sections = append(test.Sections, section)
	}
	return test, nil
}

func (d *questionDocument) toModel(index int) (*models.Question, error) {
	content, err := json.Marshal(d.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: question content not serializable: %v", ErrQuestionInvalidContent, err)
	}

	strategy := models.ScoringStrategy(d.Strategy)
	if d.Strategy == "" {
		strategy = models.StrategyAllOrNothing
	}

	question := &models.Question{
		Type:     models.QuestionType(d.Type),
		Text:     d.Text,
		Points:   d.Points,
		Strategy: strategy,
		Index:    index,
		Content:  content,
	}

	for i, sd := range d.SubQuestions {
		question.SubQuestions = append(question.SubQuestions, models.SubQuestion{
			Index:           i + 1,
			Text:            sd.Text,
			Points:          sd.Points,
			AcceptedAnswers: sd.Accepted,
		})
	}
	return question, nil
}

// ===== RESULT EXPORT =====

var resultExportHeaders = []string{
	"Token", "User ID", "Started At", "Completed At",
	"Total Score", "Max Score", "Percentage", "Band Estimate",
	"Answered", "Correct", "Incorrect",
}

func (s *importExportService) ExportResultsToCSV(ctx context.Context, testID uint, userID string) ([]byte, error) {
	results, err := s.resultsForExport(ctx, testID, userID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultExportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write(resultToRow(result)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return []byte(buf.String()), nil
}

func (s *importExportService) ExportResultsToExcel(ctx context.Context, testID uint, userID string) ([]byte, error) {
	results, err := s.resultsForExport(ctx, testID, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range resultExportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIndex, result := range results {
		for colIndex, value := range resultToRow(result) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) resultsForExport(ctx context.Context, testID uint, userID string) ([]*models.TestResult, error) {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if test.CreatedBy != userID {
		return nil, NewPermissionError(userID, testID, "test", "export_results", "not the test owner")
	}

	results, _, err := s.repo.Result().List(ctx, repositories.ResultFilters{TestID: &testID, Limit: 10000})
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}
	return results, nil
}

func resultToRow(r *models.TestResult) []string {
	return []string{
		r.Token,
		r.UserID,
		r.StartedAt.Format(time.RFC3339),
		r.CompletedAt.Format(time.RFC3339),
		fmt.Sprintf("%.1f", r.TotalScore),
		fmt.Sprintf("%.1f", r.MaxPossibleScore),
		fmt.Sprintf("%d", r.Percentage),
		fmt.Sprintf("%.1f", r.BandEstimate),
		fmt.Sprintf("%d", r.AnsweredQuestions),
		fmt.Sprintf("%d", r.CorrectAnswers),
		fmt.Sprintf("%d", r.IncorrectAnswers),
	}
}
