package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/ieltsprep/exam-service/internal/ai"
	"github.com/ieltsprep/exam-service/internal/events"
	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/scoring"
	"github.com/ieltsprep/exam-service/internal/session"
)

// ExamService drives a user's live attempt: starting a published test,
// submitting answers, navigating sections, the countdown, completion
// and asynchronous essay scoring.
type ExamService interface {
	Start(ctx context.Context, userID string, testID uint) (*models.TestProgress, error)
	Progress(ctx context.Context, userID string) (*models.TestProgress, error)
	SubmitAnswer(ctx context.Context, userID string, questionID uint, subQuestionID *uint, payload any) (*models.Answer, error)
	NextSection(ctx context.Context, userID string) (*models.TestProgress, error)
	PreviousSection(ctx context.Context, userID string) (*models.TestProgress, error)
	JumpToSection(ctx context.Context, userID string, index int) (*models.TestProgress, error)
	UpdateTime(ctx context.Context, userID string, seconds int) error
	Complete(ctx context.Context, userID string) (*models.TestResult, error)
	Reset(ctx context.Context, userID string) error
	ScoreEssay(ctx context.Context, userID string, questionID uint) (*models.Answer, error)
	Similarity(ctx context.Context, reference, response string) (float64, error)
}

type examService struct {
	sessions  *session.Manager
	tests     TestService
	results   ResultService
	scorer    *ai.Client
	scoring   scoring.Config
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewExamService(
	sessions *session.Manager,
	tests TestService,
	results ResultService,
	scorer *ai.Client,
	scoringCfg scoring.Config,
	publisher events.EventPublisher,
	logger *slog.Logger,
) ExamService {
	return &examService{
		sessions:  sessions,
		tests:     tests,
		results:   results,
		scorer:    scorer,
		scoring:   scoringCfg,
		publisher: publisher,
		logger:    logger,
	}
}

// Start loads the published test into the user's session and begins a
// fresh attempt. Any previous attempt for this user is discarded.
func (s *examService) Start(ctx context.Context, userID string, testID uint) (*models.TestProgress, error) {
	test, err := s.tests.GetPublished(ctx, testID)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.ForUser(userID)
	sess.LoadTest(test)
	sess.Start()

	progress := sess.Progress()
	if progress == nil {
		return nil, ErrInternalError
	}

	s.publishEvent(ctx, events.EventSessionStarted, &events.SessionStartedEvent{
		Token:     progress.Token,
		TestID:    test.ID,
		TestTitle: test.Title,
		UserID:    userID,
		StartedAt: progress.StartedAt,
		Duration:  test.Duration,
	})
	return progress, nil
}

func (s *examService) Progress(ctx context.Context, userID string) (*models.TestProgress, error) {
	progress := s.sessions.ForUser(userID).Progress()
	if progress == nil {
		return nil, ErrSessionNotFound
	}
	return progress, nil
}

func (s *examService) SubmitAnswer(ctx context.Context, userID string, questionID uint, subQuestionID *uint, payload any) (*models.Answer, error) {
	sess := s.sessions.ForUser(userID)

	answer := sess.SubmitAnswer(questionID, payload, subQuestionID)
	if answer == nil {
		switch sess.State() {
		case session.StateNotStarted:
			return nil, ErrSessionNotFound
		case session.StateCompleted:
			return nil, ErrSessionAlreadyCompleted
		default:
			return nil, ErrQuestionNotFound
		}
	}
	return answer, nil
}

func (s *examService) NextSection(ctx context.Context, userID string) (*models.TestProgress, error) {
	sess := s.sessions.ForUser(userID)
	if sess.State() == session.StateNotStarted {
		return nil, ErrSessionNotFound
	}
	sess.NextSection()

	// Advancing past the last section completes the attempt.
	if sess.State() == session.StateCompleted {
		if _, err := s.recordResult(ctx, userID, sess); err != nil {
			s.logger.Error("Failed to record result after final section", "user_id", userID, "error", err)
		}
	}
	return sess.Progress(), nil
}

func (s *examService) PreviousSection(ctx context.Context, userID string) (*models.TestProgress, error) {
	sess := s.sessions.ForUser(userID)
	if sess.State() == session.StateNotStarted {
		return nil, ErrSessionNotFound
	}
	sess.PreviousSection()
	return sess.Progress(), nil
}

func (s *examService) JumpToSection(ctx context.Context, userID string, index int) (*models.TestProgress, error) {
	sess := s.sessions.ForUser(userID)
	if sess.State() == session.StateNotStarted {
		return nil, ErrSessionNotFound
	}
	sess.JumpToSection(index)
	return sess.Progress(), nil
}

func (s *examService) UpdateTime(ctx context.Context, userID string, seconds int) error {
	sess := s.sessions.ForUser(userID)
	if sess.State() != session.StateInProgress {
		return ErrSessionNotActive
	}
	sess.UpdateTimeRemaining(seconds)
	return nil
}

// Complete finalizes the attempt and persists the result. Once the
// state machine has completed, a storage failure is returned to the
// caller but the attempt stays completed.
func (s *examService) Complete(ctx context.Context, userID string) (*models.TestResult, error) {
	sess := s.sessions.ForUser(userID)

	switch sess.State() {
	case session.StateNotStarted:
		return nil, ErrSessionNotFound
	case session.StateCompleted:
		return nil, ErrSessionAlreadyCompleted
	}

	sess.Complete()
	return s.recordResult(ctx, userID, sess)
}

func (s *examService) Reset(ctx context.Context, userID string) error {
	sess := s.sessions.ForUser(userID)
	if sess.State() == session.StateNotStarted {
		return ErrSessionNotFound
	}
	sess.Reset()
	return nil
}

// ScoreEssay sends a writing answer to the AI scorer and merges the
// band score back into the attempt. The session token is captured
// before the call: if the attempt was reset or restarted while the
// scorer ran, the stale result is dropped.
func (s *examService) ScoreEssay(ctx context.Context, userID string, questionID uint) (*models.Answer, error) {
	if s.scorer == nil {
		return nil, ErrScorerUnavailable
	}

	sess := s.sessions.ForUser(userID)
	test := sess.Test()
	progress := sess.Progress()
	if test == nil || progress == nil {
		return nil, ErrSessionNotFound
	}

	q, _ := test.QuestionByID(questionID)
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	if q.Type != models.WritingTask1 && q.Type != models.WritingTask2 {
		return nil, ErrScoringNotAllowed
	}

	answer, ok := progress.Answers[models.AnswerKey(questionID, nil)]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	essay := writingText(answer.Payload)
	if essay == "" {
		return nil, ErrScoringNotAllowed
	}
	// Essays under the minimum length were already scored zero on
	// submission; the external scorer is never consulted for them.
	if len(essay) < s.scoring.MinEssayLength {
		return answer, nil
	}

	var content models.WritingTaskContent
	if err := json.Unmarshal(q.Content, &content); err != nil {
		return nil, fmt.Errorf("failed to decode writing task content: %w", err)
	}

	token := progress.Token

	resp, err := s.scorer.ScoreEssay(ctx, &ai.ScoreRequest{
		Prompt:        content.Prompt,
		Essay:         essay,
		ScoringPrompt: content.ScoringPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("essay scoring failed: %w", err)
	}

	if !sess.MergeAIScore(token, questionID, resp.Score, resp.Feedback) {
		return nil, ErrSessionTokenMismatch
	}

	s.publishEvent(ctx, events.EventEssayScored, &events.EssayScoredEvent{
		Token:      token,
		TestID:     test.ID,
		QuestionID: questionID,
		UserID:     userID,
		BandScore:  resp.Score,
	})

	updated := sess.Progress()
	if updated == nil {
		return nil, ErrSessionNotFound
	}
	return updated.Answers[models.AnswerKey(questionID, nil)], nil
}

func (s *examService) Similarity(ctx context.Context, reference, response string) (float64, error) {
	if s.scorer == nil {
		return 0, ErrScorerUnavailable
	}
	resp, err := s.scorer.Similarity(ctx, &ai.SimilarityRequest{
		Reference: reference,
		Candidate: response,
	})
	if err != nil {
		return 0, fmt.Errorf("similarity scoring failed: %w", err)
	}
	return resp.Similarity, nil
}

// ===== HELPERS =====

func (s *examService) recordResult(ctx context.Context, userID string, sess *session.Session) (*models.TestResult, error) {
	return s.results.Record(ctx, userID, sess.Test(), sess.Progress())
}

func (s *examService) publishEvent(ctx context.Context, eventType events.EventType, data interface{}) {
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

func writingText(payload any) string {
	switch v := payload.(type) {
	case models.WritingAnswer:
		return v.Text
	case *models.WritingAnswer:
		return v.Text
	}
	return ""
}
