// Package session owns the lifecycle of one exam attempt: the loaded
// test, the cursor, the timer value and the answer map. All mutation
// goes through the transition methods here; everything else reads
// snapshots.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/ieltsprep/exam-service/internal/models"
	"github.com/ieltsprep/exam-service/internal/scoring"
)

// State is the attempt lifecycle position.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Session is the progress state machine for a single attempt.
// Precondition violations (answering with no active attempt,
// navigating before a test is loaded) are deliberate no-ops: callers
// are trusted UI code operating under state gating, and nothing here
// should ever take the attempt down.
type Session struct {
	mu sync.Mutex

	engine *scoring.Engine
	logger *slog.Logger

	test     *models.Test
	progress *models.TestProgress
}

func New(engine *scoring.Engine, logger *slog.Logger) *Session {
	return &Session{engine: engine, logger: logger}
}

// LoadTest stores the test definition. It does not create progress;
// Start does. Loading a new test discards any previous attempt.
func (s *Session) LoadTest(t *models.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.test = t
	s.progress = nil
}

// Start creates a fresh TestProgress for the loaded test. No-op when
// no test is loaded or an attempt already exists; Reset first to
// restart.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.test == nil || s.progress != nil {
		return
	}

	s.progress = &models.TestProgress{
		TestID:        s.test.ID,
		Token:         watermill.NewShortUUID(),
		TimeRemaining: s.test.Duration,
		StartedAt:     time.Now(),
		Answers:       make(map[string]*models.Answer),
	}

	s.logger.Info("test session started",
		"test_id", s.test.ID,
		"token", s.progress.Token,
		"duration", s.test.Duration)
}

// SubmitAnswer scores a submission and upserts the answer record
// keyed by sub-question id when given, question id otherwise.
// Resubmitting the same key overwrites; the map never accumulates
// duplicates. Questions outside the loaded test are rejected with no
// state change. Returns the stored record, nil when rejected.
func (s *Session) SubmitAnswer(questionID uint, raw any, subQuestionID *uint) *models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.test == nil || s.progress == nil || s.progress.Completed {
		return nil
	}

	q, sec := s.test.QuestionByID(questionID)
	if q == nil {
		s.logger.Warn("answer rejected: question not in loaded test",
			"question_id", questionID,
			"test_id", s.test.ID)
		return nil
	}

	var sub *models.SubQuestion
	if subQuestionID != nil {
		for i := range q.SubQuestions {
			if q.SubQuestions[i].ID == *subQuestionID {
				sub = &q.SubQuestions[i]
				break
			}
		}
		if sub == nil {
			s.logger.Warn("answer rejected: sub-question not in question",
				"question_id", questionID,
				"sub_question_id", *subQuestionID)
			return nil
		}
	}

	outcome := s.engine.Score(q, sub, raw)

	answer := &models.Answer{
		QuestionID:    questionID,
		SubQuestionID: subQuestionID,
		SectionID:     sec.ID,
		QuestionType:  q.Type,
		QuestionIndex: q.Index,
		Payload:       raw,
		IsCorrect:     outcome.IsCorrect,
		Score:         outcome.Score,
		MaxScore:      scoring.MaxScore(q, sub),
		Feedback:      outcome.Feedback,
		Pending:       outcome.Pending,
		SubmittedAt:   time.Now(),
	}
	if sub != nil {
		parent := questionID
		answer.ParentQuestionID = &parent
	}

	s.progress.Answers[models.AnswerKey(questionID, subQuestionID)] = answer
	return answer
}

// NextSection advances the cursor; past the last section it completes
// the attempt instead of walking out of range.
func (s *Session) NextSection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.test == nil || s.progress == nil || s.progress.Completed {
		return
	}
	if s.progress.CurrentSection+1 >= len(s.test.Sections) {
		s.completeLocked()
		return
	}
	s.progress.CurrentSection++
	s.progress.CurrentQuestion = 0
}

// PreviousSection moves back one section; at index 0 it is a no-op.
func (s *Session) PreviousSection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progress == nil || s.progress.Completed || s.progress.CurrentSection == 0 {
		return
	}
	s.progress.CurrentSection--
	s.progress.CurrentQuestion = 0
}

// JumpToSection moves the cursor to an arbitrary in-range section.
func (s *Session) JumpToSection(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.test == nil || s.progress == nil || s.progress.Completed {
		return
	}
	if index < 0 || index >= len(s.test.Sections) {
		return
	}
	s.progress.CurrentSection = index
	s.progress.CurrentQuestion = 0
}

// Complete sums the answer scores into the final aggregate and marks
// the attempt completed. Irreversible within the session; only Reset
// exits the completed state.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progress == nil || s.progress.Completed {
		return
	}
	s.completeLocked()
}

func (s *Session) completeLocked() {
	var total float64
	for _, a := range s.progress.Answers {
		total += a.Score
	}
	now := time.Now()
	s.progress.Score = total
	s.progress.Completed = true
	s.progress.CompletedAt = &now

	s.logger.Info("test session completed",
		"test_id", s.progress.TestID,
		"token", s.progress.Token,
		"score", total,
		"answers", len(s.progress.Answers))
}

// UpdateTimeRemaining is a pure setter driven by the countdown. The
// machine never force-completes on zero; that decision belongs to the
// timer's owner.
func (s *Session) UpdateTimeRemaining(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progress == nil || s.progress.Completed {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	s.progress.TimeRemaining = seconds
}

// Reset discards the attempt entirely and returns to the not-started
// state. The old progress is dropped, never mutated in place, so a
// completed attempt another component still holds stays intact.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = nil
}

// MergeAIScore folds an asynchronously produced essay score into the
// answer it was requested for. The token pins the attempt the request
// was made under: a result arriving after Complete or Reset carries a
// stale token and is dropped rather than merged into newer state.
func (s *Session) MergeAIScore(token string, questionID uint, band float64, feedback string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.test == nil || s.progress == nil || s.progress.Token != token || s.progress.Completed {
		return false
	}

	key := models.AnswerKey(questionID, nil)
	answer, ok := s.progress.Answers[key]
	if !ok {
		return false
	}
	writing, ok := answer.Payload.(models.WritingAnswer)
	if !ok {
		if p, isPtr := answer.Payload.(*models.WritingAnswer); isPtr {
			writing = *p
		} else {
			return false
		}
	}

	writing.BandScore = &band
	writing.Feedback = feedback

	q, _ := s.test.QuestionByID(questionID)
	if q == nil {
		return false
	}
	outcome := s.engine.Score(q, nil, writing)

	answer.Payload = writing
	answer.IsCorrect = outcome.IsCorrect
	answer.Score = outcome.Score
	answer.Feedback = outcome.Feedback
	answer.Pending = outcome.Pending
	return true
}

// ===== READ ACCESS =====

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.progress == nil:
		return StateNotStarted
	case s.progress.Completed:
		return StateCompleted
	default:
		return StateInProgress
	}
}

func (s *Session) Test() *models.Test {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.test
}

// Token returns the current attempt's identity, empty when no attempt
// is live.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress == nil {
		return ""
	}
	return s.progress.Token
}

// Progress returns a snapshot of the attempt state. The answer map is
// copied shallowly; records themselves are not mutated after upsert
// except through MergeAIScore, which replaces fields atomically under
// the session lock.
func (s *Session) Progress() *models.TestProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progress == nil {
		return nil
	}
	snapshot := *s.progress
	snapshot.Answers = make(map[string]*models.Answer, len(s.progress.Answers))
	for k, v := range s.progress.Answers {
		record := *v
		snapshot.Answers[k] = &record
	}
	return &snapshot
}
