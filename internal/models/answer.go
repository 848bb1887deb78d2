package models

import (
	"fmt"
	"time"
)

// ===== RAW ANSWER PAYLOADS =====

// SelectionAnswer is a single option pick (multiple choice, matching
// when submitted per item, TFNG verdicts).
type SelectionAnswer struct {
	SelectedOption string `json:"selected_option"`
	TimeSpent      int    `json:"time_spent,omitempty"`
}

// UnitAnswers maps unit id (blank, statement, match item) to the
// response for that unit. Used for whole-question submission of
// composite types.
type UnitAnswers struct {
	Answers   map[string]string `json:"answers"`
	TimeSpent int               `json:"time_spent,omitempty"`
}

// TextAnswer is a free-text response for a single gradable unit. For
// translation and word-form units the UI may attach the AI similarity
// score (0..1) it obtained against the reference answer.
type TextAnswer struct {
	Text       string   `json:"text"`
	Similarity *float64 `json:"similarity,omitempty"`
	TimeSpent  int      `json:"time_spent,omitempty"`
}

// WritingAnswer holds an essay and, once the external scorer has
// responded, the band score and feedback merged back in. A nil
// BandScore means "not yet scored", which is distinct from zero.
type WritingAnswer struct {
	Text      string   `json:"text"`
	WordCount int      `json:"word_count,omitempty"`
	BandScore *float64 `json:"band_score,omitempty"`
	Feedback  string   `json:"feedback,omitempty"`
	TimeSpent int      `json:"time_spent,omitempty"`
}

// ===== ANSWER RECORD =====

// Answer is the scored record for one question, or one sub-question
// when the type is scored per sub-unit. Invariant: Score <= MaxScore.
type Answer struct {
	QuestionID       uint         `json:"question_id"`
	SubQuestionID    *uint        `json:"sub_question_id,omitempty"`
	ParentQuestionID *uint        `json:"parent_question_id,omitempty"`
	SectionID        uint         `json:"section_id"`
	QuestionType     QuestionType `json:"question_type"`
	QuestionIndex    int          `json:"question_index"`

	Payload   any     `json:"payload"`
	IsCorrect bool    `json:"is_correct"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"max_score"`
	Feedback  string  `json:"feedback,omitempty"`

	// Pending marks AI-scored answers whose score has not arrived yet.
	Pending bool `json:"pending,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// AnswerKey builds the map key for an answer record: the sub-question
// id when the submission targets a sub-unit, the question id otherwise.
func AnswerKey(questionID uint, subQuestionID *uint) string {
	if subQuestionID != nil {
		return fmt.Sprintf("s%d", *subQuestionID)
	}
	return fmt.Sprintf("q%d", questionID)
}
