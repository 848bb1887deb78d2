package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice      QuestionType = "multiple_choice"
	Completion          QuestionType = "completion"
	Matching            QuestionType = "matching"
	MatchingHeadings    QuestionType = "matching_headings"
	TrueFalseNotGiven   QuestionType = "true_false_not_given"
	ShortAnswer         QuestionType = "short_answer"
	Labeling            QuestionType = "labeling"
	PickFromList        QuestionType = "pick_from_list"
	WritingTask1        QuestionType = "writing_task1"
	WritingTask2        QuestionType = "writing_task2"
	WordForm            QuestionType = "word_form"
	SentenceTranslation QuestionType = "sentence_translation"
)

type ScoringStrategy string

const (
	StrategyPartial      ScoringStrategy = "partial"
	StrategyAllOrNothing ScoringStrategy = "all_or_nothing"
)

// Question carries the type-agnostic fields directly and the
// type-specific definition (options, blanks, statements) as a JSON
// content blob decoded by the scorer registered for its type.
type Question struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	SectionID uint            `json:"section_id" gorm:"not null;index"`
	Type      QuestionType    `json:"type" gorm:"not null;size:40;index" validate:"required,question_type"`
	Text      string          `json:"text" gorm:"type:text;not null" validate:"required"`
	Points    float64         `json:"points" gorm:"not null" validate:"required,gt=0"`
	Strategy  ScoringStrategy `json:"strategy" gorm:"not null;size:20;default:all_or_nothing" validate:"omitempty,scoring_strategy"`
	Index     int             `json:"index" gorm:"not null"` // global display number within the test
	Content   datatypes.JSON  `json:"content" gorm:"type:jsonb"`

	SubQuestions []SubQuestion `json:"sub_questions,omitempty" gorm:"foreignKey:QuestionID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubQuestion is an individually scorable unit inside a composite
// question, e.g. one blank of several or one sentence to translate.
type SubQuestion struct {
	ID              uint                       `json:"id" gorm:"primaryKey"`
	QuestionID      uint                       `json:"question_id" gorm:"not null;index"`
	Index           int                        `json:"index" gorm:"not null"`
	Points          float64                    `json:"points" gorm:"not null" validate:"required,gt=0"`
	Text            string                     `json:"text" gorm:"type:text"`
	AcceptedAnswers datatypes.JSONSlice[string] `json:"accepted_answers" gorm:"type:jsonb"`
}

func (Question) TableName() string {
	return "questions"
}

// ===== TYPE-SPECIFIC CONTENT =====

type ChoiceOption struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
}

type MultipleChoiceContent struct {
	Options []ChoiceOption `json:"options"`
}

// Blank is one gradable gap with its acceptable alternatives.
type Blank struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt,omitempty"`
	Accepted []string `json:"accepted"`
}

type CompletionContent struct {
	Blanks []Blank `json:"blanks"`
}

type ShortAnswerContent struct {
	Items     []Blank `json:"items"`
	WordLimit int     `json:"word_limit,omitempty"`
}

type LabelingContent struct {
	ImageURL string  `json:"image_url"`
	Labels   []Blank `json:"labels"`
}

// MatchItem pairs a prompt with the option key that answers it.
type MatchItem struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CorrectOption string `json:"correct_option"`
}

type MatchingContent struct {
	Items   []MatchItem `json:"items"`
	Options []string    `json:"options"`
}

type MatchingHeadingsContent struct {
	Paragraphs []MatchItem `json:"paragraphs"`
	Headings   []string    `json:"headings"`
}

type TFNGVerdict string

const (
	VerdictTrue     TFNGVerdict = "true"
	VerdictFalse    TFNGVerdict = "false"
	VerdictNotGiven TFNGVerdict = "not_given"
)

type Statement struct {
	ID      string      `json:"id"`
	Text    string      `json:"text"`
	Verdict TFNGVerdict `json:"verdict"`
}

type TrueFalseNotGivenContent struct {
	Statements []Statement `json:"statements"`
}

type PickFromListContent struct {
	Options []string `json:"options"`
	Slots   []Blank  `json:"slots"`
}

type WritingTaskContent struct {
	Prompt        string `json:"prompt"`
	ScoringPrompt string `json:"scoring_prompt,omitempty"`
	MinWords      int    `json:"min_words,omitempty"`
	ImageURL      string `json:"image_url,omitempty"` // task 1 chart/diagram
}
