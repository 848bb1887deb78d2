package models

import (
	"time"

	"gorm.io/gorm"
)

type Modality string

const (
	ModalityListening Modality = "listening"
	ModalityReading   Modality = "reading"
	ModalityWriting   Modality = "writing"
	ModalitySpeaking  Modality = "speaking"
)

type TestStatus string

const (
	TestDraft     TestStatus = "Draft"
	TestPublished TestStatus = "Published"
	TestArchived  TestStatus = "Archived"
)

// Test is an exam definition. Published tests are immutable from the
// session's point of view: a running session references the test and
// never writes back to it.
type Test struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Modality       Modality   `json:"modality" gorm:"not null;size:20;index" validate:"required,modality"`
	Status         TestStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`
	Duration       int        `json:"duration" gorm:"not null" validate:"required,min=60"` // seconds
	TotalQuestions int        `json:"total_questions" gorm:"not null"`
	Instructions   string     `json:"instructions" gorm:"type:text"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Version int `json:"version" gorm:"default:1"`

	Sections []Section `json:"sections" gorm:"foreignKey:TestID"`
}

// Section groups questions under a shared duration budget and an
// optional audio clip (listening) or reading passage.
type Section struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	TestID      uint    `json:"test_id" gorm:"not null;index"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required"`
	Description string  `json:"description" gorm:"type:text"`
	Duration    int     `json:"duration"` // seconds
	Order       int     `json:"order" gorm:"not null"`
	AudioURL    *string `json:"audio_url,omitempty" gorm:"size:500"`
	Passage     *string `json:"passage,omitempty" gorm:"type:text"`

	Questions []Question `json:"questions" gorm:"foreignKey:SectionID"`
}

func (Test) TableName() string {
	return "tests"
}

func (Section) TableName() string {
	return "sections"
}

// QuestionByID looks a question up across all sections.
func (t *Test) QuestionByID(questionID uint) (*Question, *Section) {
	for i := range t.Sections {
		sec := &t.Sections[i]
		for j := range sec.Questions {
			if sec.Questions[j].ID == questionID {
				return &sec.Questions[j], sec
			}
		}
	}
	return nil, nil
}

// MaxScore sums question points across the whole test.
func (t *Test) MaxScore() float64 {
	var total float64
	for i := range t.Sections {
		for j := range t.Sections[i].Questions {
			total += t.Sections[i].Questions[j].Points
		}
	}
	return total
}
