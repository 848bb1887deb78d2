package models

import (
	"time"

	"gorm.io/gorm"
)

// Course sequences published tests into ordered course sessions.
type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Sessions []CourseSession `json:"sessions" gorm:"foreignKey:CourseID"`
}

type CourseSession struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Title    string `json:"title" gorm:"not null;size:200" validate:"required"`
	Order    int    `json:"order" gorm:"not null"`
	TestID   *uint  `json:"test_id,omitempty" gorm:"index"` // optional until a test is attached
	Notes    string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (CourseSession) TableName() string {
	return "course_sessions"
}
