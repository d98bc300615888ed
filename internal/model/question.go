package model

import (
	"time"

	"gorm.io/gorm"
)

// Subject partitions the question bank into study categories within an exam.
type Subject struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ExamCode  string         `json:"exam_code" gorm:"size:20;not null;index"`
	Name      string         `json:"name" gorm:"size:200;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Question is read-only reference data from the application's perspective:
// rows are ingested through the admin surface and never mutated by quiz flows,
// except for explanation backfill.
type Question struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	SubjectID   uint           `json:"subject_id" gorm:"not null;index"`
	Subject     Subject        `json:"-" gorm:"foreignKey:SubjectID"`
	ExamCode    string         `json:"exam_code" gorm:"size:20;not null;index"`
	Content     string         `json:"content" gorm:"type:text;not null"`
	ImageURL    *string        `json:"image_url,omitempty"`
	Explanation *string        `json:"explanation,omitempty" gorm:"type:text"`
	Answers     []Answer       `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
