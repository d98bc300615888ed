package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TestTypePersonalized = "personalized"
	TestTypeFullExam     = "full_exam"
)

// ExamAttempt is the immutable header of one completed timed test. Child rows
// record the contributing topics and the chosen answer per question. Created
// atomically; never mutated afterward.
type ExamAttempt struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	UserID          uint                `json:"user_id" gorm:"not null;index"`
	User            User                `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExamCode        string              `json:"exam_code" gorm:"size:20;not null;index"`
	TestType        string              `json:"test_type" gorm:"size:20;not null"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     time.Time           `json:"completed_at" gorm:"not null;index"`
	CorrectAnswers  int                 `json:"correct_answers" gorm:"not null"`
	TotalQuestions  int                 `json:"total_questions" gorm:"not null"`
	ScorePercent    float64             `json:"score_percent" gorm:"not null"`
	DurationSeconds int                 `json:"duration_seconds" gorm:"not null"`
	Metadata        datatypes.JSON      `json:"metadata,omitempty"`
	Topics          []ExamAttemptTopic  `json:"topics,omitempty" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
	Answers         []ExamAttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

// ExamAttemptTopic links an attempt to one contributing subject.
type ExamAttemptTopic struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	AttemptID uint    `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_topic"`
	SubjectID uint    `json:"subject_id" gorm:"not null;uniqueIndex:idx_attempt_topic"`
	Subject   Subject `json:"-" gorm:"foreignKey:SubjectID"`
}

// ExamAttemptAnswer records the answer chosen for one question of the attempt.
// AnswerID is nil when the question timed out unanswered.
type ExamAttemptAnswer struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	AttemptID  uint  `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint  `json:"question_id" gorm:"not null"`
	AnswerID   *uint `json:"answer_id"`
	IsCorrect  bool  `json:"is_correct" gorm:"not null;default:false"`
}
