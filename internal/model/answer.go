package model

// Answer is one option of a multiple-choice question. Exactly one answer per
// question carries IsCorrect; admin ingestion rejects sets that violate this.
type Answer struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Content    string `json:"content" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"-" gorm:"not null;default:false"`
}
