package model

import "time"

// UserProgress accumulates per-user/per-question results. One row per
// (user, question) pair, maintained by a single atomic upsert.
type UserProgress struct {
	UserID          uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	QuestionID      uint      `json:"question_id" gorm:"primaryKey;autoIncrement:false"`
	User            User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Question        Question  `json:"-" gorm:"foreignKey:QuestionID"`
	CorrectAttempts int       `json:"correct_attempts" gorm:"not null;default:0"`
	WrongAttempts   int       `json:"wrong_attempts" gorm:"not null;default:0"`
	LastResult      bool      `json:"last_result" gorm:"not null;default:false"`
	LastAttempt     time.Time `json:"last_attempt" gorm:"not null;index"`
}

// Accuracy is correct/(correct+wrong); zero attempts yields 0.
func (p *UserProgress) Accuracy() float64 {
	total := p.CorrectAttempts + p.WrongAttempts
	if total == 0 {
		return 0
	}
	return float64(p.CorrectAttempts) / float64(total)
}

func (UserProgress) TableName() string { return "user_progress" }
