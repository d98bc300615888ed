package repository

import (
	"github.com/mzalewski/examtrainer/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	FindByQuestionID(questionID uint) ([]model.Answer, error)
	// FindCorrect returns gorm.ErrRecordNotFound when the question has no
	// answer flagged correct; callers surface that as a data-integrity 404.
	FindCorrect(questionID uint) (*model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) FindByQuestionID(questionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.Where("question_id = ?", questionID).Find(&answers).Error
	return answers, err
}

func (r *answerRepository) FindCorrect(questionID uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.Where("question_id = ? AND is_correct = ?", questionID, true).
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}
