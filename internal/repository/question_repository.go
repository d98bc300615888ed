package repository

import (
	"github.com/mzalewski/examtrainer/internal/model"
	"gorm.io/gorm"
)

// accuracyExpr computes correct/(correct+wrong) in SQL; the cast avoids
// Postgres integer division.
const accuracyExpr = "up.correct_attempts::float / (up.correct_attempts + up.wrong_attempts)"

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByIDWithAnswers(id uint) (*model.Question, error)
	Update(question *model.Question) error

	// FindRandom returns up to limit questions in scope, uniformly shuffled.
	FindRandom(examCode string, subjectIDs []uint, limit int) ([]model.Question, error)
	// FindUnseen returns questions the user has no progress row for.
	FindUnseen(userID uint, examCode string, subjectIDs []uint, limit int) ([]model.Question, error)
	// FindLowAccuracy returns attempted questions below the accuracy
	// threshold, worst first.
	FindLowAccuracy(userID uint, examCode string, subjectIDs []uint, limit int, threshold float64) ([]model.Question, error)
	// FindStale returns attempted questions ordered by oldest last attempt.
	FindStale(userID uint, examCode string, subjectIDs []uint, limit int) ([]model.Question, error)
	// FindRecentMistakes returns questions whose most recent attempt failed,
	// most recent first.
	FindRecentMistakes(userID uint, examCode string, subjectIDs []uint, limit int) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	// Creates the answer rows along with the question.
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByIDWithAnswers(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.Preload("Answers").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *questionRepository) scope(examCode string, subjectIDs []uint) *gorm.DB {
	return r.db.Preload("Answers").
		Where("questions.exam_code = ? AND questions.subject_id IN ?", examCode, subjectIDs)
}

func (r *questionRepository) FindRandom(examCode string, subjectIDs []uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.scope(examCode, subjectIDs).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindUnseen(userID uint, examCode string, subjectIDs []uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.scope(examCode, subjectIDs).
		Joins("LEFT JOIN user_progress up ON up.question_id = questions.id AND up.user_id = ?", userID).
		Where("up.question_id IS NULL").
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindLowAccuracy(userID uint, examCode string, subjectIDs []uint, limit int, threshold float64) ([]model.Question, error) {
	var questions []model.Question
	err := r.scope(examCode, subjectIDs).
		Joins("JOIN user_progress up ON up.question_id = questions.id AND up.user_id = ?", userID).
		Where("up.correct_attempts + up.wrong_attempts > 0").
		Where(accuracyExpr+" < ?", threshold).
		Order(accuracyExpr + " ASC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindStale(userID uint, examCode string, subjectIDs []uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.scope(examCode, subjectIDs).
		Joins("JOIN user_progress up ON up.question_id = questions.id AND up.user_id = ?", userID).
		Order("up.last_attempt ASC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindRecentMistakes(userID uint, examCode string, subjectIDs []uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.scope(examCode, subjectIDs).
		Joins("JOIN user_progress up ON up.question_id = questions.id AND up.user_id = ?", userID).
		Where("up.last_result = ?", false).
		Order("up.last_attempt DESC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}
