package repository

import (
	"time"

	"github.com/mzalewski/examtrainer/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressSummary struct {
	QuestionsAnswered int
	CorrectAttempts   int
	WrongAttempts     int
}

type ProgressRepository interface {
	// Record is a single atomic upsert keyed on (user_id, question_id):
	// the first call inserts with the triggering counter at 1, later calls
	// increment it. Concurrent duplicate submissions can neither lose an
	// update nor hit a duplicate-key error.
	Record(userID, questionID uint, isCorrect bool, at time.Time) error
	FindByUser(userID uint) ([]model.UserProgress, error)
	Summary(userID uint) (*ProgressSummary, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Record(userID, questionID uint, isCorrect bool, at time.Time) error {
	var correct, wrong int
	if isCorrect {
		correct = 1
	} else {
		wrong = 1
	}

	row := model.UserProgress{
		UserID:          userID,
		QuestionID:      questionID,
		CorrectAttempts: correct,
		WrongAttempts:   wrong,
		LastResult:      isCorrect,
		LastAttempt:     at,
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"correct_attempts": gorm.Expr("user_progress.correct_attempts + ?", correct),
			"wrong_attempts":   gorm.Expr("user_progress.wrong_attempts + ?", wrong),
			"last_result":      isCorrect,
			"last_attempt":     at,
		}),
	}).Create(&row).Error
}

func (r *progressRepository) FindByUser(userID uint) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	err := r.db.Where("user_id = ?", userID).Order("last_attempt DESC").Find(&rows).Error
	return rows, err
}

func (r *progressRepository) Summary(userID uint) (*ProgressSummary, error) {
	var summary ProgressSummary
	err := r.db.Model(&model.UserProgress{}).
		Select("COUNT(*) AS questions_answered, COALESCE(SUM(correct_attempts), 0) AS correct_attempts, COALESCE(SUM(wrong_attempts), 0) AS wrong_attempts").
		Where("user_id = ?", userID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
