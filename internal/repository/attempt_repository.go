package repository

import (
	"fmt"

	"github.com/mzalewski/examtrainer/internal/model"
	"gorm.io/gorm"
)

type AttemptStats struct {
	AttemptCount int
	AverageScore float64
	BestScore    float64
}

type AttemptRepository interface {
	// Create inserts the header, the topic links, and the answer rows in one
	// transaction. Any failure rolls everything back; readers never observe
	// a partial attempt.
	Create(attempt *model.ExamAttempt) error
	FindAllByUser(userID uint) ([]model.ExamAttempt, error)
	FindByIDWithDetails(id uint) (*model.ExamAttempt, error)
	Stats(userID uint) (*AttemptStats, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.ExamAttempt) error {
	topics := attempt.Topics
	answers := attempt.Answers
	attempt.Topics = nil
	attempt.Answers = nil

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return fmt.Errorf("failed to create attempt header: %w", err)
		}
		if len(topics) > 0 {
			for i := range topics {
				topics[i].AttemptID = attempt.ID
			}
			if err := tx.Create(&topics).Error; err != nil {
				return fmt.Errorf("failed to create attempt topics: %w", err)
			}
		}
		if len(answers) > 0 {
			for i := range answers {
				answers[i].AttemptID = attempt.ID
			}
			if err := tx.Create(&answers).Error; err != nil {
				return fmt.Errorf("failed to create attempt answers: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	attempt.Topics = topics
	attempt.Answers = answers
	return nil
}

func (r *attemptRepository) FindAllByUser(userID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.db.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindByIDWithDetails(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.db.
		Preload("Topics").
		Preload("Answers").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) Stats(userID uint) (*AttemptStats, error) {
	var stats AttemptStats
	err := r.db.Model(&model.ExamAttempt{}).
		Select("COUNT(*) AS attempt_count, COALESCE(AVG(score_percent), 0) AS average_score, COALESCE(MAX(score_percent), 0) AS best_score").
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
