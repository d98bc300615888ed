package service

import (
	"fmt"
	"time"

	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/repository"
	"github.com/rs/zerolog/log"
)

type ProgressService interface {
	Record(userID uint, entry dto.ProgressEntry) error
	// RecordBulk applies each entry independently; a failing entry does not
	// roll back the others (the client's end-of-test batch tolerates partial
	// success).
	RecordBulk(userID uint, entries []dto.ProgressEntry) error
	Stats(userID uint) (*dto.UserStatsResponse, error)
}

type progressService struct {
	progress repository.ProgressRepository
	attempts repository.AttemptRepository
}

func NewProgressService(progress repository.ProgressRepository, attempts repository.AttemptRepository) ProgressService {
	return &progressService{progress: progress, attempts: attempts}
}

func (s *progressService) Record(userID uint, entry dto.ProgressEntry) error {
	return s.progress.Record(userID, entry.QuestionID, entry.IsCorrect, time.Now())
}

func (s *progressService) RecordBulk(userID uint, entries []dto.ProgressEntry) error {
	now := time.Now()
	failed := 0
	for _, entry := range entries {
		if err := s.progress.Record(userID, entry.QuestionID, entry.IsCorrect, now); err != nil {
			failed++
			log.Error().Err(err).Uint("userID", userID).Uint("questionID", entry.QuestionID).
				Msg("Failed to record progress entry")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d progress updates failed", failed, len(entries))
	}
	return nil
}

func (s *progressService) Stats(userID uint) (*dto.UserStatsResponse, error) {
	summary, err := s.progress.Summary(userID)
	if err != nil {
		return nil, err
	}
	attemptStats, err := s.attempts.Stats(userID)
	if err != nil {
		return nil, err
	}

	accuracy := 0.0
	if total := summary.CorrectAttempts + summary.WrongAttempts; total > 0 {
		accuracy = float64(summary.CorrectAttempts) / float64(total)
	}

	return &dto.UserStatsResponse{
		Success:           true,
		QuestionsAnswered: summary.QuestionsAnswered,
		CorrectAttempts:   summary.CorrectAttempts,
		WrongAttempts:     summary.WrongAttempts,
		Accuracy:          accuracy,
		AttemptCount:      attemptStats.AttemptCount,
		AverageScore:      attemptStats.AverageScore,
		BestScore:         attemptStats.BestScore,
	}, nil
}
