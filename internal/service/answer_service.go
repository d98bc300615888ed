package service

import (
	"errors"

	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/repository"
	"gorm.io/gorm"
)

type AnswerService interface {
	// CheckAnswer resolves the question's single correct answer and judges
	// the candidate against it. A question with no correct answer on record
	// is a data-integrity problem surfaced as ErrNoCorrectAnswer, never a
	// silent default.
	CheckAnswer(questionID, answerID uint) (*dto.CheckAnswerResponse, error)
}

type answerService struct {
	answers repository.AnswerRepository
}

func NewAnswerService(answers repository.AnswerRepository) AnswerService {
	return &answerService{answers: answers}
}

func (s *answerService) CheckAnswer(questionID, answerID uint) (*dto.CheckAnswerResponse, error) {
	correct, err := s.answers.FindCorrect(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCorrectAnswer
		}
		return nil, err
	}
	return &dto.CheckAnswerResponse{
		Success:         true,
		IsCorrect:       correct.ID == answerID,
		CorrectAnswerID: correct.ID,
	}, nil
}
