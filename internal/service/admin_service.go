package service

import (
	"errors"

	"github.com/jinzhu/copier"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrAnswerCardinality rejects answer sets that do not carry exactly one
// correct option; the invariant is enforced at ingestion, not discovered at
// verification time.
var ErrAnswerCardinality = errors.New("question must have exactly one correct answer")

type AdminService interface {
	CreateSubject(req dto.CreateSubjectRequest) (*model.Subject, error)
	CreateQuestion(req dto.CreateQuestionRequest) (*dto.QuestionDTO, error)
}

type adminService struct {
	subjects  repository.SubjectRepository
	questions repository.QuestionRepository
}

func NewAdminService(subjects repository.SubjectRepository, questions repository.QuestionRepository) AdminService {
	return &adminService{subjects: subjects, questions: questions}
}

func (s *adminService) CreateSubject(req dto.CreateSubjectRequest) (*model.Subject, error) {
	subject := model.Subject{ExamCode: req.ExamCode, Name: req.Name}
	if err := s.subjects.Create(&subject); err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *adminService) CreateQuestion(req dto.CreateQuestionRequest) (*dto.QuestionDTO, error) {
	if len(req.Answers) < 2 {
		return nil, ErrAnswerCardinality
	}
	correct := 0
	for _, a := range req.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return nil, ErrAnswerCardinality
	}

	if _, err := s.subjects.FindByID(req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, err
	}

	question := model.Question{
		SubjectID:   req.SubjectID,
		ExamCode:    req.ExamCode,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		Explanation: req.Explanation,
	}
	for _, a := range req.Answers {
		question.Answers = append(question.Answers, model.Answer{
			Content:   a.Content,
			IsCorrect: a.IsCorrect,
		})
	}

	if err := s.questions.Create(&question); err != nil {
		log.Error().Err(err).Msg("Failed to create question")
		return nil, err
	}

	var resp dto.QuestionDTO
	copier.Copy(&resp, &question)
	return &resp, nil
}
