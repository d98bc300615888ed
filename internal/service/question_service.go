package service

import (
	"math/rand"

	"github.com/jinzhu/copier"
	"github.com/mzalewski/examtrainer/config"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
	"github.com/rs/zerolog/log"
)

// SelectionMode is the question-selection policy. The adaptive modes are the
// product's "premium options" and require an authenticated user.
type SelectionMode string

const (
	ModeRandom       SelectionMode = "random"
	ModeToDiscover   SelectionMode = "toDiscover"
	ModeToImprove    SelectionMode = "toImprove"
	ModeToRemind     SelectionMode = "toRemind"
	ModeLastMistakes SelectionMode = "lastMistakes"
)

// ParseMode maps the premium_option query value to a mode; empty means random.
func ParseMode(s string) (SelectionMode, error) {
	switch SelectionMode(s) {
	case "", ModeRandom:
		return ModeRandom, nil
	case ModeToDiscover, ModeToImprove, ModeToRemind, ModeLastMistakes:
		return SelectionMode(s), nil
	default:
		return "", ErrUnknownMode
	}
}

// RequiresAuth is uniform across all adaptive modes, including toRemind.
func (m SelectionMode) RequiresAuth() bool {
	return m != ModeRandom
}

// PoolExhaustedError signals an empty adaptive pool. It is a terminal state
// of the mode, not a failure; the client renders the message.
type PoolExhaustedError struct {
	Mode SelectionMode
}

func (e *PoolExhaustedError) Error() string { return e.Message() }

func (e *PoolExhaustedError) Message() string {
	switch e.Mode {
	case ModeToDiscover:
		return "You have already discovered every question in the selected subjects."
	case ModeToImprove:
		return "Your accuracy is above the threshold for every question here. Keep it up!"
	case ModeLastMistakes:
		return "No recent mistakes in the selected subjects."
	default:
		return "No questions available for the selected subjects."
	}
}

type QuestionService interface {
	// GetQuestion returns one question per the mode's policy. Empty subject
	// filter is a client error; adaptive modes without a user are rejected.
	GetQuestion(userID *uint, examCode string, subjectIDs []uint, mode SelectionMode) (*dto.QuestionWithAnswers, error)
	// BuildFullExam assembles a fixed-size random set across every subject
	// of the exam code.
	BuildFullExam(examCode string) ([]dto.QuestionWithAnswers, error)
	// BuildPersonalizedTest assembles count questions from the given
	// subjects using the mode's policy; count is clamped to the configured
	// maximum.
	BuildPersonalizedTest(userID *uint, examCode string, subjectIDs []uint, mode SelectionMode, count int) ([]dto.QuestionWithAnswers, error)
}

type questionService struct {
	questions repository.QuestionRepository
	subjects  repository.SubjectRepository
	cfg       *config.Config
}

func NewQuestionService(questions repository.QuestionRepository, subjects repository.SubjectRepository, cfg *config.Config) QuestionService {
	return &questionService{questions: questions, subjects: subjects, cfg: cfg}
}

func (s *questionService) GetQuestion(userID *uint, examCode string, subjectIDs []uint, mode SelectionMode) (*dto.QuestionWithAnswers, error) {
	batch, err := s.selectQuestions(userID, examCode, subjectIDs, mode, 1)
	if err != nil {
		return nil, err
	}
	return &batch[0], nil
}

func (s *questionService) BuildFullExam(examCode string) ([]dto.QuestionWithAnswers, error) {
	subjects, err := s.subjects.FindByExamCode(examCode)
	if err != nil {
		return nil, err
	}
	subjectIDs := make([]uint, 0, len(subjects))
	for _, sub := range subjects {
		subjectIDs = append(subjectIDs, sub.ID)
	}
	if len(subjectIDs) == 0 {
		return nil, &PoolExhaustedError{Mode: ModeRandom}
	}
	return s.selectQuestions(nil, examCode, subjectIDs, ModeRandom, s.cfg.Quiz.FullExamSize)
}

func (s *questionService) BuildPersonalizedTest(userID *uint, examCode string, subjectIDs []uint, mode SelectionMode, count int) ([]dto.QuestionWithAnswers, error) {
	if count <= 0 {
		count = 10
	}
	if count > s.cfg.Quiz.MaxTestSize {
		count = s.cfg.Quiz.MaxTestSize
	}
	return s.selectQuestions(userID, examCode, subjectIDs, mode, count)
}

func (s *questionService) selectQuestions(userID *uint, examCode string, subjectIDs []uint, mode SelectionMode, limit int) ([]dto.QuestionWithAnswers, error) {
	if len(subjectIDs) == 0 {
		return nil, ErrSubjectRequired
	}
	if mode.RequiresAuth() && userID == nil {
		return nil, ErrPremiumRequired
	}

	var (
		questions []model.Question
		err       error
	)
	switch mode {
	case ModeRandom:
		questions, err = s.questions.FindRandom(examCode, subjectIDs, limit)
	case ModeToDiscover:
		questions, err = s.questions.FindUnseen(*userID, examCode, subjectIDs, limit)
	case ModeToImprove:
		questions, err = s.questions.FindLowAccuracy(*userID, examCode, subjectIDs, limit, s.cfg.Quiz.ImproveThreshold)
	case ModeToRemind:
		questions, err = s.questions.FindStale(*userID, examCode, subjectIDs, limit)
	case ModeLastMistakes:
		questions, err = s.questions.FindRecentMistakes(*userID, examCode, subjectIDs, limit)
	default:
		return nil, ErrUnknownMode
	}
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Str("examCode", examCode).Msg("Question selection query failed")
		return nil, err
	}
	if len(questions) == 0 {
		return nil, &PoolExhaustedError{Mode: mode}
	}

	result := make([]dto.QuestionWithAnswers, 0, len(questions))
	for i := range questions {
		result = append(result, toQuestionDTO(&questions[i]))
	}
	return result, nil
}

// toQuestionDTO strips the correctness flag and shuffles the option order so
// the correct answer's position carries no signal.
func toQuestionDTO(q *model.Question) dto.QuestionWithAnswers {
	var out dto.QuestionWithAnswers
	copier.Copy(&out.Question, q)

	out.Answers = make([]dto.AnswerDTO, len(q.Answers))
	for i, a := range q.Answers {
		out.Answers[i] = dto.AnswerDTO{ID: a.ID, Content: a.Content}
	}
	rand.Shuffle(len(out.Answers), func(i, j int) {
		out.Answers[i], out.Answers[j] = out.Answers[j], out.Answers[i]
	})
	return out
}
