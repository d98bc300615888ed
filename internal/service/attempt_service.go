package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInvalidResultPayload marks a malformed save-test-result body; controllers
// map it to 400.
var ErrInvalidResultPayload = errors.New("invalid test result payload")

type AttemptService interface {
	// SaveResult records a finished test as one transactional write: header,
	// deduplicated topic links, per-question answers. The server recomputes
	// the score; the client-reported value is kept in metadata only.
	SaveResult(userID uint, req dto.SaveTestResultRequest) (*dto.AttemptSummaryDTO, error)
	History(userID uint) ([]dto.AttemptSummaryDTO, error)
}

type attemptService struct {
	attempts repository.AttemptRepository
	subjects repository.SubjectRepository
	scores   ScoreService
}

func NewAttemptService(attempts repository.AttemptRepository, subjects repository.SubjectRepository, scores ScoreService) AttemptService {
	return &attemptService{attempts: attempts, subjects: subjects, scores: scores}
}

func (s *attemptService) SaveResult(userID uint, req dto.SaveTestResultRequest) (*dto.AttemptSummaryDTO, error) {
	percent, err := s.scores.ComputePercent(req.CorrectAnswers, req.TotalQuestions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResultPayload, err)
	}
	if req.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrInvalidResultPayload)
	}

	testType := model.TestTypePersonalized
	if req.IsFullExam {
		testType = model.TestTypeFullExam
	}

	completedAt := time.Now()
	attempt := model.ExamAttempt{
		UserID:          userID,
		ExamCode:        req.ExamCode,
		TestType:        testType,
		StartedAt:       completedAt.Add(-time.Duration(req.DurationSeconds) * time.Second),
		CompletedAt:     completedAt,
		CorrectAnswers:  req.CorrectAnswers,
		TotalQuestions:  req.TotalQuestions,
		ScorePercent:    percent,
		DurationSeconds: req.DurationSeconds,
	}

	// The client runtime computes its own score for display; keep it for
	// auditing drift against the server-side value.
	if meta, err := json.Marshal(map[string]interface{}{
		"client_score_percent": req.ScorePercent,
	}); err == nil {
		attempt.Metadata = datatypes.JSON(meta)
	}

	seen := make(map[uint]struct{}, len(req.TopicIDs))
	for _, topicID := range req.TopicIDs {
		if _, dup := seen[topicID]; dup {
			continue
		}
		// Unknown topic ids are client errors, not FK violations to be
		// reported as server failures.
		if _, err := s.subjects.FindByID(topicID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: unknown topic id %d", ErrInvalidResultPayload, topicID)
			}
			return nil, err
		}
		seen[topicID] = struct{}{}
		attempt.Topics = append(attempt.Topics, model.ExamAttemptTopic{SubjectID: topicID})
	}

	for _, a := range req.Answers {
		attempt.Answers = append(attempt.Answers, model.ExamAttemptAnswer{
			QuestionID: a.QuestionID,
			AnswerID:   a.AnswerID,
			IsCorrect:  a.IsCorrect,
		})
	}

	if err := s.attempts.Create(&attempt); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to persist exam attempt")
		return nil, err
	}

	var summary dto.AttemptSummaryDTO
	copier.Copy(&summary, &attempt)
	return &summary, nil
}

func (s *attemptService) History(userID uint) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.attempts.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.AttemptSummaryDTO, len(attempts))
	for i := range attempts {
		copier.Copy(&summaries[i], &attempts[i])
	}
	return summaries, nil
}
