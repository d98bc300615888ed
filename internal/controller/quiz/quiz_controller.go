package quiz

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/middleware"
	"github.com/mzalewski/examtrainer/internal/service"
	"github.com/rs/zerolog/log"
)

type QuizController struct {
	questionService service.QuestionService
	answerService   service.AnswerService
}

func NewQuizController(questionService service.QuestionService, answerService service.AnswerService) *QuizController {
	return &QuizController{questionService: questionService, answerService: answerService}
}

// GetQuestion godoc
// @Summary Fetch one question for the selected subjects
// @Description Serves a single question per the selection mode. Adaptive modes (premium_option) require authentication.
// @Tags Quiz
// @Produce json
// @Param exam_code path string true "Exam type code, e.g. INF.03"
// @Param subject[] query []int true "Subject ids" collectionFormat(multi)
// @Param premium_option query string false "Selection mode: toDiscover, toImprove, toRemind, lastMistakes"
// @Success 200 {object} dto.SingleQuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Missing subjects or unknown mode"
// @Failure 403 {object} dto.ErrorResponse "Adaptive mode without authentication"
// @Failure 500 {object} dto.ErrorResponse
// @Router /question/{exam_code} [get]
func (c *QuizController) GetQuestion(ctx *gin.Context) {
	examCode := ctx.Param("exam_code")
	subjectIDs, ok := parseSubjects(ctx)
	if !ok {
		return
	}
	mode, err := service.ParseMode(ctx.Query("premium_option"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error(err.Error()))
		return
	}

	question, err := c.questionService.GetQuestion(middleware.UserID(ctx), examCode, subjectIDs, mode)
	if err != nil {
		c.renderSelectionError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SingleQuestionResponse{
		Success:  true,
		Question: question.Question,
		Answers:  question.Answers,
	})
}

// GetFullExam godoc
// @Summary Assemble a full mock exam
// @Tags Quiz
// @Produce json
// @Param exam_code path string true "Exam type code"
// @Success 200 {object} dto.TestResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /test/full/{exam_code} [get]
func (c *QuizController) GetFullExam(ctx *gin.Context) {
	questions, err := c.questionService.BuildFullExam(ctx.Param("exam_code"))
	if err != nil {
		c.renderSelectionError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.TestResponse{Success: true, Data: dto.TestData{Questions: questions}})
}

// GetPersonalizedTest godoc
// @Summary Assemble a personalized test
// @Tags Quiz
// @Produce json
// @Param exam_code path string true "Exam type code"
// @Param subject[] query []int true "Subject ids" collectionFormat(multi)
// @Param premium_option query string false "Selection mode"
// @Param question_count query int false "Number of questions (clamped to the configured maximum)"
// @Success 200 {object} dto.TestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /test/personalized/{exam_code} [get]
func (c *QuizController) GetPersonalizedTest(ctx *gin.Context) {
	examCode := ctx.Param("exam_code")
	subjectIDs, ok := parseSubjects(ctx)
	if !ok {
		return
	}
	mode, err := service.ParseMode(ctx.Query("premium_option"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error(err.Error()))
		return
	}
	count := 0
	if raw := ctx.Query("question_count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 {
			ctx.JSON(http.StatusBadRequest, dto.Error("Invalid question_count"))
			return
		}
	}

	questions, err := c.questionService.BuildPersonalizedTest(middleware.UserID(ctx), examCode, subjectIDs, mode, count)
	if err != nil {
		c.renderSelectionError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.TestResponse{Success: true, Data: dto.TestData{Questions: questions}})
}

// CheckAnswer godoc
// @Summary Judge a chosen answer
// @Description Form-encoded to match the browser quiz runtime.
// @Tags Quiz
// @Accept x-www-form-urlencoded
// @Produce json
// @Param question_id formData int true "Question id"
// @Param answer_id formData int true "Chosen answer id"
// @Success 200 {object} dto.CheckAnswerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Question has no correct answer on record"
// @Router /check-answer [post]
func (c *QuizController) CheckAnswer(ctx *gin.Context) {
	var form dto.CheckAnswerForm
	if err := ctx.ShouldBind(&form); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("question_id and answer_id are required"))
		return
	}

	result, err := c.answerService.CheckAnswer(form.QuestionID, form.AnswerID)
	if err != nil {
		if errors.Is(err, service.ErrNoCorrectAnswer) {
			ctx.JSON(http.StatusNotFound, dto.Error(err.Error()))
			return
		}
		log.Error().Err(err).Uint("questionID", form.QuestionID).Msg("CheckAnswer: service error")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to check answer"))
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (c *QuizController) renderSelectionError(ctx *gin.Context, err error) {
	var exhausted *service.PoolExhaustedError
	switch {
	case errors.As(err, &exhausted):
		// An exhausted pool is a normal outcome, not an error.
		ctx.JSON(http.StatusOK, dto.NoQuestionsLeftResponse{
			Success: true,
			Status:  "no_questions_left",
			Message: exhausted.Message(),
		})
	case errors.Is(err, service.ErrSubjectRequired), errors.Is(err, service.ErrUnknownMode):
		ctx.JSON(http.StatusBadRequest, dto.Error(err.Error()))
	case errors.Is(err, service.ErrPremiumRequired):
		ctx.JSON(http.StatusForbidden, dto.Error(err.Error()))
	default:
		log.Error().Err(err).Msg("Question selection failed")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to select questions"))
	}
}

// parseSubjects reads the subject[] multi-value query parameter. A missing or
// malformed filter is reported immediately; selection requires it regardless
// of mode.
func parseSubjects(ctx *gin.Context) ([]uint, bool) {
	raw := ctx.QueryArray("subject[]")
	if len(raw) == 0 {
		raw = ctx.QueryArray("subject")
	}
	subjectIDs := make([]uint, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.Error("Invalid subject id: "+s))
			return nil, false
		}
		subjectIDs = append(subjectIDs, uint(id))
	}
	if len(subjectIDs) == 0 {
		ctx.JSON(http.StatusBadRequest, dto.Error("At least one subject must be selected"))
		return nil, false
	}
	return subjectIDs, true
}
