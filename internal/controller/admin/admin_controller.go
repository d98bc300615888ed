package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminController struct {
	adminService       service.AdminService
	explanationService service.ExplanationService
}

func NewAdminController(adminService service.AdminService, explanationService service.ExplanationService) *AdminController {
	return &AdminController{adminService: adminService, explanationService: explanationService}
}

// CreateSubject godoc
// @Summary Create a subject
// @Tags Admin
// @Accept json
// @Produce json
// @Param subject body dto.CreateSubjectRequest true "Subject data"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/subjects [post]
func (c *AdminController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}

	subject, err := c.adminService.CreateSubject(req)
	if err != nil {
		log.Error().Err(err).Str("examCode", req.ExamCode).Msg("CreateSubject failed")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to create subject"))
		return
	}
	log.Info().Uint("subjectID", subject.ID).Str("examCode", subject.ExamCode).Msg("Subject created")
	ctx.JSON(http.StatusCreated, dto.OK("Subject created"))
}

// CreateQuestion godoc
// @Summary Create a question with its answer set
// @Description The answer set must contain exactly one correct option.
// @Tags Admin
// @Accept json
// @Produce json
// @Param question body dto.CreateQuestionRequest true "Question data"
// @Success 201 {object} dto.QuestionCreatedResponse
// @Failure 400 {object} dto.ErrorResponse "Bad answer cardinality or unknown subject"
// @Security BearerAuth
// @Router /admin/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}

	question, err := c.adminService.CreateQuestion(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswerCardinality), errors.Is(err, service.ErrUnknownSubject):
			ctx.JSON(http.StatusBadRequest, dto.Error(err.Error()))
		default:
			log.Error().Err(err).Msg("CreateQuestion failed")
			ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to create question"))
		}
		return
	}
	ctx.JSON(http.StatusCreated, dto.QuestionCreatedResponse{Success: true, Question: *question})
}

// BackfillExplanation godoc
// @Summary Generate a missing explanation for a question
// @Description Returns the stored explanation if one exists, otherwise generates and persists one.
// @Tags Admin
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.ExplanationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown question"
// @Security BearerAuth
// @Router /admin/questions/{question_id}/explanation [post]
func (c *AdminController) BackfillExplanation(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid question id"))
		return
	}

	explanation, err := c.explanationService.BackfillExplanation(ctx.Request.Context(), uint(questionID))
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.Error("Question not found"))
			return
		}
		log.Error().Err(err).Uint64("questionID", questionID).Msg("Explanation backfill failed")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to generate explanation"))
		return
	}
	ctx.JSON(http.StatusOK, dto.ExplanationResponse{Success: true, Explanation: explanation})
}
