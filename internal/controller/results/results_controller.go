package results

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/middleware"
	"github.com/mzalewski/examtrainer/internal/service"
	"github.com/rs/zerolog/log"
)

type ResultsController struct {
	attemptService  service.AttemptService
	progressService service.ProgressService
}

func NewResultsController(attemptService service.AttemptService, progressService service.ProgressService) *ResultsController {
	return &ResultsController{attemptService: attemptService, progressService: progressService}
}

// SaveTestResult godoc
// @Summary Record a finished test or mock exam
// @Description Persists the attempt header, topic links, and per-question answers atomically.
// @Tags Results
// @Accept json
// @Produce json
// @Param result body dto.SaveTestResultRequest true "Finished test payload"
// @Success 200 {object} dto.SaveResultResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /save-test-result [post]
func (c *ResultsController) SaveTestResult(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	var req dto.SaveTestResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}

	summary, err := c.attemptService.SaveResult(*userID, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResultPayload) {
			ctx.JSON(http.StatusBadRequest, dto.Error(err.Error()))
			return
		}
		log.Error().Err(err).Uint("userID", *userID).Msg("SaveTestResult: service error")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to save test result"))
		return
	}
	ctx.JSON(http.StatusOK, dto.SaveResultResponse{Success: true, Attempt: *summary})
}

// SaveProgressBulk godoc
// @Summary Record per-question progress in bulk
// @Description The client fires this in parallel with save-test-result; each entry is applied independently.
// @Tags Results
// @Accept json
// @Produce json
// @Param entries body []dto.ProgressEntry true "Per-question results"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /save-progress-bulk [post]
func (c *ResultsController) SaveProgressBulk(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	var entries []dto.ProgressEntry
	if err := ctx.ShouldBindJSON(&entries); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}
	if len(entries) == 0 {
		ctx.JSON(http.StatusBadRequest, dto.Error("At least one progress entry is required"))
		return
	}

	if err := c.progressService.RecordBulk(*userID, entries); err != nil {
		log.Error().Err(err).Uint("userID", *userID).Msg("SaveProgressBulk: service error")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to save progress"))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Progress saved"))
}

// GetStats godoc
// @Summary Per-user progress and attempt statistics
// @Tags Results
// @Produce json
// @Success 200 {object} dto.UserStatsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stats [get]
func (c *ResultsController) GetStats(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	stats, err := c.progressService.Stats(*userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", *userID).Msg("GetStats: service error")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to load statistics"))
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// GetAttempts godoc
// @Summary Exam attempt history, newest first
// @Tags Results
// @Produce json
// @Success 200 {object} dto.AttemptListResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /attempts [get]
func (c *ResultsController) GetAttempts(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	attempts, err := c.attemptService.History(*userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", *userID).Msg("GetAttempts: service error")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to load attempt history"))
		return
	}
	ctx.JSON(http.StatusOK, dto.AttemptListResponse{Success: true, Attempts: attempts})
}
