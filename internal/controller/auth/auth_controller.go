package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/middleware"
	"github.com/mzalewski/examtrainer/internal/service"
	"github.com/rs/zerolog/log"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register godoc
// @Summary Register a local account
// @Description Creates an unverified account and emails a verification link.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registration body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}

	if _, err := c.authService.Register(req); err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.OK("Account created. Check your inbox for a verification link."))
}

// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Empty fields"
// @Failure 401 {object} dto.ErrorResponse "Unknown email or wrong password"
// @Failure 403 {object} dto.ErrorResponse "Account pending verification"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}

	resp, err := c.authService.Login(req)
	if err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GoogleSignIn godoc
// @Summary Sign in with a Google ID token
// @Tags Auth
// @Accept json
// @Produce json
// @Param token body dto.GoogleSignInRequest true "Google ID token"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse "Token rejected"
// @Router /auth/google [post]
func (c *AuthController) GoogleSignIn(ctx *gin.Context) {
	var req dto.GoogleSignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}

	resp, err := c.authService.GoogleSignIn(req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			ctx.JSON(http.StatusUnauthorized, dto.Error("Google sign-in failed"))
			return
		}
		log.Error().Err(err).Msg("GoogleSignIn: service error")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Sign-in failed"))
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// VerifyEmail godoc
// @Summary Consume an email verification token
// @Tags Auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /auth/verify-email [get]
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	if err := c.authService.VerifyEmail(ctx.Query("token")); err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Email verified. You can log in now."))
}

// RequestPasswordReset godoc
// @Summary Request a password reset link
// @Description Always answers 200; whether the email exists is not revealed.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Account email"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/password-reset/request [post]
func (c *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req dto.PasswordResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}
	if err := c.authService.RequestPasswordReset(req.Email); err != nil {
		log.Error().Err(err).Msg("RequestPasswordReset: service error")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Failed to process request"))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("If the address is registered, a reset link has been sent."))
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetConfirmRequest true "Token and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /auth/password-reset/confirm [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}
	if err := c.authService.ResetPassword(req); err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Password updated. You can log in now."))
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordChangeRequest true "Current and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /auth/password-change [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	var req dto.PasswordChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}
	if err := c.authService.ChangePassword(*userID, req); err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Password changed"))
}

// RequestEmailChange godoc
// @Summary Request an email address change
// @Description Sends a confirmation link to the new address; the change only applies once confirmed.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.EmailChangeRequest true "New email and current password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /auth/email-change/request [post]
func (c *AuthController) RequestEmailChange(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	var req dto.EmailChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}
	if err := c.authService.RequestEmailChange(*userID, req); err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Confirmation link sent to the new address."))
}

// ConfirmEmailChange godoc
// @Summary Consume an email-change token
// @Tags Auth
// @Produce json
// @Param token query string true "Email-change token"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /auth/email-change/confirm [get]
func (c *AuthController) ConfirmEmailChange(ctx *gin.Context) {
	if err := c.authService.ConfirmEmailChange(ctx.Query("token")); err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Email address updated."))
}

// Logout godoc
// @Summary Log out
// @Description Sessions are stateless JWTs; the client discards the token. The endpoint exists for audit logging and is only reachable authenticated.
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if user, ok := middleware.CurrentUser(ctx); ok {
		log.Info().Uint("userID", user.ID).Msg("User logged out")
	}
	ctx.JSON(http.StatusOK, dto.OK("Logged out"))
}

// Me godoc
// @Summary Current user profile
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	user, err := c.authService.CurrentUser(*userID)
	if err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// DeleteAccount godoc
// @Summary Soft-delete the current account
// @Description Anonymizes PII and flags the row deleted; progress and attempts remain for aggregate statistics.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.DeleteAccountRequest true "Password confirmation (local accounts)"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /auth/account [delete]
func (c *AuthController) DeleteAccount(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	var req dto.DeleteAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Error("Invalid request body"))
		return
	}
	if err := c.authService.DeleteAccount(*userID, req.Password); err != nil {
		c.renderAuthError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Account deleted"))
}

// renderAuthError is the single mapping from auth service errors to HTTP
// statuses.
func (c *AuthController) renderAuthError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFieldsRequired),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrPasswordPolicy),
		errors.Is(err, service.ErrEmailTaken):
		ctx.JSON(http.StatusBadRequest, dto.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, dto.Error(err.Error()))
	case errors.Is(err, service.ErrAccountUnverified):
		ctx.JSON(http.StatusForbidden, dto.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, dto.Error(err.Error()))
	default:
		log.Error().Err(err).Msg("Auth: unexpected service error")
		ctx.JSON(http.StatusInternalServerError, dto.Error("Something went wrong. Please try again."))
	}
}
