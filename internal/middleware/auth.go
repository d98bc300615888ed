package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mzalewski/examtrainer/config"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
)

const userContextKey = "currentUser"

// RequireAuth validates the bearer token and rehydrates the user row from the
// directory, so role/verification edits take effect on the next request. The
// token carries only the user id.
func RequireAuth(cfg *config.Config, users repository.UserRepository) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := resolveUser(ctx, cfg, users)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Error("Authentication required"))
			return
		}
		ctx.Set(userContextKey, user)
		ctx.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present and continues
// anonymously otherwise. Used by endpoints whose behavior varies by mode.
func OptionalAuth(cfg *config.Config, users repository.UserRepository) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if user, ok := resolveUser(ctx, cfg, users); ok {
			ctx.Set(userContextKey, user)
		}
		ctx.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok || user.Role != model.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Error("Admin access required"))
			return
		}
		ctx.Next()
	}
}

// CurrentUser returns the rehydrated user set by RequireAuth/OptionalAuth.
func CurrentUser(ctx *gin.Context) (*model.User, bool) {
	val, exists := ctx.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok
}

// UserID returns the authenticated user's id, or nil when anonymous.
func UserID(ctx *gin.Context) *uint {
	user, ok := CurrentUser(ctx)
	if !ok {
		return nil
	}
	id := user.ID
	return &id
}

func resolveUser(ctx *gin.Context, cfg *config.Config, users repository.UserRepository) (*model.User, bool) {
	header := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, false
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, false
	}

	user, err := users.FindByID(uint(id))
	if err != nil {
		return nil, false
	}
	return user, true
}
