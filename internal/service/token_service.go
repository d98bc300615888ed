package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mzalewski/examtrainer/config"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TokenService issues and consumes short-lived single-use action tokens.
type TokenService interface {
	// Issue creates a token of the given type, superseding any live token of
	// that type for the user. newEmail is only meaningful for email_change.
	Issue(userID uint, tokenType string, newEmail *string) (*model.ActionToken, error)
	// Consume validates type and expiry, deletes the token, and returns it.
	// Expired or mistyped tokens yield ErrInvalidToken.
	Consume(token, tokenType string) (*model.ActionToken, error)
	PurgeExpired() error
}

type tokenService struct {
	repo repository.TokenRepository
	ttl  time.Duration
}

func NewTokenService(repo repository.TokenRepository, cfg *config.Config) TokenService {
	return &tokenService{repo: repo, ttl: cfg.Quiz.TokenTTL}
}

func (s *tokenService) Issue(userID uint, tokenType string, newEmail *string) (*model.ActionToken, error) {
	token := &model.ActionToken{
		UserID:    userID,
		Token:     uuid.NewString(),
		Type:      tokenType,
		NewEmail:  newEmail,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.repo.Replace(token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *tokenService) Consume(token, tokenType string) (*model.ActionToken, error) {
	t, err := s.repo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if t.Type != tokenType {
		return nil, ErrInvalidToken
	}
	if time.Now().After(t.ExpiresAt) {
		if delErr := s.repo.Delete(t.ID); delErr != nil {
			log.Warn().Err(delErr).Uint("tokenID", t.ID).Msg("Failed to delete expired token")
		}
		return nil, ErrInvalidToken
	}
	if err := s.repo.Delete(t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tokenService) PurgeExpired() error {
	n, err := s.repo.DeleteExpired()
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("Purged expired action tokens")
	}
	return nil
}
