package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jinzhu/copier"
	"github.com/mzalewski/examtrainer/config"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var namePattern = regexp.MustCompile(`^[\p{L}][\p{L}' -]{1,99}$`)

// normalizeEmail folds the address to lowercase so Anna@x.com and anna@x.com
// resolve to the same account; every email entering a lookup or a row goes
// through here.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthService drives the account state machine: registration (pending
// verification), credential login, Google sign-in, token-confirmed email and
// password flows, and soft deletion. Sessions are stateless JWTs carrying
// only the user id.
type AuthService interface {
	Register(req dto.RegisterRequest) (*dto.UserResponse, error)
	Login(req dto.LoginRequest) (*dto.AuthResponse, error)
	GoogleSignIn(idToken string) (*dto.AuthResponse, error)
	VerifyEmail(token string) error
	RequestPasswordReset(email string) error
	ResetPassword(req dto.PasswordResetConfirmRequest) error
	ChangePassword(userID uint, req dto.PasswordChangeRequest) error
	RequestEmailChange(userID uint, req dto.EmailChangeRequest) error
	ConfirmEmailChange(token string) error
	DeleteAccount(userID uint, password string) error
	CurrentUser(userID uint) (*dto.UserResponse, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   TokenService
	mail     EmailService
	verifier GoogleVerifier
	breach   BreachChecker
	cfg      *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	tokens TokenService,
	mail EmailService,
	verifier GoogleVerifier,
	breach BreachChecker,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		mail:     mail,
		verifier: verifier,
		breach:   breach,
		cfg:      cfg,
	}
}

// Register validates in a fixed order (name, email uniqueness, password
// match, password strength) so rejection messages are deterministic. The new
// account starts unverified with a verification token issued and mailed.
func (s *authService) Register(req dto.RegisterRequest) (*dto.UserResponse, error) {
	if !namePattern.MatchString(req.Name) {
		return nil, ErrInvalidName
	}

	email := normalizeEmail(req.Email)
	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if req.Password != req.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	if err := ValidatePassword(req.Password, s.breach); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	user := model.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: &hashStr,
		AuthProvider: model.ProviderLocal,
		Role:         model.RoleUser,
	}
	if err := s.users.Create(&user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.issueVerification(&user)

	var resp dto.UserResponse
	copier.Copy(&resp, &user)
	return &resp, nil
}

// Login implements the Anonymous -> Authenticated transition. The unverified
// branch re-issues a verification token so the user can resume from the
// pending-verification state.
func (s *authService) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrFieldsRequired
	}

	user, err := s.users.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		// Google-only account; no local password to check.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Verified {
		s.issueVerification(user)
		return nil, ErrAccountUnverified
	}

	return s.authResponse(user)
}

// GoogleSignIn short-circuits from Anonymous to Authenticated via
// find-or-create keyed on the Google subject id. An existing local account
// with the same email is linked rather than duplicated.
func (s *authService) GoogleSignIn(idToken string) (*dto.AuthResponse, error) {
	claims, err := s.verifier.Verify(idToken)
	if err != nil {
		log.Warn().Err(err).Msg("Google token verification failed")
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByGoogleID(claims.Subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// An unverified email claim must never reach the email-keyed paths:
		// linking on it would hand the Google identity a session for
		// whichever local account merely shares the claimed address.
		if claims.EmailVerified != "true" {
			log.Warn().Str("sub", claims.Subject).Msg("Google sign-in with unverified email claim rejected")
			return nil, ErrInvalidToken
		}
		email := normalizeEmail(claims.Email)
		user, err = s.users.FindByEmail(email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			name := claims.Name
			if name == "" {
				name = email
			}
			sub := claims.Subject
			user = &model.User{
				Name:         name,
				Email:        email,
				GoogleID:     &sub,
				AuthProvider: model.ProviderGoogle,
				Role:         model.RoleUser,
				Verified:     true,
			}
			if err := s.users.Create(user); err != nil {
				return nil, fmt.Errorf("failed to create Google user: %w", err)
			}
		} else if err != nil {
			return nil, err
		} else {
			sub := claims.Subject
			user.GoogleID = &sub
			user.Verified = true
			if err := s.users.Update(user); err != nil {
				return nil, fmt.Errorf("failed to link Google identity: %w", err)
			}
		}
	} else if err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

func (s *authService) VerifyEmail(token string) error {
	t, err := s.tokens.Consume(token, model.TokenEmailVerify)
	if err != nil {
		return err
	}
	return s.users.MarkVerified(t.UserID)
}

// RequestPasswordReset never reveals whether the email exists; unknown
// addresses are logged and silently accepted.
func (s *authService) RequestPasswordReset(email string) error {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info().Str("email", email).Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.tokens.Issue(user.ID, model.TokenPasswordReset, nil)
	if err != nil {
		return err
	}
	return s.mail.SendPasswordReset(user.Email, user.Name, token.Token)
}

func (s *authService) ResetPassword(req dto.PasswordResetConfirmRequest) error {
	if req.Password != req.PasswordConfirm {
		return ErrPasswordMismatch
	}
	if err := ValidatePassword(req.Password, s.breach); err != nil {
		return err
	}

	t, err := s.tokens.Consume(req.Token, model.TokenPasswordReset)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(t.UserID, string(hash))
}

func (s *authService) ChangePassword(userID uint, req dto.PasswordChangeRequest) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return ErrInvalidCredentials
	}
	if err := ValidatePassword(req.NewPassword, s.breach); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(userID, string(hash))
}

// RequestEmailChange issues an email_change token carrying the pending
// address; the address only changes once the token is confirmed from the new
// mailbox.
func (s *authService) RequestEmailChange(userID uint, req dto.EmailChangeRequest) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return ErrInvalidCredentials
	}

	newEmail := normalizeEmail(req.NewEmail)
	if _, err := s.users.FindByEmail(newEmail); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	token, err := s.tokens.Issue(userID, model.TokenEmailChange, &newEmail)
	if err != nil {
		return err
	}
	return s.mail.SendEmailChange(newEmail, user.Name, token.Token)
}

func (s *authService) ConfirmEmailChange(token string) error {
	t, err := s.tokens.Consume(token, model.TokenEmailChange)
	if err != nil {
		return err
	}
	if t.NewEmail == nil {
		return ErrInvalidToken
	}
	return s.users.UpdateEmail(t.UserID, *t.NewEmail)
}

func (s *authService) DeleteAccount(userID uint, password string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if user.AuthProvider == model.ProviderLocal {
		if password == "" {
			return ErrFieldsRequired
		}
		if user.PasswordHash == nil ||
			bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
			return ErrInvalidCredentials
		}
	}
	return s.users.SoftDelete(user)
}

func (s *authService) CurrentUser(userID uint) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	var resp dto.UserResponse
	copier.Copy(&resp, user)
	return &resp, nil
}

func (s *authService) authResponse(user *model.User) (*dto.AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	var u dto.UserResponse
	copier.Copy(&u, user)
	return &dto.AuthResponse{Success: true, Token: token, User: u}, nil
}

// generateToken signs an HS256 JWT carrying only the user id; the middleware
// rehydrates the user record on every request.
func (s *authService) generateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", user.ID),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.cfg.JWT.Expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.Secret))
}

// issueVerification is best-effort: a mail failure is logged, not surfaced,
// so registration and the unverified-login branch still complete.
func (s *authService) issueVerification(user *model.User) {
	token, err := s.tokens.Issue(user.ID, model.TokenEmailVerify, nil)
	if err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Msg("Failed to issue verification token")
		return
	}
	if err := s.mail.SendVerification(user.Email, user.Name, token.Token); err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Msg("Failed to send verification email")
	}
}
