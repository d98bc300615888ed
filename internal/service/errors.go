package service

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// statuses; nothing below the controller layer writes to the response.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrFieldsRequired     = errors.New("email and password are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountUnverified  = errors.New("account not verified; a new verification email has been sent")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidName        = errors.New("name contains invalid characters")
	ErrPasswordPolicy     = errors.New("password does not meet requirements")

	ErrSubjectRequired  = errors.New("at least one subject must be selected")
	ErrUnknownSubject   = errors.New("subject does not exist")
	ErrPremiumRequired  = errors.New("authentication required for adaptive question modes")
	ErrUnknownMode      = errors.New("unknown question selection mode")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNoCorrectAnswer  = errors.New("question has no correct answer on record")
)
