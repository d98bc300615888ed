package service

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	passwordMinLength = 8
	passwordMaxLength = 128
)

// BreachChecker reports whether a password is known-compromised. The default
// implementation checks a local list of the most common passwords; a remote
// breach-database client can be swapped in without touching the policy.
type BreachChecker interface {
	IsBreached(password string) bool
}

type commonPasswordChecker struct {
	passwords map[string]struct{}
}

func NewCommonPasswordChecker() BreachChecker {
	list := []string{
		"password", "12345678", "123456789", "1234567890",
		"qwerty123", "abc12345", "password1", "admin123",
		"letmein1", "welcome1", "iloveyou", "sunshine",
		"football", "princess", "qwertyuiop", "zaq12wsx",
	}
	m := make(map[string]struct{}, len(list))
	for _, p := range list {
		m[p] = struct{}{}
	}
	return &commonPasswordChecker{passwords: m}
}

func (c *commonPasswordChecker) IsBreached(password string) bool {
	_, ok := c.passwords[strings.ToLower(password)]
	return ok
}

// ValidatePassword enforces the registration password policy: length bounds,
// upper/lower/digit character classes, and the breached-password check.
func ValidatePassword(password string, checker BreachChecker) error {
	if len(password) < passwordMinLength {
		return fmt.Errorf("%w: minimum length is 8 characters", ErrPasswordPolicy)
	}
	if len(password) > passwordMaxLength {
		return fmt.Errorf("%w: maximum length is 128 characters", ErrPasswordPolicy)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: password must contain %s", ErrPasswordPolicy, strings.Join(missing, ", "))
	}

	if checker != nil && checker.IsBreached(password) {
		return fmt.Errorf("%w: password appears in known breach lists; choose a different one", ErrPasswordPolicy)
	}
	return nil
}
