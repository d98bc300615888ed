package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mzalewski/examtrainer/config"
)

// GoogleClaims is the subset of the tokeninfo response the directory needs.
type GoogleClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Audience      string `json:"aud"`
	Expiry        string `json:"exp"`
}

// GoogleVerifier validates a Google ID token and returns its claims. The
// default implementation calls the tokeninfo endpoint; tests substitute a
// stub.
type GoogleVerifier interface {
	Verify(idToken string) (*GoogleClaims, error)
}

type googleTokenVerifier struct {
	httpClient *http.Client
	clientID   string
	endpoint   string
}

func NewGoogleVerifier(cfg *config.Config) GoogleVerifier {
	return &googleTokenVerifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		clientID:   cfg.GoogleClientID,
		endpoint:   "https://oauth2.googleapis.com/tokeninfo",
	}
}

func (v *googleTokenVerifier) Verify(idToken string) (*GoogleClaims, error) {
	resp, err := v.httpClient.Get(v.endpoint + "?id_token=" + url.QueryEscape(idToken))
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo returned status %d", resp.StatusCode)
	}

	var claims GoogleClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if v.clientID != "" && claims.Audience != v.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if exp, err := strconv.ParseInt(claims.Expiry, 10, 64); err == nil {
		if time.Now().Unix() > exp {
			return nil, fmt.Errorf("token expired")
		}
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("token missing subject or email")
	}
	if claims.EmailVerified != "true" {
		return nil, fmt.Errorf("token email not verified")
	}
	return &claims, nil
}
