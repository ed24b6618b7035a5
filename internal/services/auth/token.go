package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/j-veylop/openai-costs-tui/internal/models"
)

const tokenIssuer = "oct"

// claims is the signed payload of a session token.
type claims struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	Issuer    string `json:"iss"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// tokenHeader is the fixed base64url-encoded header for HS256.
var tokenHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

func (s *Service) issue(u *models.User) (*models.Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	payload, err := json.Marshal(claims{
		Subject:   u.Username,
		Role:      u.Role,
		Issuer:    tokenIssuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := tokenHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	token := signingInput + "." + s.sign(signingInput)

	return &models.Session{
		Username:  u.Username,
		Role:      u.Role,
		Token:     token,
		ExpiresAt: time.Unix(expires.Unix(), 0).UTC(),
	}, nil
}

func (s *Service) verify(token string) (*claims, error) {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return nil, ErrInvalidSession
	}

	expected := s.sign(parts[0] + "." + parts[1])
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return nil, ErrInvalidSession
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidSession
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, ErrInvalidSession
	}
	if c.Issuer != tokenIssuer {
		return nil, ErrInvalidSession
	}
	if s.now().Unix() >= c.ExpiresAt {
		return nil, ErrSessionExpired
	}

	return &c, nil
}

func (s *Service) sign(input string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
