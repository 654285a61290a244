package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/clock"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

const sessionIssuer = "libvisit-api"

// SessionConfig holds the signing secret and lifetime of admin sessions.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// SessionService issues and verifies stateless HS256 admin session tokens.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewSessionService constructs a session service. A nil clock uses the system clock.
func NewSessionService(cfg SessionConfig, c clock.Clock) (*SessionService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if c == nil {
		c = clock.System
	}
	return &SessionService{secret: []byte(cfg.Secret), ttl: cfg.TTL, clock: c}, nil
}

// TTL is the session lifetime.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// Issue signs a token for username valid for the configured TTL.
func (s *SessionService) Issue(username string) (string, time.Time, error) {
	issuedAt := s.clock.Now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)
	claims := models.SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

// Verify returns the username carried by token. Malformed, badly signed, expired and
// over-age tokens all yield AUTH_INVALID.
func (s *SessionService) Verify(token string) (string, error) {
	if token == "" {
		return "", appErrors.ErrAuthInvalid
	}
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return "", appErrors.Wrap(err, appErrors.ErrAuthInvalid.Code, appErrors.ErrAuthInvalid.Status, appErrors.ErrAuthInvalid.Message)
	}
	if claims.Username == "" || claims.IssuedAt == nil {
		return "", appErrors.ErrAuthInvalid
	}
	// A token is never honoured past TTL from issue, whatever exp it carries.
	if s.clock.Now().Sub(claims.IssuedAt.Time) > s.ttl {
		return "", appErrors.ErrAuthInvalid
	}
	return claims.Username, nil
}
