package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/libvisit-api/internal/models"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

// AuthService handles administrator login and session introspection.
type AuthService struct {
	credentials *CredentialStore
	sessions    *SessionService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(credentials *CredentialStore, sessions *SessionService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{credentials: credentials, sessions: sessions, metrics: metrics, validator: validate, logger: logger}
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, *models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", nil, validationError(err, "invalid login payload")
	}

	identity, err := s.credentials.Verify(ctx, req.Username, req.Password)
	if err != nil {
		s.metrics.RecordLogin("error")
		return "", nil, err
	}
	if identity == nil {
		s.metrics.RecordLogin("rejected")
		s.logger.Warn("admin login rejected", zap.String("username", req.Username))
		return "", nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.sessions.Issue(identity.Username)
	if err != nil {
		s.metrics.RecordLogin("error")
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session")
	}
	s.metrics.RecordLogin("success")
	s.logger.Info("admin logged in", zap.String("username", identity.Username))
	return token, &models.LoginResponse{Username: identity.Username, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a session token to a username.
func (s *AuthService) Authenticate(token string) (string, error) {
	return s.sessions.Verify(token)
}

// CheckSession reports whether token is a live session.
func (s *AuthService) CheckSession(token string) models.SessionInfo {
	username, err := s.sessions.Verify(token)
	if err != nil {
		return models.SessionInfo{LoggedIn: false}
	}
	return models.SessionInfo{LoggedIn: true, Username: username}
}

// SessionTTL is the configured session lifetime, used for the cookie Max-Age.
func (s *AuthService) SessionTTL() int {
	return int(s.sessions.TTL().Seconds())
}
