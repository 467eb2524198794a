package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/clinica/clinic-api/internal/auth"
	"github.com/clinica/clinic-api/internal/domain"
	"github.com/clinica/clinic-api/internal/observability"
	"github.com/clinica/clinic-api/internal/repository"
	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	attempts auth.AttemptTracker
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Attempts auth.AttemptTracker
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	attempts := deps.Attempts
	if attempts == nil {
		attempts = auth.NoopAttemptTracker{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		tokens:   deps.Tokens,
		attempts: attempts,
		metrics:  deps.Metrics,
		logger:   logger,
	}
}

// Login checks username and password and issues a token carrying the
// credential id and role. The only store access is the username lookup.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" {
		s.metrics.LoginAttempt("invalid")
		return nil, apperrors.NewMissingField("username")
	}
	if password == "" {
		s.metrics.LoginAttempt("invalid")
		return nil, apperrors.NewMissingField("password")
	}

	blocked, err := s.attempts.Blocked(ctx, username)
	if err != nil {
		s.logger.Warn("login attempt tracker unavailable", zap.Error(err))
	}
	if blocked {
		s.metrics.LoginAttempt("locked")
		return nil, apperrors.NewTooManyRequests("Demasiados intentos fallidos, intente más tarde")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.LoginAttempt("unknown_user")
			s.recordFailure(ctx, username)
			return nil, apperrors.NewNotFound("Usuario no encontrado", nil)
		}
		return nil, storeFailure(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrEmptyHash) {
			return nil, apperrors.NewDomainError(apperrors.CodeInternal, "Hash de contraseña vacío", http.StatusInternalServerError, nil)
		}
		if auth.IsMismatch(err) {
			s.metrics.LoginAttempt("bad_password")
			s.recordFailure(ctx, username)
			return nil, apperrors.NewUnauthorized("Contraseña incorrecta")
		}
		return nil, apperrors.NewInternalError(err)
	}

	token, exp, err := s.tokens.GenerateToken(user.Username, user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.attempts.Reset(ctx, username); err != nil {
		s.logger.Warn("reset login attempts", zap.Error(err))
	}
	s.metrics.LoginAttempt("ok")
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if err := s.attempts.RecordFailure(ctx, username); err != nil {
		s.logger.Warn("record failed login", zap.Error(err))
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
