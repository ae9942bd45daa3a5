package service

import (
	"context"
	"errors"
	"time"

	"reservio/internal/auth"
	"reservio/internal/database"
	"reservio/internal/domain"
	"reservio/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService issues dashboard sessions. The JWT only locates the
// server-side session record; revoking the session invalidates the token.
type AuthService struct {
	repo     domain.Repository
	sessions domain.SessionRepository
	secret   string
	ttl      time.Duration
	logger   *zerolog.Logger
}

func NewAuthService(repo domain.Repository, sessions domain.SessionRepository, secret string, ttl time.Duration, logger *zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = time.Duration(models.DefaultSessionTTL) * time.Second
	}
	return &AuthService{
		repo:     repo,
		sessions: sessions,
		secret:   secret,
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		HotelID:   user.HotelID,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SetSession(ctx, session); err != nil {
		return "", nil, err
	}

	token, err := auth.NewAccessToken(s.secret, session.ID, user.ID, s.ttl)
	if err != nil {
		return "", nil, err
	}

	if s.logger != nil {
		s.logger.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	}
	return token, user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := auth.ParseAccessToken(s.secret, token)
	if err != nil {
		return err
	}
	return s.sessions.DeleteSession(ctx, claims.SessionID)
}

// Resolve maps a bearer token to its server-side session. A valid JWT whose
// session was revoked resolves to ErrInvalidToken.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	claims, err := auth.ParseAccessToken(s.secret, token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, auth.ErrInvalidToken
	}
	return session, nil
}
