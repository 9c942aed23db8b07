package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingvoclub/placement-backend/internal/config"
	"github.com/lingvoclub/placement-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// SessionClaims binds a signed token to one placement session. The token is
// the test-taker's only handle on their in-progress state; losing it
// forfeits access.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

// AuthService issues and validates session tokens and checks the shared
// admin password.
type AuthService struct {
	cfg      *config.Config
	settings *repository.SettingRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, settings *repository.SettingRepository) *AuthService {
	return &AuthService{cfg: cfg, settings: settings}
}

// GenerateSessionToken signs a token carrying the session ID.
func (s *AuthService) GenerateSessionToken(sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		SessionID: sessionID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateSessionToken parses a token and returns the session ID it names.
func (s *AuthService) ValidateSessionToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.TokenSecret), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token claims")
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session id in token: %w", err)
	}
	return sessionID, nil
}

// CheckAdminPassword compares the supplied password against the stored
// bcrypt hash. A missing hash (never provisioned) rejects every password.
func (s *AuthService) CheckAdminPassword(ctx context.Context, password string) error {
	hash, err := s.settings.GetByKey(ctx, repository.SettingKeyAdminPasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("load admin password hash: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
