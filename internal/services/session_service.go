package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"vip-order-api/internal/config"
	"vip-order-api/internal/database"
	"vip-order-api/internal/models"

	"gorm.io/gorm"
)

// SessionService handles OAuth login and session authentication.
type SessionService struct {
	oauth *OAuthClient
}

// NewSessionService creates a new session service instance.
func NewSessionService(oauth *OAuthClient) *SessionService {
	return &SessionService{oauth: oauth}
}

// Login exchanges a one-time OAuth code for a local session token,
// creating the user on first login.
func (s *SessionService) Login(ctx context.Context, code string) (*models.User, string, error) {
	info, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", err
	}

	user, err := database.FindOrCreateUserByOpenID(info.OpenID, info.Nickname, info.Avatar)
	if err != nil {
		return nil, "", fmt.Errorf("failed to upsert user: %w", err)
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, "", err
	}

	session := &models.UserSession{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Duration(config.AppConfig.SessionExpireHours) * time.Hour),
	}
	if err := database.CreateSession(session); err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return user, token, nil
}

// Authenticate resolves a session token to its user.
func (s *SessionService) Authenticate(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	session, err := database.GetSessionByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		// 过期会话惰性清理
		_ = database.DeleteSession(token)
		return nil, ErrUnauthorized
	}

	user, err := database.GetUserByID(session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Logout removes the session.
func (s *SessionService) Logout(token string) error {
	return database.DeleteSession(token)
}

// generateSessionToken returns a 64-character hex token from crypto/rand.
func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
