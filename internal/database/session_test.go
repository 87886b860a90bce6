package database

import (
	"errors"
	"testing"
	"time"
	"vip-order-api/internal/models"

	"gorm.io/gorm"
)

func TestSessionLifecycle(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "openid-session")

	session := &models.UserSession{
		Token:     "token-abc",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := CreateSession(session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	loaded, err := GetSessionByToken("token-abc")
	if err != nil {
		t.Fatalf("GetSessionByToken failed: %v", err)
	}
	if loaded.UserID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, loaded.UserID)
	}

	if err := DeleteSession("token-abc"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := GetSessionByToken("token-abc"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected session gone, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	setupTestDB(t)
	user := mustCreateUser(t, "openid-expiry")

	sessions := []*models.UserSession{
		{Token: "live-1", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)},
		{Token: "dead-1", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)},
		{Token: "dead-2", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)},
	}
	for _, s := range sessions {
		if err := CreateSession(s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	deleted, err := DeleteExpiredSessions(time.Now())
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 sessions deleted, got %d", deleted)
	}

	if _, err := GetSessionByToken("live-1"); err != nil {
		t.Errorf("expected live session to survive, got %v", err)
	}
}
