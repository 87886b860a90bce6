package database

import (
	"path/filepath"
	"testing"
	"vip-order-api/internal/models"
	"vip-order-api/pkg/logging"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// setupTestDB opens a throwaway SQLite database and migrates the schema.
func setupTestDB(t *testing.T) {
	t.Helper()

	logging.InitLogging()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.Order{},
		&models.PaymentNotification{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	DB = db
	RedisClient = nil

	t.Cleanup(func() {
		sqlDB.Close()
		DB = nil
	})
}

func mustCreateUser(t *testing.T, openID string) *models.User {
	t.Helper()
	user := &models.User{OpenID: openID, Nickname: "tester"}
	if err := DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func mustCreateOrder(t *testing.T, userID uint, outTradeNo, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:      userID,
		OutTradeNo:  outTradeNo,
		ProductType: models.VIPTypeLifetime,
		Amount:      6900,
		Status:      status,
	}
	if err := CreateOrder(order); err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	return order
}
