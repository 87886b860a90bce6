package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"
	"vip-order-api/internal/config"
	"vip-order-api/internal/database"
	"vip-order-api/internal/models"
	"vip-order-api/pkg/logging"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const testPaySecret = "test-secret"

// setupTestEnv wires config, logging and a throwaway SQLite database.
func setupTestEnv(t *testing.T) {
	t.Helper()

	logging.InitLogging()
	config.AppConfig = &config.Config{
		PayMerchantID:      "mch-test",
		PaySecret:          testPaySecret,
		PayNotifyURL:       "https://example.com/api/payment/notify",
		SessionExpireHours: 72,
		RateLimitMinutes:   1,
		ServiceName:        "VIP Order Service",
	}

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

	// 单连接让并发用例的写入在 SQLite 上串行化
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

	database.DB = db
	database.RedisClient = nil

	t.Cleanup(func() {
		sqlDB.Close()
		database.DB = nil
	})
}

// newTestOrderService builds an order service against the test config.
func newTestOrderService() *OrderService {
	return NewOrderService(NewPaymentGatewayClient(), NewRedisService(), NewAlertMailer())
}

// createTestUser inserts a user.
func createTestUser(t *testing.T, openID string) *models.User {
	t.Helper()
	user := &models.User{OpenID: openID, Nickname: "tester"}
	if err := database.DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// createTestOrder inserts an order in the given status. The order
// number uses a nanosecond suffix so tests can create several orders
// for one user without colliding.
func createTestOrder(t *testing.T, userID uint, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:      userID,
		OutTradeNo:  fmt.Sprintf("VIP_%d_%d", userID, time.Now().UnixNano()),
		ProductType: models.VIPTypeLifetime,
		Amount:      6900,
		Status:      status,
	}
	if err := database.CreateOrder(order); err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}
	return order
}

// signedNotification builds gateway callback params for the order.
func signedNotification(t *testing.T, order *models.Order, transactionID string, userID uint) map[string]string {
	t.Helper()
	attach, err := EncodeAttachment(&Attachment{UserID: userID, ProductType: order.ProductType})
	if err != nil {
		t.Fatalf("Failed to encode attachment: %v", err)
	}

	params := map[string]string{
		"out_trade_no":   order.OutTradeNo,
		"transaction_id": transactionID,
		"total_fee":      strconv.FormatInt(order.Amount, 10),
		"attach":         attach,
	}
	params["sign"] = NewSigner(testPaySecret).Sign(params)
	return params
}

// fakeGateway runs an httptest stand-in for the payment gateway that
// verifies request signatures and records every order registration.
func fakeGateway(t *testing.T) (*httptest.Server, *[]map[string]string) {
	t.Helper()

	var calls []map[string]string
	signer := NewSigner(testPaySecret)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gateway/order/create" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		params := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if !signer.Verify(params, params["sign"]) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 1,
				"msg":  "invalid signature",
			})
			return
		}

		calls = append(calls, params)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"msg":  "ok",
			"pay_params": map[string]string{
				"prepay_id": "prepay-123",
				"nonce_str": "n0nce",
			},
		})
	}))
	t.Cleanup(server.Close)

	return server, &calls
}
