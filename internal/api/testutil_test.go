package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
	"vip-order-api/internal/config"
	"vip-order-api/internal/database"
	"vip-order-api/internal/models"
	"vip-order-api/internal/services"
	"vip-order-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const testPaySecret = "test-secret"

// envelope mirrors the standard response body for assertions.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupTestRouter wires config, a throwaway SQLite database and a gin
// engine with all routes registered.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logging.InitLogging()

	config.AppConfig = &config.Config{
		PayMerchantID:      "mch-test",
		PaySecret:          testPaySecret,
		PayNotifyURL:       "https://example.com/api/payment/notify",
		OAuthClientID:      "client-test",
		OAuthClientSecret:  "secret-test",
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

	r := gin.New()
	SetupRoutes(r)
	return r
}

// newSession creates a user with a valid session token.
func newSession(t *testing.T, openID string) (*models.User, string) {
	t.Helper()

	user := &models.User{OpenID: openID, Nickname: "tester"}
	if err := database.DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	token := "test-session-" + openID
	session := &models.UserSession{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := database.DB.Create(session).Error; err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return user, token
}

// newPendingOrder inserts a pending order for the user.
func newPendingOrder(t *testing.T, userID uint, outTradeNo string) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:      userID,
		OutTradeNo:  outTradeNo,
		ProductType: models.VIPTypeLifetime,
		Amount:      6900,
		Status:      models.OrderStatusPending,
	}
	if err := database.DB.Create(order).Error; err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	return order
}

// doJSON performs a JSON request, optionally with a bearer token.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// postNotify posts a payment notification form.
func postNotify(t *testing.T, r *gin.Engine, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/payment/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// notifyParamsFor builds signed callback params for an order.
func notifyParamsFor(t *testing.T, order *models.Order, transactionID string, userID uint) map[string]string {
	t.Helper()

	attach, err := services.EncodeAttachment(&services.Attachment{
		UserID:      userID,
		ProductType: order.ProductType,
	})
	if err != nil {
		t.Fatalf("Failed to encode attachment: %v", err)
	}

	params := map[string]string{
		"out_trade_no":   order.OutTradeNo,
		"transaction_id": transactionID,
		"total_fee":      strconv.FormatInt(order.Amount, 10),
		"attach":         attach,
	}
	params["sign"] = services.NewSigner(testPaySecret).Sign(params)
	return params
}

// decodeEnvelope parses the standard response body.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
	return env
}

// fakeGatewayServer answers unified order calls after verifying the
// request signature.
func fakeGatewayServer(t *testing.T) *httptest.Server {
	t.Helper()

	signer := services.NewSigner(testPaySecret)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
			w.Write([]byte(`{"code":1,"msg":"invalid signature"}`))
			return
		}
		w.Write([]byte(`{"code":0,"msg":"ok","pay_params":{"prepay_id":"prepay-123","nonce_str":"n0nce"}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

// fakeOAuthServer serves the token and userinfo endpoints.
func fakeOAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("code") != "good-code" {
			w.Write([]byte(`{"errcode":40029,"errmsg":"invalid code"}`))
			return
		}
		w.Write([]byte(`{"access_token":"at-123","openid":"openid-login"}`))
	})
	mux.HandleFunc("/oauth/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"openid":"openid-login","nickname":"小明","headimgurl":"https://cdn.example.com/a.png"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
