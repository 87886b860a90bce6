package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"vip-order-api/internal/config"
	"vip-order-api/internal/database"
	"vip-order-api/internal/metrics"
	"vip-order-api/internal/models"
	"vip-order-api/pkg/logging"

	"gorm.io/gorm"
)

// 商户订单号前缀，完整格式 VIP_<userId>_<毫秒时间戳>
const outTradeNoPrefix = "VIP"

// Callback reasons recorded in audit rows and metric labels.
const (
	ReasonPaid              = "paid"
	ReasonDuplicate         = "duplicate"
	ReasonMissingParams     = "missing_params"
	ReasonSignatureMismatch = "signature_mismatch"
	ReasonMalformedAttach   = "malformed_attachment"
	ReasonOrderNotFound     = "order_not_found"
	ReasonInvalidTransition = "invalid_transition"
	ReasonStoreError        = "store_error"
)

// CallbackResult describes how a payment notification was handled.
// Acknowledged=true tells the gateway to stop redelivering.
type CallbackResult struct {
	Acknowledged bool
	Reason       string
}

// OrderService owns the order lifecycle: creation against the payment
// gateway and the asynchronous payment notification flow.
type OrderService struct {
	gateway *PaymentGatewayClient
	redis   *RedisService
	mailer  *AlertMailer
	signer  *Signer
}

// NewOrderService creates a new order service instance.
func NewOrderService(gateway *PaymentGatewayClient, redisService *RedisService, mailer *AlertMailer) *OrderService {
	return &OrderService{
		gateway: gateway,
		redis:   redisService,
		mailer:  mailer,
		signer:  NewSigner(config.AppConfig.PaySecret),
	}
}

// NewOutTradeNo builds a merchant order number for the user.
func NewOutTradeNo(userID uint) string {
	return fmt.Sprintf("%s_%d_%d", outTradeNoPrefix, userID, time.Now().UnixMilli())
}

// CreateOrder persists a pending order and registers it with the
// payment gateway. The row is written before the gateway call so a
// notification arriving early can still be matched; if the gateway
// call fails the order simply stays pending.
func (s *OrderService) CreateOrder(ctx context.Context, user *models.User, productType string) (*models.Order, map[string]string, error) {
	product, ok := GetVIPProduct(productType)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidProduct, productType)
	}

	// 下单频控，Redis 不可用时放行
	limited, err := s.redis.CheckOrderRateLimit(user.ID)
	if err != nil {
		logging.Warnf("Rate limit check failed for user %d: %v", user.ID, err)
	}
	if limited {
		return nil, nil, ErrRateLimited
	}

	order := &models.Order{
		UserID:      user.ID,
		OutTradeNo:  NewOutTradeNo(user.ID),
		ProductType: product.Type,
		Amount:      product.Amount,
		Status:      models.OrderStatusPending,
	}
	if err := database.CreateOrder(order); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	attach, err := EncodeAttachment(&Attachment{UserID: user.ID, ProductType: product.Type})
	if err != nil {
		return nil, nil, err
	}

	result, err := s.gateway.CreateUnifiedOrder(ctx, order, product.Name, attach)
	if err != nil {
		return nil, nil, err
	}

	if err := s.redis.SetOrderRateLimit(user.ID, config.AppConfig.RateLimitMinutes); err != nil {
		logging.Warnf("Failed to set rate limit for user %d: %v", user.ID, err)
	}

	metrics.OrdersCreated.WithLabelValues(product.Type).Inc()
	logging.Infof("Order created - out_trade_no: %s, user: %d, amount: %d",
		order.OutTradeNo, user.ID, order.Amount)
	return order, result.PayParams, nil
}

// HandleCallback processes one asynchronous payment notification.
// 每次投递无论结果如何都落审计记录并计数；返回值决定应答字面量。
func (s *OrderService) HandleCallback(params map[string]string) CallbackResult {
	result := s.processCallback(params)

	outcome := models.NotificationOutcomeRejected
	if result.Acknowledged {
		outcome = models.NotificationOutcomeAcknowledged
	}
	if err := database.RecordPaymentNotification(params["out_trade_no"], params["transaction_id"],
		params, outcome, result.Reason); err != nil {
		logging.Errorf("Failed to record payment notification for %s: %v", params["out_trade_no"], err)
	}
	metrics.PaymentCallbacks.WithLabelValues(outcome, result.Reason).Inc()

	return result
}

func (s *OrderService) processCallback(params map[string]string) CallbackResult {
	outTradeNo := params["out_trade_no"]
	transactionID := params["transaction_id"]
	sign := params["sign"]

	if outTradeNo == "" || transactionID == "" || sign == "" {
		logging.Warnf("Payment notification missing required params - out_trade_no: %q, transaction_id: %q",
			outTradeNo, transactionID)
		return CallbackResult{Reason: ReasonMissingParams}
	}

	if !s.signer.Verify(params, sign) {
		logging.Warnf("Payment notification signature mismatch - out_trade_no: %s", outTradeNo)
		return CallbackResult{Reason: ReasonSignatureMismatch}
	}

	attachment, err := DecodeAttachment(params["attach"])
	if err != nil {
		logging.Warnf("Payment notification attach unusable - out_trade_no: %s: %v", outTradeNo, err)
		return CallbackResult{Reason: ReasonMalformedAttach}
	}

	order, err := database.GetOrderByOutTradeNo(outTradeNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Warnf("Payment notification for unknown order %s", outTradeNo)
			return CallbackResult{Reason: ReasonOrderNotFound}
		}
		logging.Errorf("Failed to load order %s: %v", outTradeNo, err)
		return CallbackResult{Reason: ReasonStoreError}
	}

	// 金额不一致仅告警，订单金额以服务端为准
	if fee, err := strconv.ParseInt(params["total_fee"], 10, 64); err != nil || fee != order.Amount {
		logging.Warnf("Payment notification amount mismatch - out_trade_no: %s, got: %q, want: %d",
			outTradeNo, params["total_fee"], order.Amount)
	}

	switch order.Status {
	case models.OrderStatusPending:
		// 继续走下面的条件更新
	case models.OrderStatusPaid:
		// 重复投递：应答成功让网关停止重发
		if order.TransactionID != transactionID {
			logging.Warnf("Duplicate notification carries different transaction_id - out_trade_no: %s, stored: %s, got: %s",
				outTradeNo, order.TransactionID, transactionID)
		}
		return CallbackResult{Acknowledged: true, Reason: ReasonDuplicate}
	default:
		logging.Warnf("Payment notification for %s order %s", order.Status, outTradeNo)
		return CallbackResult{Reason: ReasonInvalidTransition}
	}

	paidAt := time.Now()
	won, err := database.MarkOrderPaid(outTradeNo, transactionID, paidAt)
	if err != nil {
		logging.Errorf("Failed to mark order %s paid: %v", outTradeNo, err)
		return CallbackResult{Reason: ReasonStoreError}
	}
	if !won {
		// 条件更新没有命中说明并发投递抢先完成了迁移，重读确认
		current, err := database.GetOrderByOutTradeNo(outTradeNo)
		if err != nil {
			logging.Errorf("Failed to reload order %s after lost update: %v", outTradeNo, err)
			return CallbackResult{Reason: ReasonStoreError}
		}
		if current.IsPaid() {
			return CallbackResult{Acknowledged: true, Reason: ReasonDuplicate}
		}
		return CallbackResult{Reason: ReasonInvalidTransition}
	}

	logging.Infof("Order paid - out_trade_no: %s, transaction_id: %s", outTradeNo, transactionID)
	s.grantEntitlement(order, attachment, paidAt)
	return CallbackResult{Acknowledged: true, Reason: ReasonPaid}
}

// grantEntitlement grants VIP for a freshly paid order. Best effort:
// the notification is acknowledged either way, failures raise an alert
// for manual follow-up instead of triggering gateway retries.
func (s *OrderService) grantEntitlement(order *models.Order, attachment *Attachment, paidAt time.Time) {
	userID := order.UserID
	if attachment.UserID != userID {
		logging.Warnf("Attachment user %d differs from order user %d for %s, trusting the order row",
			attachment.UserID, userID, order.OutTradeNo)
	}

	// 会员类型与时长以订单行记录的商品为准（建单时已对照商品表校验）
	product, ok := GetVIPProduct(order.ProductType)
	if !ok {
		logging.Warnf("Product %s of order %s is no longer registered, granting without expiry",
			order.ProductType, order.OutTradeNo)
	}

	if err := database.GrantVIP(userID, order.ProductType, order.OutTradeNo, paidAt, product.ExpiresAt(paidAt)); err != nil {
		logging.Errorf("VIP grant failed for paid order %s (user %d): %v", order.OutTradeNo, userID, err)
		metrics.GrantFailures.Inc()
		if s.mailer != nil {
			go s.mailer.SendEntitlementAlert(context.Background(), order.OutTradeNo, userID, err.Error())
		}
		return
	}

	metrics.VIPGrants.Inc()
	if err := s.redis.InvalidateVIPStatus(userID); err != nil {
		logging.Warnf("Failed to invalidate VIP status cache for user %d: %v", userID, err)
	}
	logging.Infof("VIP granted - out_trade_no: %s, user: %d", order.OutTradeNo, userID)
}

// GetOrderForUser returns the order only when it belongs to the user.
// 不属于当前用户的单号按不存在处理，避免探测他人订单状态。
func (s *OrderService) GetOrderForUser(user *models.User, outTradeNo string) (*models.Order, error) {
	order, err := database.GetOrderByOutTradeNo(outTradeNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if order.UserID != user.ID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersForUser returns the user's orders, newest first.
func (s *OrderService) ListOrdersForUser(user *models.User) ([]models.Order, error) {
	orders, err := database.GetOrdersByUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return orders, nil
}
