package models

import (
	"time"
)

// Order status values. An order is created as pending and moves to paid
// exactly once when the payment gateway confirms the transaction.
const (
	OrderStatusPending   = "pending"   // 待支付
	OrderStatusPaid      = "paid"      // 已支付
	OrderStatusCancelled = "cancelled" // 已取消
	OrderStatusExpired   = "expired"   // 已过期
)

// Order 订单模型
// 每次购买生成一条订单记录，out_trade_no 是商户侧唯一单号
type Order struct {
	BaseModel

	// 关联字段
	UserID uint `json:"user_id" gorm:"not null;index"` // 下单用户

	// 订单标识
	OutTradeNo string `json:"out_trade_no" gorm:"not null;size:64;uniqueIndex"` // 商户订单号，格式 VIP_<userId>_<毫秒时间戳>

	// 商品信息
	ProductType string `json:"product_type" gorm:"not null;size:32"` // 商品类型，如 lifetime
	Amount      int64  `json:"amount" gorm:"not null"`               // 金额，单位：分

	// 状态
	Status string `json:"status" gorm:"not null;size:20;index"` // pending / paid / cancelled / expired

	// 支付平台字段（支付成功后写入）
	TransactionID string     `json:"transaction_id" gorm:"size:100;index"` // 支付平台交易号
	PaidAt        *time.Time `json:"paid_at"`                              // 支付完成时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsPaid reports whether the order has already been confirmed.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}
