package models

import (
	"gorm.io/datatypes"
)

// Payment notification outcomes recorded in the audit trail.
const (
	NotificationOutcomeAcknowledged = "acknowledged"
	NotificationOutcomeRejected     = "rejected"
)

// PaymentNotification 支付回调审计记录
// 每次收到支付平台回调都落一条，无论验签结果如何
type PaymentNotification struct {
	BaseModel

	OutTradeNo    string `json:"out_trade_no" gorm:"size:64;index"` // 商户订单号（可能为空，如参数缺失）
	TransactionID string `json:"transaction_id" gorm:"size:100"`    // 支付平台交易号

	// 原始回调参数（JSON 对象，含 sign）
	Params datatypes.JSON `json:"params" gorm:"type:json"`

	// 处理结果
	Outcome string `json:"outcome" gorm:"not null;size:20;index"` // acknowledged / rejected
	Reason  string `json:"reason" gorm:"size:40"`                 // paid / duplicate / signature_mismatch / ...
}

// TableName 指定表名
func (PaymentNotification) TableName() string {
	return "payment_notifications"
}
