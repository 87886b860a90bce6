package database

import (
	"encoding/json"
	"vip-order-api/internal/models"

	"gorm.io/datatypes"
)

// RecordPaymentNotification 落一条回调审计记录
// params 为支付平台送达的原始表单参数（含 sign）
func RecordPaymentNotification(outTradeNo, transactionID string, params map[string]string, outcome, reason string) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}

	notification := models.PaymentNotification{
		OutTradeNo:    outTradeNo,
		TransactionID: transactionID,
		Params:        datatypes.JSON(raw),
		Outcome:       outcome,
		Reason:        reason,
	}
	return DB.Create(&notification).Error
}

// GetNotificationsByOutTradeNo 获取某订单的全部回调记录（排查用）
// 按到达顺序返回，created_at 相同（同一毫秒到达）时以自增主键定序
func GetNotificationsByOutTradeNo(outTradeNo string) ([]models.PaymentNotification, error) {
	var notifications []models.PaymentNotification
	err := DB.Where("out_trade_no = ?", outTradeNo).Order("created_at ASC, id ASC").Find(&notifications).Error
	return notifications, err
}
