package database

import (
	"time"
	"vip-order-api/internal/models"
)

// CreateOrder 创建订单
func CreateOrder(order *models.Order) error {
	return DB.Create(order).Error
}

// GetOrderByOutTradeNo 通过商户订单号获取订单
func GetOrderByOutTradeNo(outTradeNo string) (*models.Order, error) {
	var order models.Order
	err := DB.Where("out_trade_no = ?", outTradeNo).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkOrderPaid 条件更新：仅当订单仍为 pending 时置为 paid
// 返回 true 表示本次调用完成了 pending -> paid 的迁移；false 表示
// 没有可迁移的行（已支付、已取消或不存在），由调用方重新读取判断。
// 并发回调下数据库保证最多一行被更新，因此支付只会生效一次。
func MarkOrderPaid(outTradeNo, transactionID string, paidAt time.Time) (bool, error) {
	result := DB.Model(&models.Order{}).
		Where("out_trade_no = ? AND status = ?", outTradeNo, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusPaid,
			"transaction_id": transactionID,
			"paid_at":        paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetOrdersByUser 获取用户的所有订单（按创建时间倒序）
func GetOrdersByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := DB.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}
