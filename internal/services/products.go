package services

import (
	"time"
	"vip-order-api/internal/models"
)

// VIPProduct describes a purchasable VIP plan.
type VIPProduct struct {
	Type     string        // 商品类型标识，写入订单
	Name     string        // 展示名称，作为支付单的 body
	Amount   int64         // 价格，单位：分
	Duration time.Duration // 会员时长，0 表示永久
}

// ExpiresAt returns the entitlement expiry for a purchase at the given
// time, nil for non-expiring plans.
func (p VIPProduct) ExpiresAt(purchasedAt time.Time) *time.Time {
	if p.Duration == 0 {
		return nil
	}
	t := purchasedAt.Add(p.Duration)
	return &t
}

// 在售商品表。价格以服务端为准，客户端传入的金额一律忽略。
var vipProducts = map[string]VIPProduct{
	models.VIPTypeLifetime: {
		Type:   models.VIPTypeLifetime,
		Name:   "永久会员",
		Amount: 6900,
	},
}

// GetVIPProduct looks up a product by its type identifier.
func GetVIPProduct(productType string) (VIPProduct, bool) {
	p, ok := vipProducts[productType]
	return p, ok
}
