package models

import (
	"time"

	"gorm.io/datatypes"
)

// VIP product types.
const (
	VIPTypeLifetime = "lifetime" // 永久会员
)

// User 用户模型
// 通过第三方 OAuth 登录创建，openid 是唯一标识
type User struct {
	BaseModel

	// OAuth 字段
	OpenID   string `json:"openid" gorm:"not null;size:64;uniqueIndex"` // 第三方平台用户标识
	Nickname string `json:"nickname" gorm:"size:100"`                   // 昵称
	Avatar   string `json:"avatar" gorm:"size:500"`                     // 头像地址

	// VIP 字段。默认命名策略会把 VIP 前缀拆成 v_ip_*，列名全部显式指定
	VIPType         string         `json:"vip_type" gorm:"column:vip_type;size:32"`             // 会员类型，空表示非会员
	VIPPurchaseTime *time.Time     `json:"vip_purchase_time" gorm:"column:vip_purchase_time"`   // 最近一次购买时间
	VIPExpireTime   *time.Time     `json:"vip_expire_time" gorm:"column:vip_expire_time"`       // 到期时间，nil 表示永久
	VIPOrderIDs     datatypes.JSON `json:"vip_order_ids" gorm:"column:vip_order_ids;type:json"` // 授予会员的订单号列表（JSON 数组）
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsVIP reports whether the user currently holds an active VIP
// entitlement. A nil expire time means the grant never expires.
func (u *User) IsVIP(now time.Time) bool {
	if u.VIPType == "" {
		return false
	}
	if u.VIPExpireTime == nil {
		return true
	}
	return now.Before(*u.VIPExpireTime)
}
