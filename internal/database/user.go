package database

import (
	"encoding/json"
	"time"
	"vip-order-api/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetUserByID 通过主键获取用户
func GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := DB.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateUserByOpenID 通过 openid 查找用户，不存在则创建
// 已存在时刷新昵称和头像（以第三方平台最新资料为准）
func FindOrCreateUserByOpenID(openID, nickname, avatar string) (*models.User, error) {
	user := models.User{
		OpenID:   openID,
		Nickname: nickname,
		Avatar:   avatar,
	}

	// Use FirstOrCreate to avoid duplicates
	result := DB.Where("open_id = ?", openID).FirstOrCreate(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 && (user.Nickname != nickname || user.Avatar != avatar) {
		user.Nickname = nickname
		user.Avatar = avatar
		if err := DB.Model(&user).Updates(map[string]interface{}{
			"nickname": nickname,
			"avatar":   avatar,
		}).Error; err != nil {
			return nil, err
		}
	}

	return &user, nil
}

// GrantVIP 授予用户会员并补记订单号
// 使用 SELECT FOR UPDATE 锁定行，同一用户的并发授予串行执行，
// 追加 vip_order_ids 不会互相覆盖（SQLite 无行锁，驱动会忽略该子句）。
// 每次授予都以最近一单刷新会员字段；同一订单号只记一次，重入安全。
func GrantVIP(userID uint, vipType, outTradeNo string, purchasedAt time.Time, expiresAt *time.Time) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}

		orderIDs, changed, err := appendOrderID(user.VIPOrderIDs, outTradeNo)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"vip_type":          vipType,
			"vip_purchase_time": purchasedAt,
			"vip_expire_time":   expiresAt,
		}
		if changed {
			updates["vip_order_ids"] = orderIDs
		}
		return tx.Model(&user).Updates(updates).Error
	})
}

// appendOrderID 向 JSON 数组追加订单号（去重）
func appendOrderID(raw datatypes.JSON, outTradeNo string) (datatypes.JSON, bool, error) {
	var ids []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, false, err
		}
	}

	for _, id := range ids {
		if id == outTradeNo {
			return raw, false, nil
		}
	}

	ids = append(ids, outTradeNo)
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, false, err
	}
	return datatypes.JSON(b), true, nil
}
