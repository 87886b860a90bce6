package database

import (
	"time"
	"vip-order-api/internal/models"
)

// CreateSession 创建登录会话
func CreateSession(session *models.UserSession) error {
	return DB.Create(session).Error
}

// GetSessionByToken 通过令牌获取会话
func GetSessionByToken(token string) (*models.UserSession, error) {
	var session models.UserSession
	err := DB.Where("token = ?", token).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession 删除会话（登出）
func DeleteSession(token string) error {
	return DB.Where("token = ?", token).Delete(&models.UserSession{}).Error
}

// DeleteExpiredSessions 清理过期会话，返回删除行数
func DeleteExpiredSessions(now time.Time) (int64, error) {
	result := DB.Where("expires_at < ?", now).Delete(&models.UserSession{})
	return result.RowsAffected, result.Error
}
