package api

import (
	"encoding/json"
	"net/http"
	"time"
	"vip-order-api/internal/models"
	"vip-order-api/internal/response"
	"vip-order-api/internal/services"
	"vip-order-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// VIP status responses are cached briefly because clients poll the
// endpoint right after launching the payment.
const vipStatusCacheTTL = 30 * time.Second

// VIPStatusData describes the user's entitlement
type VIPStatusData struct {
	IsVIP        bool       `json:"is_vip"`
	VIPType      string     `json:"vip_type,omitempty"`
	PurchaseTime *time.Time `json:"purchase_time,omitempty"`
	ExpireTime   *time.Time `json:"expire_time,omitempty"` // null 表示永久
}

// UserProfileData is the /api/user/me payload
type UserProfileData struct {
	UserID   uint          `json:"user_id"`
	OpenID   string        `json:"openid"`
	Nickname string        `json:"nickname"`
	Avatar   string        `json:"avatar"`
	VIP      VIPStatusData `json:"vip"`
}

// GetCurrentUser returns the authenticated user's profile
func GetCurrentUser(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.ErrorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session")
		return
	}

	response.SuccessJSON(c, UserProfileData{
		UserID:   user.ID,
		OpenID:   user.OpenID,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
		VIP:      vipStatusOf(user),
	})
}

// GetVIPStatus returns the entitlement snapshot. Served from the Redis
// cache when possible; the cache entry is invalidated on every grant
// so polling clients see the new entitlement promptly.
func GetVIPStatus(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.ErrorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session")
		return
	}

	redisService := services.NewRedisService()
	if payload, ok := redisService.GetCachedVIPStatus(user.ID); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
		return
	}

	resp := response.Success(vipStatusOf(user))
	if raw, err := json.Marshal(resp); err == nil {
		if err := redisService.CacheVIPStatus(user.ID, string(raw), vipStatusCacheTTL); err != nil {
			logging.Warnf("Failed to cache VIP status for user %d: %v", user.ID, err)
		}
	}
	response.JSON(c, http.StatusOK, resp)
}

// vipStatusOf builds the entitlement view of a user.
func vipStatusOf(user *models.User) VIPStatusData {
	return VIPStatusData{
		IsVIP:        user.IsVIP(time.Now()),
		VIPType:      user.VIPType,
		PurchaseTime: user.VIPPurchaseTime,
		ExpireTime:   user.VIPExpireTime,
	}
}
