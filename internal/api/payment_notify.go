package api

import (
	"net/http"
	"vip-order-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// Response literals the payment gateway expects. SUCCESS stops
// redelivery; FAIL schedules another attempt.
const (
	notifySuccess = "SUCCESS"
	notifyFail    = "FAIL"
)

// PaymentNotifyHandler receives asynchronous payment notifications.
// 应答始终是 HTTP 200 + 字面量；处理过程中任何 panic 都降级为 FAIL，
// 让网关按重试策略再投一次，而不是把错误页回给网关。
func PaymentNotifyHandler(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("Panic while handling payment notification: %v", r)
			c.String(http.StatusOK, notifyFail)
		}
	}()

	result := newOrderService().HandleCallback(notifyParams(c))
	if result.Acknowledged {
		c.String(http.StatusOK, notifySuccess)
		return
	}
	c.String(http.StatusOK, notifyFail)
}

// notifyParams flattens the notification form into a string map.
// 重复参数取第一个值。
func notifyParams(c *gin.Context) map[string]string {
	if err := c.Request.ParseForm(); err != nil {
		logging.Warnf("Failed to parse payment notification form: %v", err)
		return map[string]string{}
	}

	params := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
