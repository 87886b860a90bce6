package api

import (
	"net/http"
	"time"
	"vip-order-api/internal/models"
	"vip-order-api/internal/response"
	"vip-order-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest represents the create order request
type CreateOrderRequest struct {
	ProductType string `json:"product_type" binding:"required"`
}

// CreateOrderData is returned after the gateway accepts the order
type CreateOrderData struct {
	OutTradeNo string            `json:"out_trade_no"`
	Amount     int64             `json:"amount"`
	PayParams  map[string]string `json:"pay_params"`
}

// OrderData is one order in query/list responses
type OrderData struct {
	OutTradeNo    string     `json:"out_trade_no"`
	ProductType   string     `json:"product_type"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateOrder creates a VIP purchase order and returns the client
// payment parameters from the gateway
func CreateOrder(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.ErrorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format: "+err.Error())
		return
	}

	order, payParams, err := newOrderService().CreateOrder(c.Request.Context(), user, req.ProductType)
	if err != nil {
		logging.Warnf("Order creation failed for user %d: %v", user.ID, err)
		status, code := errorStatus(err)
		response.ErrorJSON(c, status, code, "Failed to create order")
		return
	}

	response.SuccessJSON(c, CreateOrderData{
		OutTradeNo: order.OutTradeNo,
		Amount:     order.Amount,
		PayParams:  payParams,
	})
}

// QueryOrder returns one order owned by the current user
func QueryOrder(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.ErrorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session")
		return
	}

	outTradeNo := c.Query("out_trade_no")
	if outTradeNo == "" {
		response.ErrorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "out_trade_no is required")
		return
	}

	order, err := newOrderService().GetOrderForUser(user, outTradeNo)
	if err != nil {
		status, code := errorStatus(err)
		response.ErrorJSON(c, status, code, "Failed to query order")
		return
	}

	response.SuccessJSON(c, toOrderData(order))
}

// ListOrders returns the current user's orders, newest first
func ListOrders(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.ErrorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session")
		return
	}

	orders, err := newOrderService().ListOrdersForUser(user)
	if err != nil {
		status, code := errorStatus(err)
		response.ErrorJSON(c, status, code, "Failed to list orders")
		return
	}

	data := make([]OrderData, 0, len(orders))
	for i := range orders {
		data = append(data, toOrderData(&orders[i]))
	}
	response.SuccessJSON(c, data)
}

func toOrderData(order *models.Order) OrderData {
	return OrderData{
		OutTradeNo:    order.OutTradeNo,
		ProductType:   order.ProductType,
		Amount:        order.Amount,
		Status:        order.Status,
		TransactionID: order.TransactionID,
		PaidAt:        order.PaidAt,
		CreatedAt:     order.CreatedAt,
	}
}
