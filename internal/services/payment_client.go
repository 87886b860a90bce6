package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"vip-order-api/internal/config"
	"vip-order-api/internal/models"
	"vip-order-api/pkg/logging"
)

// PaymentGatewayClient talks to the payment gateway's unified order API.
type PaymentGatewayClient struct {
	httpClient *http.Client
	merchantID string
	notifyURL  string
	baseURL    string
	signer     *Signer
}

// NewPaymentGatewayClient creates a gateway client from app config.
func NewPaymentGatewayClient() *PaymentGatewayClient {
	return &PaymentGatewayClient{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		merchantID: config.AppConfig.PayMerchantID,
		notifyURL:  config.AppConfig.PayNotifyURL,
		baseURL:    strings.TrimRight(config.AppConfig.PayGatewayURL, "/"),
		signer:     NewSigner(config.AppConfig.PaySecret),
	}
}

// unifiedOrderResponse represents the gateway's unified order response
type unifiedOrderResponse struct {
	Code      int               `json:"code"`
	Msg       string            `json:"msg"`
	PayParams map[string]string `json:"pay_params"`
}

// UnifiedOrderResult carries the client-side payment parameters the
// gateway returns for a successfully registered order.
type UnifiedOrderResult struct {
	PayParams map[string]string
}

// CreateUnifiedOrder registers the order with the payment gateway.
// 请求参数按签名算法签名后以表单提交；网关返回客户端拉起支付所需的
// pay_params，原样透传给调用方。
func (c *PaymentGatewayClient) CreateUnifiedOrder(ctx context.Context, order *models.Order, body, attach string) (*UnifiedOrderResult, error) {
	params := map[string]string{
		"mchid":        c.merchantID,
		"out_trade_no": order.OutTradeNo,
		"total_fee":    strconv.FormatInt(order.Amount, 10),
		"body":         body,
		"notify_url":   c.notifyURL,
		"attach":       attach,
	}
	params["sign"] = c.signer.Sign(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/gateway/order/create", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamOrder, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUpstreamOrder, err)
	}
	if resp.StatusCode != http.StatusOK {
		logging.Errorf("Gateway returned status %d for order %s: %s", resp.StatusCode, order.OutTradeNo, respBody)
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamOrder, resp.StatusCode)
	}

	var gatewayResp unifiedOrderResponse
	if err := json.Unmarshal(respBody, &gatewayResp); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrUpstreamOrder, err)
	}
	if gatewayResp.Code != 0 {
		logging.Errorf("Gateway rejected order %s: code=%d msg=%s", order.OutTradeNo, gatewayResp.Code, gatewayResp.Msg)
		return nil, fmt.Errorf("%w: %s", ErrUpstreamOrder, gatewayResp.Msg)
	}

	return &UnifiedOrderResult{PayParams: gatewayResp.PayParams}, nil
}
