package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"vip-order-api/internal/config"
)

// OAuthClient exchanges login codes with the third-party identity
// platform and fetches basic user profiles.
type OAuthClient struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	baseURL      string
}

// NewOAuthClient creates an OAuth client from app config.
func NewOAuthClient() *OAuthClient {
	return &OAuthClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		clientID:     config.AppConfig.OAuthClientID,
		clientSecret: config.AppConfig.OAuthClientSecret,
		baseURL:      strings.TrimRight(config.AppConfig.OAuthBaseURL, "/"),
	}
}

// OAuthUserInfo is the platform profile for a logged-in user.
type OAuthUserInfo struct {
	OpenID   string `json:"openid"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"headimgurl"`
}

// tokenResponse represents the code-to-token exchange response.
// 平台出错时返回 errcode/errmsg 而不是 HTTP 错误码。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	OpenID      string `json:"openid"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// ExchangeCode trades a one-time login code for the user's profile.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrOAuthExchange)
	}

	query := url.Values{}
	query.Set("client_id", c.clientID)
	query.Set("client_secret", c.clientSecret)
	query.Set("code", code)

	var token tokenResponse
	if err := c.getJSON(ctx, "/oauth/token?"+query.Encode(), &token); err != nil {
		return nil, err
	}
	if token.ErrCode != 0 || token.AccessToken == "" || token.OpenID == "" {
		return nil, fmt.Errorf("%w: errcode=%d errmsg=%s", ErrOAuthExchange, token.ErrCode, token.ErrMsg)
	}

	query = url.Values{}
	query.Set("access_token", token.AccessToken)
	query.Set("openid", token.OpenID)

	var info OAuthUserInfo
	if err := c.getJSON(ctx, "/oauth/userinfo?"+query.Encode(), &info); err != nil {
		return nil, err
	}
	if info.OpenID == "" {
		return nil, fmt.Errorf("%w: userinfo missing openid", ErrOAuthExchange)
	}

	return &info, nil
}

// getJSON performs a GET against the platform and decodes the response.
func (c *OAuthClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create oauth request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrOAuthExchange, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrOAuthExchange, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrOAuthExchange, err)
	}
	return nil
}
