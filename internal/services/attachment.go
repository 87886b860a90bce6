package services

import (
	"encoding/json"
	"fmt"
)

// Attachment 透传字段
// 下单时附在支付单上，支付平台在异步回调里原样带回，
// 用于把回调关联到用户和商品。字段名与客户端约定为 camelCase。
type Attachment struct {
	UserID      uint   `json:"userId"`
	ProductType string `json:"productType"`
}

// EncodeAttachment serializes the attachment for the attach parameter.
func EncodeAttachment(a *Attachment) (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("failed to encode attachment: %w", err)
	}
	return string(b), nil
}

// DecodeAttachment parses the attach parameter carried back by the
// payment notification. Missing or unusable payloads are rejected so
// the caller never acknowledges a notification it cannot attribute.
func DecodeAttachment(raw string) (*Attachment, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty attach", ErrMalformedAttach)
	}

	var a Attachment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAttach, err)
	}
	if a.UserID == 0 {
		return nil, fmt.Errorf("%w: missing userId", ErrMalformedAttach)
	}
	if a.ProductType == "" {
		return nil, fmt.Errorf("%w: missing productType", ErrMalformedAttach)
	}
	return &a, nil
}
