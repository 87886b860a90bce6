package services

import "errors"

// Sentinel errors shared across services. Handlers map these to stable
// API error codes with errors.Is.
var (
	ErrInvalidProduct   = errors.New("unknown product type")
	ErrOrderNotFound    = errors.New("order not found")
	ErrUpstreamOrder    = errors.New("payment gateway order creation failed")
	ErrOAuthExchange    = errors.New("oauth code exchange failed")
	ErrUnauthorized     = errors.New("invalid or expired session")
	ErrRateLimited      = errors.New("too many order requests")
	ErrMalformedAttach  = errors.New("malformed attachment payload")
	ErrStoreUnavailable = errors.New("order store unavailable")
)
