package webhook

import "errors"

var (
	ErrSecretNotConfigured = errors.New("webhook secret not configured")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrIPNotAllowed        = errors.New("ip not allowed")
)
