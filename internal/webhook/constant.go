package webhook

import "time"

// GitHub headers
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
	HeaderSignature = "X-Hub-Signature-256"

	signaturePrefix = "sha256="
)

const (
	// GitHub caps webhook payloads at 25 MB.
	maxPayloadBytes = 25 << 20

	limiterCacheSize = 1000
	limiterTTL       = 5 * time.Minute
)

const (
	ReasonDuplicateDelivery = "duplicate delivery"
	ReasonPing              = "ping"

	actionNoOp = "noop"
)
