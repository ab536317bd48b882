package webhook

// SecurityConfig holds webhook security settings
type SecurityConfig struct {
	Secret          string   // Shared secret for signature verification
	AllowedIPs      []string // IP or CIDR allowlist, empty allows all
	RateLimitPerMin int      // Max requests per minute per client IP
}

// Result is the acknowledgement returned to GitHub for every accepted
// delivery.
type Result struct {
	Action     string `json:"action"`
	Workflow   string `json:"workflow,omitempty"`
	Reason     string `json:"reason,omitempty"`
	DeliveryID string `json:"delivery_id"`
}
