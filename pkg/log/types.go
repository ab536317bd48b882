package log

// ZapConfig configures the zap-backed Logger.
type ZapConfig struct {
	Level        string // debug, info, warn, error, dpanic, panic, fatal
	Mode         string // production or development
	Encoding     string // json or console
	ColorEnabled bool
}

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"

	EncodingJSON    = "json"
	EncodingConsole = "console"
)

type ctxKey string

// Context keys whose values are attached to every log line.
const (
	DeliveryIDKey ctxKey = "delivery_id"
	RunIDKey      ctxKey = "run_id"
)
