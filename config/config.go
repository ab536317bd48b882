package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Repository automation
	GitHub       GitHubConfig
	Bot          BotConfig
	Orchestrator OrchestratorConfig
	Automation   AutomationConfig

	// Knowledge store
	Qdrant    QdrantConfig
	Voyage    VoyageConfig
	Knowledge KnowledgeConfig

	// LLM Provider Abstraction
	LLM LLMConfig

	// Webhooks
	Webhook WebhookConfig
	Ledger  LedgerConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type GitHubConfig struct {
	Token       string
	BotLogin    string // Login of the account the bot acts as; events it authored are ignored.
	APIURL      string // Empty for github.com; set for GitHub Enterprise.
	CloneURL    string // Base used to build clone URLs, e.g. https://github.com
	AuthorName  string
	AuthorEmail string
}

type BotConfig struct {
	TriggerToken   string
	CommentMarker  string
	RootDir        string
	Formatter      []string // Command + args; file paths are appended.
	ValidFileTypes []string
}

type OrchestratorConfig struct {
	MaxSteps      int
	MaxToolRounds int
}

type AutomationConfig struct {
	RunTimeout time.Duration
}

type QdrantConfig struct {
	URL            string
	APIKey         string
	CollectionName string
	VectorSize     int
}

type VoyageConfig struct {
	APIKey string
	Model  string
}

type KnowledgeConfig struct {
	ChunkSize int
	Limit     int
}

// LLMConfig holds configuration for the LLM provider abstraction layer
type LLMConfig struct {
	Providers       []ProviderConfig `yaml:"providers"`
	FallbackEnabled bool             `yaml:"fallback_enabled"`
	RetryAttempts   int              `yaml:"retry_attempts"`
	RetryDelay      string           `yaml:"retry_delay"`
	MaxTotalTimeout string           `yaml:"max_total_timeout"`
}

// ProviderConfig holds configuration for a single LLM provider
type ProviderConfig struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	Priority int    `yaml:"priority"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

type WebhookConfig struct {
	Enabled         bool
	Secret          string
	AllowedIPs      []string
	RateLimitPerMin int
	TunnelAPI       string // Local ngrok API; when set the public payload URL is logged at startup.
}

type LedgerConfig struct {
	Path string
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	}
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// GitHub
	cfg.GitHub.Token = expandEnvVar(viper.GetString("github.token"))
	if token := viper.GetString("github_token"); token != "" {
		cfg.GitHub.Token = token
	}
	cfg.GitHub.BotLogin = viper.GetString("github.bot_login")
	if login := viper.GetString("bot_username"); login != "" {
		cfg.GitHub.BotLogin = login
	}
	cfg.GitHub.APIURL = viper.GetString("github.api_url")
	cfg.GitHub.CloneURL = viper.GetString("github.clone_url")
	cfg.GitHub.AuthorName = viper.GetString("github.author_name")
	cfg.GitHub.AuthorEmail = viper.GetString("github.author_email")
	if cfg.GitHub.AuthorName == "" {
		cfg.GitHub.AuthorName = cfg.GitHub.BotLogin
	}

	// Bot behaviour
	cfg.Bot.TriggerToken = viper.GetString("bot.trigger_token")
	cfg.Bot.CommentMarker = viper.GetString("bot.comment_marker")
	cfg.Bot.RootDir = viper.GetString("bot.root_dir")
	cfg.Bot.Formatter = splitList(viper.GetString("bot.formatter"), " ")
	cfg.Bot.ValidFileTypes = splitList(viper.GetString("bot.valid_file_types"), ",")

	cfg.Orchestrator.MaxSteps = viper.GetInt("orchestrator.max_steps")
	cfg.Orchestrator.MaxToolRounds = viper.GetInt("orchestrator.max_tool_rounds")
	cfg.Automation.RunTimeout = viper.GetDuration("automation.run_timeout")

	// Knowledge store
	cfg.Qdrant.URL = viper.GetString("qdrant.url")
	cfg.Qdrant.CollectionName = viper.GetString("qdrant.collection_name")
	cfg.Qdrant.VectorSize = viper.GetInt("qdrant.vector_size")
	cfg.Qdrant.APIKey = expandEnvVar(viper.GetString("qdrant.api_key"))
	if qdrantURL := viper.GetString("qdrant_url"); qdrantURL != "" {
		cfg.Qdrant.URL = qdrantURL
	}

	cfg.Voyage.APIKey = expandEnvVar(viper.GetString("voyage.api_key"))
	if voyageKey := viper.GetString("voyage_api_key"); voyageKey != "" {
		cfg.Voyage.APIKey = voyageKey
	}
	cfg.Voyage.Model = viper.GetString("voyage.model")

	cfg.Knowledge.ChunkSize = viper.GetInt("knowledge.chunk_size")
	cfg.Knowledge.Limit = viper.GetInt("knowledge.limit")

	// LLM Provider Abstraction
	cfg.LLM.FallbackEnabled = viper.GetBool("llm.fallback_enabled")
	cfg.LLM.RetryAttempts = viper.GetInt("llm.retry_attempts")
	cfg.LLM.RetryDelay = viper.GetString("llm.retry_delay")
	cfg.LLM.MaxTotalTimeout = viper.GetString("llm.max_total_timeout")

	if viper.IsSet("llm.providers") {
		providersRaw := viper.Get("llm.providers")
		if providersList, ok := providersRaw.([]interface{}); ok {
			for _, p := range providersList {
				if providerMap, ok := p.(map[string]interface{}); ok {
					cfg.LLM.Providers = append(cfg.LLM.Providers, ProviderConfig{
						Name:     getStringFromMap(providerMap, "name"),
						Enabled:  getBoolFromMap(providerMap, "enabled"),
						Priority: getIntFromMap(providerMap, "priority"),
						APIKey:   expandEnvVar(getStringFromMap(providerMap, "api_key")),
						BaseURL:  getStringFromMap(providerMap, "base_url"),
						Model:    getStringFromMap(providerMap, "model"),
						Timeout:  getStringFromMap(providerMap, "timeout"),
					})
				}
			}
		}
	}

	if err := validateLLMConfig(&cfg.LLM); err != nil {
		return nil, fmt.Errorf("invalid llm config: %w", err)
	}

	// Webhooks
	cfg.Webhook.Enabled = viper.GetBool("webhook.enabled")
	cfg.Webhook.Secret = expandEnvVar(viper.GetString("webhook.secret"))
	if webhookSecret := viper.GetString("webhook_secret"); webhookSecret != "" {
		cfg.Webhook.Secret = webhookSecret
	}
	cfg.Webhook.RateLimitPerMin = viper.GetInt("webhook.rate_limit_per_min")
	// viper does not split env-provided lists
	cfg.Webhook.AllowedIPs = splitList(viper.GetString("webhook.allowed_ips"), ",")
	cfg.Webhook.TunnelAPI = viper.GetString("webhook.tunnel_api")

	cfg.Ledger.Path = viper.GetString("ledger.path")

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "development")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("github.clone_url", "https://github.com")
	viper.SetDefault("github.author_email", "autobot@users.noreply.github.com")

	viper.SetDefault("bot.trigger_token", "/support")
	viper.SetDefault("bot.comment_marker", "This comment is written and managed by a bot. Do not edit.")
	viper.SetDefault("bot.root_dir", "/tmp")
	viper.SetDefault("bot.formatter", "autopep8 --in-place --aggressive")
	viper.SetDefault("bot.valid_file_types", "py,txt,md,cpp,c,java,js,html,css,ts,json,go")

	viper.SetDefault("orchestrator.max_steps", 60)
	viper.SetDefault("orchestrator.max_tool_rounds", 12)
	viper.SetDefault("automation.run_timeout", "20m")

	viper.SetDefault("qdrant.collection_name", "repositories")
	viper.SetDefault("qdrant.vector_size", 1024)
	viper.SetDefault("voyage.model", "voyage-code-3")
	viper.SetDefault("knowledge.chunk_size", 1500)
	viper.SetDefault("knowledge.limit", 8)

	viper.SetDefault("webhook.rate_limit_per_min", 60)
	viper.SetDefault("webhook.enabled", true)
	viper.SetDefault("ledger.path", "data/ledger.db")

	// LLM defaults
	viper.SetDefault("llm.fallback_enabled", true)
	viper.SetDefault("llm.retry_attempts", 3)
	viper.SetDefault("llm.retry_delay", "1s")
	viper.SetDefault("llm.max_total_timeout", "120s")
}

func validate(cfg *Config) error {
	if cfg.GitHub.BotLogin == "" {
		return fmt.Errorf("github.bot_login is required: the bot must know its own identity to ignore its own events")
	}
	if cfg.Bot.TriggerToken == "" {
		return fmt.Errorf("bot.trigger_token must not be empty")
	}
	if cfg.Orchestrator.MaxSteps <= 0 {
		return fmt.Errorf("orchestrator.max_steps must be positive")
	}
	return nil
}

// expandEnvVar expands environment variables in the format ${VAR_NAME}
func expandEnvVar(value string) string {
	if value == "" {
		return value
	}

	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envValue := viper.GetString(envVar); envValue != "" {
			return envValue
		}
		if envValue := viper.GetString(strings.ToLower(envVar)); envValue != "" {
			return envValue
		}
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
	}

	return value
}

// validateLLMConfig validates the LLM configuration
func validateLLMConfig(cfg *LLMConfig) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("no LLM providers configured - please add llm.providers section to config.yaml")
	}

	enabledCount := 0
	priorityMap := make(map[int]bool)

	for i, provider := range cfg.Providers {
		if provider.Name == "" {
			return fmt.Errorf("provider %d: name is required", i)
		}
		if provider.Model == "" {
			return fmt.Errorf("provider %s: model is required", provider.Name)
		}

		if !provider.Enabled {
			continue
		}
		enabledCount++

		if provider.Priority <= 0 {
			return fmt.Errorf("provider %s: priority must be positive", provider.Name)
		}
		if priorityMap[provider.Priority] {
			return fmt.Errorf("provider %s: duplicate priority %d", provider.Name, provider.Priority)
		}
		priorityMap[provider.Priority] = true
	}

	if enabledCount == 0 {
		return fmt.Errorf("no enabled LLM providers")
	}

	return nil
}

func splitList(raw, sep string) []string {
	var out []string
	for _, item := range strings.Split(raw, sep) {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Helper functions to safely extract values from map[string]interface{}
func getStringFromMap(m map[string]interface{}, key string) string {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	if val, ok := m[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getIntFromMap(m map[string]interface{}, key string) int {
	if val, ok := m[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
		// Handle float64 from JSON unmarshaling
		if f, ok := val.(float64); ok {
			return int(f)
		}
	}
	return 0
}
