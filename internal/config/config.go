package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for folio.
type Config struct {
	Server       ServerConfig
	Resume       ResumeConfig
	AI           AIConfig
	Store        StoreConfig
	Notification NotificationConfig
	Client       ClientConfig
}

// ServerConfig controls the HTTP server started by `folio serve`.
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string // "*" allows every origin
	ShutdownTimeout time.Duration
	RateLimit       RateLimitConfig
}

// RateLimitConfig limits chat requests per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int // 0 disables the limit
	Burst             int
}

// ResumeConfig selects where the server reads the resume from.
// With neither Path nor RemoteURL set the embedded default is served.
type ResumeConfig struct {
	Path           string        // local YAML or JSON file
	RemoteURL      string        // base URL of another folio server
	ReloadInterval time.Duration // 0 disables periodic reload
}

// AIConfig controls the LLM backing the chat assistant.
type AIConfig struct {
	Enabled     bool
	Provider    string        // "openai" or "huggingface"
	BaseURL     string        // API base (openai) or full model URL (huggingface)
	Model       string        // model identifier, openai only
	APIKey      string        // expanded from env var by Load
	Timeout     time.Duration // per-request timeout
	MaxTokens   int
	Temperature float64
	MaxRetries  int           // additional attempts after a transient failure
	RetryDelay  time.Duration // delay before the first retry
	MinDelay    time.Duration // minimum gap between upstream calls
}

// Configured reports whether AI answers can be attempted at all.
func (a AIConfig) Configured() bool {
	return a.Enabled && a.APIKey != ""
}

// StoreConfig controls the chat activity store. An empty Path disables it.
type StoreConfig struct {
	Path      string
	Retention time.Duration
}

// NotificationConfig controls chat digests sent to the owner.
type NotificationConfig struct {
	Type           string // "log" or "slack"
	WebhookURL     string // required if type is "slack"
	DigestInterval time.Duration
}

// ClientConfig is used by the viewer and `folio ask`.
type ClientConfig struct {
	APIBase string // empty means the binary's built-in default
	Timeout time.Duration
}

const (
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"

	defaultAddr           = ":5000"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultHuggingFaceURL = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.1"
	slackWebhookPrefix    = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server       rawServerConfig       `yaml:"server"`
	Resume       rawResumeConfig       `yaml:"resume"`
	AI           rawAIConfig           `yaml:"ai"`
	Store        rawStoreConfig        `yaml:"store"`
	Notification rawNotificationConfig `yaml:"notification"`
	Client       rawClientConfig       `yaml:"client"`
}

type rawServerConfig struct {
	Addr            string   `yaml:"addr"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	RateLimit       struct {
		RequestsPerMinute *int `yaml:"requests_per_minute"`
		Burst             int  `yaml:"burst"`
	} `yaml:"rate_limit"`
}

type rawResumeConfig struct {
	Path           string `yaml:"path"`
	RemoteURL      string `yaml:"remote_url"`
	ReloadInterval string `yaml:"reload_interval"`
}

type rawAIConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Timeout     string   `yaml:"timeout"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	MaxRetries  *int     `yaml:"max_retries"`
	RetryDelay  string   `yaml:"retry_delay"`
	MinDelay    string   `yaml:"min_delay"`
}

type rawStoreConfig struct {
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
}

type rawNotificationConfig struct {
	Type           string `yaml:"type"`
	WebhookURL     string `yaml:"webhook_url"`
	DigestInterval string `yaml:"digest_interval"`
}

type rawClientConfig struct {
	APIBase string `yaml:"api_base"`
	Timeout string `yaml:"timeout"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no config file exists:
// embedded resume, keyword-only answers, no store, log notifications.
func Default() *Config {
	cfg, err := build(rawConfig{})
	if err != nil {
		// build only fails on malformed durations, and the zero raw config has none.
		panic(err)
	}
	return cfg
}

func build(raw rawConfig) (*Config, error) {
	shutdown, err := parseDuration("server.shutdown_timeout", raw.Server.ShutdownTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	reload, err := parseDuration("resume.reload_interval", raw.Resume.ReloadInterval, 0)
	if err != nil {
		return nil, err
	}
	aiTimeout, err := parseDuration("ai.timeout", raw.AI.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("ai.retry_delay", raw.AI.RetryDelay, 2*time.Second)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("ai.min_delay", raw.AI.MinDelay, 0)
	if err != nil {
		return nil, err
	}
	retention, err := parseDuration("store.retention", raw.Store.Retention, 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	digest, err := parseDuration("notification.digest_interval", raw.Notification.DigestInterval, 0)
	if err != nil {
		return nil, err
	}
	clientTimeout, err := parseDuration("client.timeout", raw.Client.Timeout, 60*time.Second)
	if err != nil {
		return nil, err
	}

	addr := raw.Server.Addr
	if addr == "" {
		addr = defaultAddr
	}
	origins := raw.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	rpm := 30
	if raw.Server.RateLimit.RequestsPerMinute != nil {
		rpm = *raw.Server.RateLimit.RequestsPerMinute
	}
	burst := raw.Server.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	provider := strings.ToLower(raw.AI.Provider)
	if provider == "" {
		provider = ProviderHuggingFace
	}
	baseURL := raw.AI.BaseURL
	model := raw.AI.Model
	switch provider {
	case ProviderOpenAI:
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		if model == "" {
			model = defaultOpenAIModel
		}
	case ProviderHuggingFace:
		if baseURL == "" {
			baseURL = defaultHuggingFaceURL
		}
	}
	maxTokens := raw.AI.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	temperature := 0.7
	if raw.AI.Temperature != nil {
		temperature = *raw.AI.Temperature
	}
	maxRetries := 2
	if raw.AI.MaxRetries != nil {
		maxRetries = *raw.AI.MaxRetries
	}

	notifType := raw.Notification.Type
	if notifType == "" {
		notifType = "log"
	}

	apiBase := strings.TrimRight(raw.Client.APIBase, "/")

	return &Config{
		Server: ServerConfig{
			Addr:            addr,
			AllowedOrigins:  origins,
			ShutdownTimeout: shutdown,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: rpm,
				Burst:             burst,
			},
		},
		Resume: ResumeConfig{
			Path:           raw.Resume.Path,
			RemoteURL:      strings.TrimRight(raw.Resume.RemoteURL, "/"),
			ReloadInterval: reload,
		},
		AI: AIConfig{
			Enabled:     raw.AI.Enabled,
			Provider:    provider,
			BaseURL:     baseURL,
			Model:       model,
			APIKey:      raw.AI.APIKey,
			Timeout:     aiTimeout,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			MaxRetries:  maxRetries,
			RetryDelay:  retryDelay,
			MinDelay:    minDelay,
		},
		Store: StoreConfig{
			Path:      raw.Store.Path,
			Retention: retention,
		},
		Notification: NotificationConfig{
			Type:           notifType,
			WebhookURL:     raw.Notification.WebhookURL,
			DigestInterval: digest,
		},
		Client: ClientConfig{
			APIBase: apiBase,
			Timeout: clientTimeout,
		},
	}, nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func validate(cfg *Config) error {
	if cfg.Resume.Path != "" && cfg.Resume.RemoteURL != "" {
		return fmt.Errorf("resume.path and resume.remote_url are mutually exclusive")
	}
	if cfg.Resume.ReloadInterval < 0 {
		return fmt.Errorf("resume.reload_interval must not be negative, got %v", cfg.Resume.ReloadInterval)
	}

	if cfg.Server.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("server.rate_limit.requests_per_minute must not be negative")
	}

	switch cfg.AI.Provider {
	case ProviderOpenAI, ProviderHuggingFace:
	default:
		return fmt.Errorf("ai.provider must be %q or %q, got %q", ProviderOpenAI, ProviderHuggingFace, cfg.AI.Provider)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.MaxRetries < 0 {
		return fmt.Errorf("ai.max_retries must not be negative, got %d", cfg.AI.MaxRetries)
	}
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", cfg.AI.Temperature)
	}

	if cfg.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive, got %v", cfg.Client.Timeout)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}
	if cfg.Notification.DigestInterval > 0 && cfg.Store.Path == "" {
		return fmt.Errorf("notification.digest_interval requires store.path")
	}

	return nil
}
