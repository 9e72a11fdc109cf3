// Package config loads the application configuration from defaults, an
// optional config file and the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/career-architect/internal/licensing"
	"github.com/jonathan/career-architect/internal/llm"
	"github.com/jonathan/career-architect/internal/server/ratelimit"
	"github.com/jonathan/career-architect/internal/storage"
)

// Defaults
const (
	DefaultPort           = 7860
	DefaultProductID      = "executive-career-architect"
	DefaultReportDir      = "./reports"
	DefaultLogoPath       = "logo.png"
	DefaultRateLimitRPS   = 0.5
	DefaultRateLimitBurst = 5
	DefaultMaxUploadMB    = 20
)

// ErrMissingAPIKey is returned when the selected provider has no credential.
var ErrMissingAPIKey = errors.New("missing AI backend credential")

// Config is the full runtime configuration. Keys map one to one onto
// environment variables, e.g. report_dir is REPORT_DIR.
type Config struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	LLMProvider  string `mapstructure:"llm_provider" validate:"oneof=gemini openai"`
	LLMModel     string `mapstructure:"llm_model"`
	LLMBaseURL   string `mapstructure:"llm_base_url" validate:"omitempty,url"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	LicenseProductID string        `mapstructure:"license_product_id" validate:"required"`
	LicenseVerifyURL string        `mapstructure:"license_verify_url" validate:"required,url"`
	LicenseTimeout   time.Duration `mapstructure:"license_timeout" validate:"gt=0"`

	ReportDir     string `mapstructure:"report_dir" validate:"required"`
	LogoPath      string `mapstructure:"logo_path"`
	SessionSecret string `mapstructure:"session_secret" validate:"required,min=16"`
	DatabaseURL   string `mapstructure:"database_url"`

	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioRegion    string `mapstructure:"minio_region"`
	MinioBucket    string `mapstructure:"minio_bucket" validate:"required_with=MinioEndpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`

	RateLimitEnabled   bool    `mapstructure:"rate_limit_enabled"`
	RateLimitRPS       float64 `mapstructure:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" validate:"min=1"`
	RateLimitWhitelist string  `mapstructure:"rate_limit_whitelist"`
	RateLimitBlacklist string  `mapstructure:"rate_limit_blacklist"`

	CORSOrigins  string `mapstructure:"cors_origins"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
	MaxUploadMB  int64  `mapstructure:"max_upload_mb" validate:"min=1"`

	// GeneratedSecret is set when SessionSecret was minted for this process
	GeneratedSecret bool `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("llm_provider", string(llm.ProviderGemini))
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("license_product_id", DefaultProductID)
	v.SetDefault("license_verify_url", licensing.DefaultVerifyURL)
	v.SetDefault("license_timeout", licensing.DefaultTimeout)
	v.SetDefault("report_dir", DefaultReportDir)
	v.SetDefault("logo_path", DefaultLogoPath)
	v.SetDefault("session_secret", "")
	v.SetDefault("database_url", "")
	v.SetDefault("minio_endpoint", "")
	v.SetDefault("minio_region", "")
	v.SetDefault("minio_bucket", "")
	v.SetDefault("minio_access_key", "")
	v.SetDefault("minio_secret_key", "")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("rate_limit_rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit_burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_whitelist", "")
	v.SetDefault("rate_limit_blacklist", "")
	v.SetDefault("cors_origins", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("max_upload_mb", DefaultMaxUploadMB)
}

// Load builds the configuration. path names an optional YAML or JSON config
// file; environment variables take precedence over it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.normalize()
	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
		cfg.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMProvider == "" {
		c.LLMProvider = string(llm.ProviderGemini)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.Port == 0 {
		c.Port = DefaultPort
	}
}

// Validate checks field constraints and that the selected provider has a
// credential. A missing credential is fatal.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("%w: set %s for provider %s", ErrMissingAPIKey, c.apiKeyVar(), c.LLMProvider)
	}
	return nil
}

// Provider returns the selected LLM provider
func (c *Config) Provider() llm.Provider {
	return llm.Provider(c.LLMProvider)
}

// APIKey returns the credential for the selected provider
func (c *Config) APIKey() string {
	if c.Provider() == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func (c *Config) apiKeyVar() string {
	if c.Provider() == llm.ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// LLM returns the model configuration for the selected provider. LLMModel,
// when set, overrides the advanced tier used for reports.
func (c *Config) LLM() *llm.Config {
	cfg := llm.ConfigFor(c.Provider())
	if c.LLMModel != "" {
		cfg = cfg.WithModel(llm.TierAdvanced, c.LLMModel)
	}
	cfg.BaseURL = c.LLMBaseURL
	return cfg
}

// Licensing returns the verifier configuration
func (c *Config) Licensing() licensing.Config {
	return licensing.Config{
		VerifyURL: c.LicenseVerifyURL,
		ProductID: c.LicenseProductID,
		Timeout:   c.LicenseTimeout,
	}
}

// MinioEnabled reports whether the object store mirror is configured
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != ""
}

// Minio returns the object store mirror configuration
func (c *Config) Minio() storage.MinioConfig {
	return storage.MinioConfig{
		Endpoint:  c.MinioEndpoint,
		Region:    c.MinioRegion,
		Bucket:    c.MinioBucket,
		AccessKey: c.MinioAccessKey,
		SecretKey: c.MinioSecretKey,
		UseSSL:    c.MinioUseSSL,
	}
}

// RateLimit returns the limiter configuration for the HTTP shell, or nil when
// limiting is switched off.
func (c *Config) RateLimit() *ratelimit.Config {
	if !c.RateLimitEnabled {
		return nil
	}
	rl := ratelimit.NewConfig(c.RateLimitRPS, c.RateLimitBurst)
	rl.Whitelist = ratelimit.ParseIPList(c.RateLimitWhitelist)
	rl.Blacklist = ratelimit.ParseIPList(c.RateLimitBlacklist)
	return rl
}

// AllowedOrigins returns the configured CORS origins
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// MaxUploadBytes returns the multipart body limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
