package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-architect/internal/licensing"
	"github.com/jonathan/career-architect/internal/llm"
)

var envKeys = []string{
	"PORT", "LLM_PROVIDER", "LLM_MODEL", "LLM_BASE_URL", "GEMINI_API_KEY", "OPENAI_API_KEY",
	"LICENSE_PRODUCT_ID", "LICENSE_VERIFY_URL", "LICENSE_TIMEOUT",
	"REPORT_DIR", "LOGO_PATH", "SESSION_SECRET", "DATABASE_URL",
	"MINIO_ENDPOINT", "MINIO_REGION", "MINIO_BUCKET", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL",
	"LOG_LEVEL", "LOG_FORMAT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_WHITELIST", "RATE_LIMIT_BLACKLIST",
	"CORS_ORIGINS", "COOKIE_SECURE", "MAX_UPLOAD_MB",
}

// clearEnv blanks every key Load reads. Empty variables count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, llm.ProviderGemini, cfg.Provider())
	assert.Equal(t, "gem-key", cfg.APIKey())
	assert.Equal(t, licensing.DefaultVerifyURL, cfg.LicenseVerifyURL)
	assert.Equal(t, DefaultProductID, cfg.LicenseProductID)
	assert.Equal(t, 10*time.Second, cfg.LicenseTimeout)
	assert.Equal(t, DefaultReportDir, cfg.ReportDir)
	assert.Equal(t, DefaultLogoPath, cfg.LogoPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.MinioEnabled())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.AllowedOrigins())
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, int64(DefaultMaxUploadMB)<<20, cfg.MaxUploadBytes())
	require.NotNil(t, cfg.RateLimit())
}

func TestLoad_MissingAPIKeyIsFatal(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_OpenAIRequiresItsOwnKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	_, err := Load("")
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.Provider())
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.Equal(t, "gpt-4o", cfg.LLM().GetModel(llm.TierAdvanced))
	assert.Empty(t, cfg.LLM().BaseURL)

	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("LLM_MODEL", "llama3")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM().BaseURL)
	assert.Equal(t, "llama3", cfg.LLM().GetModel(llm.TierAdvanced))
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("PORT", "9000")
	t.Setenv("LICENSE_TIMEOUT", "3s")
	t.Setenv("LLM_MODEL", "gemini-1.5-pro")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_BUCKET", "reports")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("RATE_LIMIT_BURST", "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.Licensing().Timeout)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM().GetModel(llm.TierAdvanced))
	assert.Equal(t, "gemini-2.0-flash-lite", cfg.LLM().GetModel(llm.TierLite))
	assert.Equal(t, "0123456789abcdef0123", cfg.SessionSecret)
	assert.False(t, cfg.GeneratedSecret)
	assert.True(t, cfg.MinioEnabled())
	assert.True(t, cfg.Minio().UseSSL)
	assert.Equal(t, "reports", cfg.Minio().Bucket)
	assert.Equal(t, 2, cfg.RateLimitBurst)
}

func TestLoad_GeneratesSessionSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	a, err := Load("")
	require.NoError(t, err)
	b, err := Load("")
	require.NoError(t, err)

	assert.True(t, a.GeneratedSecret)
	assert.Len(t, a.SessionSecret, 64)
	assert.NotEqual(t, a.SessionSecret, b.SessionSecret)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	content := `
gemini_api_key: file-key
port: 7000
report_dir: /var/reports
license_product_id: prod-123
log_format: text
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.APIKey())
	assert.Equal(t, 8081, cfg.Port, "environment wins over the file")
	assert.Equal(t, "/var/reports", cfg.ReportDir)
	assert.Equal(t, "prod-123", cfg.Licensing().ProductID)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_ConfigFileJSON(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"openai_api_key":"sk-file","llm_provider":"openai"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.Provider())
	assert.Equal(t, "sk-file", cfg.APIKey())
}

func TestLoad_ConfigFileNotFound(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown provider", key: "LLM_PROVIDER", value: "claude"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "bad log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "bad log format", key: "LOG_FORMAT", value: "xml"},
		{name: "bad verify url", key: "LICENSE_VERIFY_URL", value: "not a url"},
		{name: "short secret", key: "SESSION_SECRET", value: "short"},
		{name: "bucket missing", key: "MINIO_ENDPOINT", value: "localhost:9000"},
		{name: "bad llm base url", key: "LLM_BASE_URL", value: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GEMINI_API_KEY", "gem-key")
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error")
		})
	}
}

func TestValidate_DirectConfig(t *testing.T) {
	cfg := &Config{
		Port:             DefaultPort,
		LLMProvider:      "gemini",
		GeminiAPIKey:     "k",
		LicenseProductID: "p",
		LicenseVerifyURL: "https://example.com/verify",
		LicenseTimeout:   time.Second,
		ReportDir:        "r",
		SessionSecret:    "0123456789abcdef",
		LogLevel:         "info",
		LogFormat:        "json",
		RateLimitRPS:     1,
		RateLimitBurst:   1,
		MaxUploadMB:      1,
	}
	assert.NoError(t, cfg.Validate())

	cfg.GeminiAPIKey = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestConfig_RateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("RATE_LIMIT_RPS", "2")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_BLACKLIST", "192.0.2.9")

	cfg, err := Load("")
	require.NoError(t, err)

	rl := cfg.RateLimit()
	require.NotNil(t, rl)
	assert.True(t, rl.Enabled)
	assert.True(t, rl.Whitelist["10.0.0.2"])
	assert.True(t, rl.Blacklist["192.0.2.9"])
	require.Len(t, rl.EndpointConfigs, 2)
	assert.Equal(t, 2.0, rl.EndpointConfigs[0].RPS)
	assert.Equal(t, 3, rl.EndpointConfigs[0].Burst)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Nil(t, cfg.RateLimit())
}

func TestConfig_AllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://a.example ,,https://b.example "}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}
