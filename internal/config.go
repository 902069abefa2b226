package internal

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted in AI_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ProviderConfig holds the settings of one classification backend.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Config is the environment-driven application configuration. The wizard has
// no flags beyond this: everything is read from the process environment,
// with a .env file overriding stale machine variables.
type Config struct {
	Provider       string
	OpenAI         ProviderConfig
	Gemini         ProviderConfig
	MaxRetries     int
	RetryBackoff   time.Duration
	ConfirmTimeout time.Duration
	BatchSize      int
	DataDir        string
	LogsDir        string
}

// ActiveProvider returns the settings of the selected backend.
func (c *Config) ActiveProvider() ProviderConfig {
	if c.Provider == ProviderOpenAI {
		return c.OpenAI
	}
	return c.Gemini
}

// LoadConfig reads configuration from the environment, loading .env from
// workDir first (with override). It fails with ConfigError before any
// network activity happens.
func LoadConfig(workDir string) (*Config, error) {
	// .env should override stale machine env variables.
	envPath := filepath.Join(workDir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Overload(envPath); err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("cannot load %s: %v", envPath, err)}
		}
	}

	provider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	if provider == "" {
		provider = ProviderOpenAI
	}
	if provider != ProviderOpenAI && provider != ProviderGemini {
		return nil, &ConfigError{Message: "AI_PROVIDER must be openai or gemini"}
	}

	openai, err := buildOpenAIConfig()
	if err != nil {
		return nil, err
	}
	gemini, err := buildGeminiConfig()
	if err != nil {
		return nil, err
	}

	if provider == ProviderOpenAI && openai.APIKey == "" {
		return nil, &ConfigError{Message: "AI_PROVIDER=openai requires OPENAI_API_KEY"}
	}
	if provider == ProviderGemini && gemini.APIKey == "" {
		return nil, &ConfigError{Message: "AI_PROVIDER=gemini requires GEMINI_API_KEY"}
	}

	maxRetries, err := envInt("AI_MAX_RETRIES", 3, 1)
	if err != nil {
		return nil, err
	}
	backoff, err := envSeconds("AI_RETRY_BACKOFF_SECONDS", 1.0, 0.1)
	if err != nil {
		return nil, err
	}
	confirmTimeout, err := envInt("AI_CONFIRM_TIMEOUT_SECONDS", 120, 1)
	if err != nil {
		return nil, err
	}
	batchSize, err := envInt("AI_BATCH_SIZE", 200, 1)
	if err != nil {
		return nil, err
	}

	dataDir := envString("DATA_DIR", "data")
	logsDir := envString("LOGS_DIR", "logs")
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(workDir, dataDir)
	}
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(workDir, logsDir)
	}

	return &Config{
		Provider:       provider,
		OpenAI:         openai,
		Gemini:         gemini,
		MaxRetries:     maxRetries,
		RetryBackoff:   backoff,
		ConfirmTimeout: time.Duration(confirmTimeout) * time.Second,
		BatchSize:      batchSize,
		DataDir:        dataDir,
		LogsDir:        logsDir,
	}, nil
}

// EnsureRuntimeDirs creates the data and logs directories.
func EnsureRuntimeDirs(c *Config) error {
	for _, dir := range []string{c.DataDir, c.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// MaskSecret redacts a secret for display, keeping just enough of the edges
// to recognize which key is configured.
func MaskSecret(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func buildOpenAIConfig() (ProviderConfig, error) {
	baseURL, err := normalizeBaseURL("OPENAI_BASE_URL", envString("OPENAI_BASE_URL", "https://api.openai.com/v1"))
	if err != nil {
		return ProviderConfig{}, err
	}
	timeout, err := envInt("OPENAI_TIMEOUT_SECONDS", 45, 1)
	if err != nil {
		return ProviderConfig{}, err
	}
	return ProviderConfig{
		APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL: baseURL,
		Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
		Timeout: time.Duration(timeout) * time.Second,
	}, nil
}

func buildGeminiConfig() (ProviderConfig, error) {
	baseURL, err := normalizeBaseURL("GEMINI_BASE_URL", envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"))
	if err != nil {
		return ProviderConfig{}, err
	}
	timeout, err := envInt("GEMINI_TIMEOUT_SECONDS", 45, 1)
	if err != nil {
		return ProviderConfig{}, err
	}
	cfg := ProviderConfig{
		APIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		BaseURL: baseURL,
		Model:   envString("GEMINI_MODEL", "gemini-2.0-flash"),
		Timeout: time.Duration(timeout) * time.Second,
	}
	if strings.HasPrefix(cfg.APIKey, "sk-") {
		return ProviderConfig{}, &ConfigError{
			Message: "GEMINI_API_KEY looks like an OpenAI key (sk- prefix); use a Gemini key (usually AIza prefix)",
		}
	}
	return cfg, nil
}

func envString(name, def string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return def
	}
	return value
}

func envInt(name string, def, minimum int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Message: fmt.Sprintf("%s must be an integer, got %q", name, raw)}
	}
	if value < minimum {
		return 0, &ConfigError{Message: fmt.Sprintf("%s must be at least %d, got %d", name, minimum, value)}
	}
	return value, nil
}

func envSeconds(name string, def, minimum float64) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	value := def
	if raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &ConfigError{Message: fmt.Sprintf("%s must be a number, got %q", name, raw)}
		}
		value = parsed
	}
	if value < minimum {
		return 0, &ConfigError{Message: fmt.Sprintf("%s must be at least %g, got %g", name, minimum, value)}
	}
	return time.Duration(value * float64(time.Second)), nil
}

func normalizeBaseURL(name, value string) (string, error) {
	normalized := strings.TrimRight(strings.TrimSpace(value), "/")
	if normalized == "" {
		return "", &ConfigError{Message: fmt.Sprintf("%s must not be empty", name)}
	}
	parsed, err := url.Parse(normalized)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", &ConfigError{Message: fmt.Sprintf("%s must be a full URL (e.g. http://127.0.0.1:8000/v1)", name)}
	}
	return normalized, nil
}
