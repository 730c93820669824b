package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	URLModePublic    = "public"
	URLModePresigned = "presigned"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost  string
	ServerPort  string
	CORSOrigins []string
	LogLevel    string

	// Shared secret expected in the x-api-key header
	APIKey string

	// Completion service
	LLMAPIKey      string
	LLMAPIURL      string
	LLMModel       string
	LLMTemperature float64
	LLMTimeout     time.Duration

	// Input limits
	MaxTextLength     int
	FetchTimeout      time.Duration
	MaxPageText       int
	MaxImageBytes     int64
	FetchAllowPrivate bool

	// Object storage
	S3Bucket        string
	AWSRegion       string
	S3Endpoint      string
	S3PublicBaseURL string
	S3URLMode       string
	S3PresignTTL    time.Duration

	// Identity tokens
	TokenSecret string
	TokenIssuer string

	// Redis backs the completion cache and rate limiting; empty disables both
	RedisURL         string
	CacheTTL         time.Duration
	RateLimitPerHour int

	// Postgres backs the upload ledger; empty disables it
	DatabaseURL string
}

// LoadConfig builds a Config from environment variables, *_FILE indirections
// and Docker secrets, then validates it.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if env.loadsDotEnv() {
		// A missing .env file is normal outside local development
		_ = godotenv.Load()
	}

	r := &reader{}
	cfg := &Config{
		Environment:       env,
		ServerHost:        r.str("SERVER_HOST", ""),
		ServerPort:        r.str("SERVER_PORT", "8080"),
		CORSOrigins:       r.list("CORS_ORIGINS"),
		LogLevel:          r.str("LOG_LEVEL", "info"),
		APIKey:            r.str("API_KEY", ""),
		LLMAPIKey:         r.str("LLM_API_KEY", ""),
		LLMAPIURL:         r.str("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		LLMModel:          r.str("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature:    r.float("LLM_TEMPERATURE", 0.2),
		LLMTimeout:        r.duration("LLM_TIMEOUT", 60*time.Second),
		MaxTextLength:     r.integer("MAX_TEXT_LENGTH", 50000),
		FetchTimeout:      r.duration("FETCH_TIMEOUT", 15*time.Second),
		MaxPageText:       r.integer("MAX_PAGE_TEXT", 20000),
		FetchAllowPrivate: r.boolean("FETCH_ALLOW_PRIVATE_HOSTS", false),
		MaxImageBytes:     int64(r.integer("MAX_IMAGE_BYTES", 10<<20)),
		S3Bucket:          r.str("S3_BUCKET_NAME", ""),
		AWSRegion:         r.str("AWS_REGION", "us-east-1"),
		S3Endpoint:        r.str("S3_ENDPOINT", ""),
		S3PublicBaseURL:   r.str("S3_PUBLIC_BASE_URL", ""),
		S3URLMode:         r.str("S3_URL_MODE", URLModePublic),
		S3PresignTTL:      r.duration("S3_PRESIGN_TTL", time.Hour),
		TokenSecret:       r.str("TOKEN_SECRET", ""),
		TokenIssuer:       r.str("TOKEN_ISSUER", ""),
		RedisURL:          r.str("REDIS_URL", ""),
		CacheTTL:          r.duration("CACHE_TTL", 24*time.Hour),
		RateLimitPerHour:  r.integer("RATE_LIMIT_PER_HOUR", 60),
		DatabaseURL:       r.str("DATABASE_URL", ""),
	}

	if err := ValidateConfig(cfg, r.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// reader resolves keys and remembers values that failed to parse
type reader struct {
	errs []ValidationError
}

func (r *reader) str(name, fallback string) string {
	if value, ok := lookup(name); ok {
		return value
	}
	return fallback
}

func (r *reader) list(name string) []string {
	value, ok := lookup(name)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *reader) integer(name string, fallback int) int {
	value, ok := lookup(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: name, Message: "must be an integer"})
		return fallback
	}
	return n
}

func (r *reader) float(name string, fallback float64) float64 {
	value, ok := lookup(name)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: name, Message: "must be a number"})
		return fallback
	}
	return f
}

func (r *reader) boolean(name string, fallback bool) bool {
	value, ok := lookup(name)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: name, Message: "must be true or false"})
		return fallback
	}
	return b
}

func (r *reader) duration(name string, fallback time.Duration) time.Duration {
	value, ok := lookup(name)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: name, Message: "must be a duration such as 30s"})
		return fallback
	}
	return d
}

// lookup resolves NAME from the environment, then from the file named by
// NAME_FILE, then from the Docker secret $SECRETS_DIR/name.
func lookup(name string) (string, bool) {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value, true
	}
	if path := os.Getenv(name + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if value := strings.TrimSpace(string(data)); value != "" {
				return value, true
			}
		}
	}
	if value := readSecret(strings.ToLower(name)); value != "" {
		return value, true
	}
	return "", false
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// String renders the config for startup logs with secrets masked
func (c *Config) String() string {
	mask := func(s string) string {
		if s == "" {
			return "<unset>"
		}
		return "****"
	}
	return fmt.Sprintf("env=%s addr=%s llm=%s model=%s bucket=%s url_mode=%s redis=%s database=%s api_key=%s token_secret=%s",
		c.Environment, c.Addr(), c.LLMAPIURL, c.LLMModel, c.S3Bucket, c.S3URLMode,
		mask(c.RedisURL), mask(c.DatabaseURL), mask(c.APIKey), mask(c.TokenSecret))
}
