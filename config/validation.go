package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requiredSecrets must be present in every environment
var requiredSecrets = []string{
	"API_KEY",
	"LLM_API_KEY",
	"S3_BUCKET_NAME",
	"TOKEN_SECRET",
}

// ValidateConfig checks the loaded configuration and reports every problem at once
func ValidateConfig(cfg *Config, problems ...ValidationError) error {
	values := map[string]string{
		"API_KEY":        cfg.APIKey,
		"LLM_API_KEY":    cfg.LLMAPIKey,
		"S3_BUCKET_NAME": cfg.S3Bucket,
		"TOKEN_SECRET":   cfg.TokenSecret,
	}
	for _, name := range requiredSecrets {
		if values[name] == "" {
			problems = append(problems, ValidationError{Field: name, Message: "is required"})
		}
	}

	if cfg.ServerPort == "" {
		problems = append(problems, ValidationError{Field: "SERVER_PORT", Message: "is required"})
	}
	if u, err := url.Parse(cfg.LLMAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, ValidationError{Field: "LLM_API_URL", Message: "must be an absolute URL"})
	}
	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		problems = append(problems, ValidationError{Field: "LLM_TEMPERATURE", Message: "must be between 0 and 2"})
	}
	if cfg.S3URLMode != URLModePublic && cfg.S3URLMode != URLModePresigned {
		problems = append(problems, ValidationError{Field: "S3_URL_MODE", Message: "must be public or presigned"})
	}
	if cfg.MaxTextLength <= 0 {
		problems = append(problems, ValidationError{Field: "MAX_TEXT_LENGTH", Message: "must be positive"})
	}
	if cfg.MaxImageBytes <= 0 {
		problems = append(problems, ValidationError{Field: "MAX_IMAGE_BYTES", Message: "must be positive"})
	}
	if cfg.RateLimitPerHour < 0 {
		problems = append(problems, ValidationError{Field: "RATE_LIMIT_PER_HOUR", Message: "must not be negative"})
	}

	if len(problems) == 0 {
		return nil
	}
	lines := make([]string, 0, len(problems))
	for _, p := range problems {
		lines = append(lines, p.Error())
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}
