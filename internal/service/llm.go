package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/pageza/alchemorsel-import/backend/config"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a request to the chat completions API
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// LLMService talks to an OpenAI-compatible chat completions endpoint
type LLMService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	log    logrus.FieldLogger
}

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg *config.Config, log logrus.FieldLogger) *LLMService {
	return &LLMService{
		apiKey: cfg.LLMAPIKey,
		apiURL: cfg.LLMAPIURL,
		model:  cfg.LLMModel,
		client: &http.Client{Timeout: cfg.LLMTimeout},
		log:    log.WithField("component", "llm"),
	}
}

// Complete sends the conversation and returns the first choice's content
func (s *LLMService) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	jsonData, err := json.Marshal(Request{
		Model:       s.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("llm").Inc()
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("llm").Inc()
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result completionResponse
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode != http.StatusOK {
		upstreamErrorsTotal.WithLabelValues("llm").Inc()
		message := string(body)
		if decodeErr == nil && result.Error != nil && result.Error.Message != "" {
			message = result.Error.Message
		}
		s.log.WithField("status", resp.StatusCode).Warn("completion request rejected")
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, message)
	}
	if decodeErr != nil {
		upstreamErrorsTotal.WithLabelValues("llm").Inc()
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if len(result.Choices) == 0 {
		upstreamErrorsTotal.WithLabelValues("llm").Inc()
		return "", fmt.Errorf("no response from API")
	}

	content := result.Choices[0].Message.Content
	s.log.WithField("chars", len(content)).Debug("completion received")
	return content, nil
}
