package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-import/backend/config"
	"github.com/pageza/alchemorsel-import/backend/internal/logging"
)

func newTestLLMService(url string) *LLMService {
	return NewLLMService(&config.Config{
		LLMAPIKey:  "test-api-key",
		LLMAPIURL:  url,
		LLMModel:   "test-model",
		LLMTimeout: 5 * time.Second,
	}, logging.Discard())
}

func TestLLMService_Complete(t *testing.T) {
	var got Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"title\":\"Mock Recipe\"}"}}]}`)
	}))
	defer ts.Close()

	svc := newTestLLMService(ts.URL)
	messages := []Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "hi"}}

	content, err := svc.Complete(context.Background(), messages, 0.3)

	require.NoError(t, err)
	assert.Equal(t, `{"title":"Mock Recipe"}`, content)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, messages, got.Messages)
}

func TestLLMService_CompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "upstream error message is surfaced",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"Rate limit reached"}}`,
			wantErr: "API request failed with status 429: Rate limit reached",
		},
		{
			name:    "non json error body",
			status:  http.StatusBadGateway,
			body:    `upstream unavailable`,
			wantErr: "API request failed with status 502: upstream unavailable",
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: "no response from API",
		},
		{
			name:    "malformed response",
			status:  http.StatusOK,
			body:    `{"choices":`,
			wantErr: "failed to decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			_, err := newTestLLMService(ts.URL).Complete(context.Background(), nil, 0)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMService_CompleteUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := newTestLLMService(url).Complete(context.Background(), nil, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
}
