package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeLLM is a chat-completions endpoint that always answers with Content
type FakeLLM struct {
	URL string

	mu      sync.Mutex
	content string
	calls   int
}

// NewFakeLLM starts a fake completion endpoint
func NewFakeLLM(t *testing.T, content string) *FakeLLM {
	t.Helper()
	fake := &FakeLLM{content: content}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.calls++
		content := fake.content
		fake.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	fake.URL = srv.URL
	return fake
}

// SetContent changes the completion returned from now on
func (f *FakeLLM) SetContent(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = content
}

// Calls returns how many completions were requested
func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
