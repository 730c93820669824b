package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/pageza/alchemorsel-import/backend/internal/logging"
)

const recipePage = `<!DOCTYPE html>
<html>
<head>
  <title>Grandma's Pancakes</title>
  <style>body { color: red; }</style>
  <script>window.analytics = {};</script>
  <script type="application/ld+json">{"@type":"Recipe","name":"Pancakes"}</script>
  <script type="application/ld+json">{"@type":"Organization","name":"Blog"}</script>
</head>
<body>
  <nav><noscript>enable javascript</noscript></nav>
  <h1>Pancakes</h1>
  <ul><li>2 cups flour</li><li>1 egg</li></ul>
  <p>Mix   and
     fry.</p>
</body>
</html>`

func TestExtractPageText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(recipePage))
	require.NoError(t, err)

	text := ExtractPageText(doc)
	lines := strings.Split(text, "\n")

	assert.Equal(t, `{"@type":"Recipe","name":"Pancakes"}`, lines[0])
	assert.Contains(t, lines, "Grandma's Pancakes")
	assert.Contains(t, lines, "2 cups flour")
	assert.Contains(t, lines, "1 egg")
	assert.Contains(t, lines, "Mix and fry.")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "analytics")
	assert.NotContains(t, text, "Organization")
	assert.NotContains(t, text, "enable javascript")
}

func TestPageFetcher_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "RecipeImporter")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, recipePage)
	}))
	defer ts.Close()

	fetcher := NewPageFetcher(5*time.Second, 20000, true, logging.Discard())
	text, err := fetcher.Fetch(context.Background(), ts.URL+"/pancakes")

	require.NoError(t, err)
	assert.Contains(t, text, "2 cups flour")
}

func TestPageFetcher_FetchTruncates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<p>%s</p>", strings.Repeat("é", 100))
	}))
	defer ts.Close()

	fetcher := NewPageFetcher(5*time.Second, 10, true, logging.Discard())
	text, err := fetcher.Fetch(context.Background(), ts.URL)

	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 10), text)
}

func TestPageFetcher_FetchErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	fetcher := NewPageFetcher(5*time.Second, 20000, true, logging.Discard())

	_, err := fetcher.Fetch(context.Background(), ts.URL+"/missing")
	assert.ErrorIs(t, err, ErrPageFetch)
	assert.Contains(t, err.Error(), "status 404")

	_, err = fetcher.Fetch(context.Background(), "ftp://example.com/recipe")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestPageFetcher_RefusesNonPublicAddresses(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, recipePage)
	}))
	defer ts.Close()

	fetcher := NewPageFetcher(5*time.Second, 20000, false, logging.Discard())
	_, err := fetcher.Fetch(context.Background(), ts.URL)

	assert.ErrorIs(t, err, ErrBlockedHost)
	assert.NotErrorIs(t, err, ErrPageFetch)
	assert.Zero(t, hits)
}

func TestRejectPrivateAddress(t *testing.T) {
	blocked := []string{
		"127.0.0.1:80", "10.1.2.3:443", "172.16.0.1:80", "192.168.1.1:80",
		"169.254.169.254:80", "0.0.0.0:80", "[::1]:443", "[fe80::1]:80", "[fd00::1]:80",
		"[::ffff:127.0.0.1]:80",
	}
	allowed := []string{"93.184.216.34:443", "[2606:2800:220:1::1]:443"}

	for _, addr := range blocked {
		assert.ErrorIs(t, rejectPrivateAddress("tcp", addr, nil), ErrBlockedHost, addr)
	}
	for _, addr := range allowed {
		assert.NoError(t, rejectPrivateAddress("tcp", addr, nil), addr)
	}
}

func TestParsePageURL(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{"https://example.com/recipes/1", true},
		{"  http://example.com  ", true},
		{"example.com/recipes/1", false},
		{"/recipes/1", false},
		{"javascript:alert(1)", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParsePageURL(tt.raw)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidURL)
			}
		})
	}
}
