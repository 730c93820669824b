//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-import/backend/config"
	"github.com/pageza/alchemorsel-import/backend/internal/api"
	"github.com/pageza/alchemorsel-import/backend/internal/logging"
	"github.com/pageza/alchemorsel-import/backend/internal/middleware"
	"github.com/pageza/alchemorsel-import/backend/internal/router"
	"github.com/pageza/alchemorsel-import/backend/internal/service"
	"github.com/pageza/alchemorsel-import/backend/internal/storage"
	"github.com/pageza/alchemorsel-import/backend/internal/testhelpers"
	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

const testAPIKey = "integration-key"

type harness struct {
	router *gin.Engine
	llm    *testhelpers.FakeLLM
	s3     *testhelpers.FakeS3
	auth   *service.AuthService
}

func setup(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logging.Discard()

	db := testhelpers.SetupTestDatabase(t)
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	llm := testhelpers.NewFakeLLM(t, `{"title":"Soup","ingredientsByProcessingStep":[],"steps":"Boil.","tags":["dinner"]}`)
	fakeS3, s3cfg := testhelpers.NewFakeS3(t, "https://cdn.example.com")

	cfg := &config.Config{LLMAPIKey: "k", LLMAPIURL: llm.URL, LLMModel: "test", LLMTimeout: 5 * time.Second}
	auth := service.NewAuthService("token-secret", "")
	ledger := service.NewUploadLedger(db)

	r := router.SetupRouter(router.Dependencies{
		APIKey: testAPIKey,
		Log:    log,
		Importer: service.NewRecipeImporter(
			service.NewLLMService(cfg, log),
			service.NewPageFetcher(5*time.Second, 20000, true, log),
			service.NewImportCache(redisClient, time.Hour),
			0.2, 50000, log,
		),
		Images:      service.NewImageService(storage.NewS3Store(s3cfg, false, time.Hour), ledger, 1<<20, log),
		Tokens:      auth,
		Ledger:      ledger,
		RateLimiter: middleware.NewImportRateLimiter(redisClient, 100, log),
		HealthChecks: map[string]api.HealthCheck{
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})
	return &harness{router: r, llm: llm, s3: fakeS3, auth: auth}
}

func (h *harness) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestImportFlow(t *testing.T) {
	h := setup(t)

	w := h.post(t, "/parse-recipe", map[string]string{"text": "water, salt"})
	require.Equal(t, http.StatusOK, w.Code)
	var record types.RecipeRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "Soup", record.Title)

	// identical input is served from the cache
	w = h.post(t, "/parse-recipe", map[string]string{"text": "water, salt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, h.llm.Calls())

	h.llm.SetContent("I am not sure what this is.")
	w = h.post(t, "/parse-recipe", map[string]string{"text": "???"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, types.DefaultRecipeTitle, record.Title)
	assert.Equal(t, "I am not sure what this is.", record.Steps)
}

func TestUploadAndProxyFlow(t *testing.T) {
	h := setup(t)

	w := h.post(t, "/upload-image", map[string]string{
		"imageData":   base64.StdEncoding.EncodeToString([]byte("fake-jpeg")),
		"fileName":    "soup.jpg",
		"contentType": "image/jpeg",
		"userId":      "user-1",
		"recipeId":    "recipe-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var uploaded types.UploadImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	assert.True(t, uploaded.Success)
	assert.Regexp(t, `^recipe-images/user-1/recipe-1/\d+_soup\.jpg$`, uploaded.UploadPath)

	stored, ok := h.s3.Object(uploaded.UploadPath)
	require.True(t, ok)
	assert.Equal(t, "user-1", stored.Owner)

	token, err := h.auth.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)
	w = h.post(t, "/image-proxy", map[string]string{"storagePath": uploaded.UploadPath, "authToken": token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fake-jpeg", w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodGet, "/uploads?userId=user-1", nil)
	req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Uploads []types.UploadSummary `json:"uploads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Uploads, 1)
	assert.Equal(t, uploaded.UploadPath, listing.Uploads[0].StoragePath)
}

func TestRejectsMissingAPIKey(t *testing.T) {
	h := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/parse-recipe", bytes.NewReader([]byte(`{"text":"soup"}`)))
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, h.llm.Calls())
}
