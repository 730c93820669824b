package types

import (
	"time"

	"github.com/google/uuid"
)

// ParseRecipeRequest represents the request body for POST /parse-recipe
type ParseRecipeRequest struct {
	Text   string     `json:"text" binding:"required"`
	Source SourceMode `json:"source"`
}

// ParseURLRequest represents the request body for POST /parse-url
type ParseURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// LegacyParseResponse is the raw completion wrapper used by the legacy routes
type LegacyParseResponse struct {
	Result string `json:"result"`
}

// UploadImageRequest represents the request body for POST /upload-image
type UploadImageRequest struct {
	ImageData   string `json:"imageData" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType"`
	UserID      string `json:"userId" binding:"required"`
	RecipeID    string `json:"recipeId"`
}

// UploadImageResponse represents the response for a successful upload
type UploadImageResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadURL"`
	UploadPath  string `json:"uploadPath"`
}

// ImageProxyRequest represents the request body for POST /image-proxy
type ImageProxyRequest struct {
	StoragePath string `json:"storagePath" binding:"required"`
	AuthToken   string `json:"authToken"`
}

// UploadSummary is a ledger row as exposed by GET /uploads
type UploadSummary struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"userId"`
	RecipeID    string    `json:"recipeId,omitempty"`
	StoragePath string    `json:"storagePath"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}
