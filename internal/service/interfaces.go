package service

import (
	"context"
	"io"

	"github.com/pageza/alchemorsel-import/backend/internal/models"
	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

// Completer returns a single text completion for a role-tagged conversation
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// PageReader turns a webpage into plain text suitable for a prompt
type PageReader interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	ContentType string
	// Size is -1 when the store did not report a length
	Size int64
}

// ObjectStore is the object-storage collaborator used for recipe images
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte, contentType, owner string) error
	Exists(ctx context.Context, path string) (bool, error)
	Stat(ctx context.Context, path string) (ObjectInfo, error)
	Open(ctx context.Context, path string) (io.ReadCloser, ObjectInfo, error)
	URL(ctx context.Context, path string) (string, error)
}

// TokenVerifier resolves a bearer token to the authenticated subject
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IRecipeImporter defines the interface for recipe import operations
type IRecipeImporter interface {
	ImportText(ctx context.Context, text string, mode types.SourceMode) (types.RecipeRecord, error)
	ImportURL(ctx context.Context, pageURL string) (types.RecipeRecord, error)
	CompleteText(ctx context.Context, text string, mode types.SourceMode) (string, error)
	CompleteURL(ctx context.Context, pageURL string) (string, error)
}

// IImageService defines the interface for image upload and proxy operations
type IImageService interface {
	Upload(ctx context.Context, req *types.UploadImageRequest) (*types.UploadImageResponse, error)
	Open(ctx context.Context, storagePath string) (io.ReadCloser, ObjectInfo, error)
}

// IUploadLedger defines the interface for the upload ledger
type IUploadLedger interface {
	Record(ctx context.Context, upload *models.Upload) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Upload, error)
}
