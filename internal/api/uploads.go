package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-import/backend/internal/middleware"
	"github.com/pageza/alchemorsel-import/backend/internal/service"
	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

// UploadsHandler exposes the upload ledger
type UploadsHandler struct {
	ledger service.IUploadLedger
}

// NewUploadsHandler creates a new UploadsHandler instance
func NewUploadsHandler(ledger service.IUploadLedger) *UploadsHandler {
	return &UploadsHandler{ledger: ledger}
}

// RegisterRoutes registers the ledger routes
func (h *UploadsHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/uploads", h.ListUploads)
}

// ListUploads returns a user's uploads, newest first
func (h *UploadsHandler) ListUploads(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "userId is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	uploads, err := h.ledger.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]types.UploadSummary, 0, len(uploads))
	for _, u := range uploads {
		summaries = append(summaries, types.UploadSummary{
			ID:          u.ID,
			UserID:      u.UserID,
			RecipeID:    u.RecipeID,
			StoragePath: u.StoragePath,
			ContentType: u.ContentType,
			SizeBytes:   u.SizeBytes,
			CreatedAt:   u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"uploads": summaries})
}
