package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/alchemorsel-import/backend/internal/middleware"
	"github.com/pageza/alchemorsel-import/backend/internal/service"
	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

// ImageHandler handles recipe image upload and proxy requests
type ImageHandler struct {
	images service.IImageService
	tokens service.TokenVerifier
	log    logrus.FieldLogger
}

// NewImageHandler creates a new image handler
func NewImageHandler(images service.IImageService, tokens service.TokenVerifier, log logrus.FieldLogger) *ImageHandler {
	return &ImageHandler{
		images: images,
		tokens: tokens,
		log:    log.WithField("component", "image_handler"),
	}
}

// RegisterRoutes registers the image routes
func (h *ImageHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/upload-image", h.UploadImage)
	router.POST("/image-proxy", h.ImageProxy)
}

// UploadImage stores a base64 encoded image for a user
func (h *ImageHandler) UploadImage(c *gin.Context) {
	var req types.UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	resp, err := h.images.Upload(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImageProxy streams a stored image to a caller holding a valid identity token
func (h *ImageHandler) ImageProxy(c *gin.Context) {
	var req types.ImageProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	subject, err := h.tokens.Verify(req.AuthToken)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "Unauthorized"})
		return
	}

	body, info, err := h.images.Open(c.Request.Context(), req.StoragePath)
	if err != nil {
		respondError(c, err)
		return
	}
	defer func() { _ = body.Close() }()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h.log.WithFields(logrus.Fields{
		"subject":    subject,
		"path":       req.StoragePath,
		"request_id": c.GetString(middleware.RequestIDKey),
	}).Debug("proxying image")

	c.DataFromReader(http.StatusOK, info.Size, contentType, body, map[string]string{
		"Cache-Control":          "private, max-age=3600",
		"X-Content-Type-Options": "nosniff",
	})
}
