package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-import/backend/internal/service"
	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

// RecipeHandler handles recipe import requests
type RecipeHandler struct {
	importer service.IRecipeImporter
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(importer service.IRecipeImporter) *RecipeHandler {
	return &RecipeHandler{importer: importer}
}

// RegisterRoutes registers the import routes
func (h *RecipeHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/parse-recipe", h.ParseRecipe)
	router.POST("/parse-url", h.ParseURL)
	router.POST("/legacy/parse-recipe", h.LegacyParseRecipe)
	router.POST("/legacy/parse-url", h.LegacyParseURL)
}

// ParseRecipe extracts a recipe from pasted or OCR'd text
func (h *RecipeHandler) ParseRecipe(c *gin.Context) {
	var req types.ParseRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	record, err := h.importer.ImportText(c.Request.Context(), req.Text, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ParseURL extracts a recipe from a webpage
func (h *RecipeHandler) ParseURL(c *gin.Context) {
	var req types.ParseURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	record, err := h.importer.ImportURL(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// LegacyParseRecipe returns the raw completion for older app builds
func (h *RecipeHandler) LegacyParseRecipe(c *gin.Context) {
	var req types.ParseRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	raw, err := h.importer.CompleteText(c.Request.Context(), req.Text, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.LegacyParseResponse{Result: raw})
}

// LegacyParseURL returns the raw completion for a webpage
func (h *RecipeHandler) LegacyParseURL(c *gin.Context) {
	var req types.ParseURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	raw, err := h.importer.CompleteURL(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.LegacyParseResponse{Result: raw})
}
