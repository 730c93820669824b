package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-import/backend/internal/middleware"
	"github.com/pageza/alchemorsel-import/backend/internal/service"
)

var badRequestErrors = []error{
	service.ErrInvalidURL,
	service.ErrBlockedHost,
	service.ErrTextTooLong,
	service.ErrEmptyText,
	service.ErrUnsupportedSource,
	service.ErrUnsafePath,
	service.ErrInvalidImage,
	service.ErrImageTooLarge,
	service.ErrInvalidOwner,
}

// statusFor maps a service error to the HTTP status it is reported with
func statusFor(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPageFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), middleware.ErrorResponse{Error: err.Error()})
}

func respondInvalidRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid request: " + err.Error()})
}
