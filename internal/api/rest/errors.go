package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-fractions/internal/api/shared/errors"
	"github.com/feral-file/ff-fractions/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondValidationError responds with a validation error.
// Errors already shaped by the request validators are sent as is.
func respondValidationError(c *gin.Context, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadRequest, apiErr)
		return
	}
	c.JSON(http.StatusBadRequest, apierrors.NewValidationError(err.Error()))
}

// respondUnauthorized responds with an unauthorized error
func respondUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError(message))
}

// respondError responds with the status matching a protocol rejection, or with an
// internal server error for anything else
func respondError(c *gin.Context, err error, message string, fields ...zap.Field) {
	if status, apiErr, ok := apierrors.FromDomainError(err); ok {
		c.JSON(status, apiErr)
		return
	}

	logger.ErrorCtx(c.Request.Context(), err, append(fields, zap.String("path", c.Request.URL.Path))...)
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}
