package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"schemabrowser/internal/apperrors"
	"schemabrowser/internal/middlewares"
	"schemabrowser/internal/responses"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperrors.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrUnknownTable), errors.Is(err, apperrors.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnknownColumn), errors.Is(err, apperrors.ErrNoColumns):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNoPrimaryKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrUnsatisfiedDependencies):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrQueryFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s: %v", middlewares.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
	}
	responses.Fail(c, status, err, message)
}
