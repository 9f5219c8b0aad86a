package http

import (
	"errors"
	"net/http"

	"streamhub/internal/usecase"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{StatusCode: status, Data: data, Message: message})
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, Response{StatusCode: status, Message: err.Error()})
}

// statusFor is the single place usecase errors become HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrUpload):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrUnauthorized),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenReused):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
