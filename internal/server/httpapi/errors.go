package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error kind to the response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes {"error": message} and stops the handler chain.
// Errors without a user-facing message are answered with MsgUnknown.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := common.Message(err, common.MsgUnknown)
	if status == http.StatusUnauthorized && msg == common.MsgUnknown {
		msg = common.MsgUnauthorized
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
