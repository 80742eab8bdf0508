package handler

import (
	"errors"
	"net/http"

	"backend/pkg/apperr"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps workflow error sentinels onto HTTP statuses. InvalidState is
// 409: the request was well-formed but raced or contradicted the letter's
// current state.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrInvalidAssignment),
		errors.Is(err, apperr.ErrMissingAttachments),
		errors.Is(err, apperr.ErrNothingToRevise):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrInvalidState),
		errors.Is(err, apperr.ErrAlreadySigned),
		errors.Is(err, apperr.ErrNotSigned),
		errors.Is(err, apperr.ErrDuplicateNumber):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// callerID pulls the authenticated user id set by the auth middleware.
func callerID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	id, _ := userID.(string)
	return id
}
