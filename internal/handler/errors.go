package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Dhrubajit-says/FormForge/internal/middleware"
	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/response"
	"github.com/Dhrubajit-says/FormForge/internal/service"
)

type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// serviceErrors maps domain sentinels to HTTP responses. Order matters:
// the first match wins.
var serviceErrors = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrNotOwner, http.StatusForbidden, response.ErrNotOwner},
	{service.ErrAdminOnly, http.StatusForbidden, response.ErrAdminAccessOnly},
	{service.ErrConflict, http.StatusConflict, response.ErrConflict},
	{service.ErrUserBlocked, http.StatusForbidden, response.ErrUserBlocked},
	{service.ErrCannotModify, http.StatusForbidden, response.ErrActionForbidden},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrSessionRevoked, http.StatusUnauthorized, response.ErrSessionInvalidated},
	{service.ErrTemplateNotTimed, http.StatusBadRequest, response.ErrTemplateNotTimed},
	{service.ErrAttemptNotFound, http.StatusBadRequest, response.ErrInvalidAttempt},
	{service.ErrTimeLimitExceeded, http.StatusConflict, response.ErrTimeLimitExceeded},
}

// validationCodes picks the code of a ValidationError by its cause.
var validationCodes = []struct {
	cause error
	code  response.ErrCode
}{
	{service.ErrAnswerCountMismatch, response.ErrAnswerCountMismatch},
	{service.ErrScoreOutOfRange, response.ErrInvalidScore},
	{service.ErrQuestionIndexOutOfRange, response.ErrInvalidScore},
	{service.ErrNotFreeText, response.ErrNotFreeText},
	{model.ErrAnswerShape, response.ErrValidation},
}

// writeServiceError renders err as the API error envelope. Unknown errors
// are attached to the context for the request logger and reported as 500.
func writeServiceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		code := response.ErrValidation
		for _, vc := range validationCodes {
			if errors.Is(err, vc.cause) {
				code = vc.code
				break
			}
		}
		response.FailWithFields(c, http.StatusBadRequest, code, ve.Fields)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}

	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// actor returns the authenticated caller. The bool is false, with the
// response already written, when no claims are present.
func actor(c *gin.Context) (service.Actor, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return service.Actor{}, false
	}
	return claims.Actor(), true
}

// uuidParam parses a UUID path parameter, answering INVALID_ID on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// bindFailed writes a 400 with the binding field errors.
func bindFailed(c *gin.Context, fields map[string]string) {
	response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
}
