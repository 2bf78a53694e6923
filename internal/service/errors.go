package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Domain errors. Handlers map them to response codes with errors.Is.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrNotOwner     = errors.New("caller does not own this resource")
	ErrAdminOnly    = errors.New("admin role required")
	ErrConflict     = errors.New("email or username already registered")
	ErrUserBlocked  = errors.New("user is blocked")
	ErrCannotModify = errors.New("action not allowed on this account")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")

	ErrAnswerCountMismatch     = errors.New("answer count does not match question count")
	ErrQuestionIndexOutOfRange = errors.New("question index out of range")
	ErrNotFreeText             = errors.New("question is not a free-text question")
	ErrScoreOutOfRange         = errors.New("manual score outside allowed range")

	ErrTemplateNotTimed  = errors.New("template has no time limit")
	ErrAttemptNotFound   = errors.New("attempt not found for this template")
	ErrTimeLimitExceeded = errors.New("time limit exceeded")
)

// ValidationError carries per-field messages. Cause, when set, names the
// specific rule that failed so callers can tell failures apart.
type ValidationError struct {
	Cause  error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	msg := "validation failed"
	if e.Cause != nil {
		msg = e.Cause.Error()
	}
	if len(parts) == 0 {
		return msg
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func newValidationError(cause error, fields map[string]string) *ValidationError {
	return &ValidationError{Cause: cause, Fields: fields}
}

// notFound translates a missing row into ErrNotFound and leaves every other
// error untouched.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
