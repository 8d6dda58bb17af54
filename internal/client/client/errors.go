package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status     int
	Code       string
	Message    string
	RequestID  string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s (%d %s, request %s)", e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation_error":
		return common.ErrorValidation
	case "unauthorized":
		return common.ErrorUnauthorized
	case "forbidden":
		return common.ErrorForbidden
	case "not_found":
		return common.ErrorNotFound
	case "already_exists":
		return common.ErrorAlreadyExists
	case "conflict":
		return common.ErrorConflict
	case "invalid_state":
		return common.ErrorInvalidState
	case "account_locked":
		return common.ErrorAccountLocked
	default:
		return common.ErrorInternal
	}
}
