package riot

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes. Retry policy and user messaging key off these via
// errors.Is; the wrapped StatusError keeps the upstream status and detail.
var (
	ErrInvalidInput        = errors.New("invalid player name")
	ErrNotFound            = errors.New("player not found")
	ErrAuthFailure         = errors.New("api key rejected")
	ErrRateLimited         = errors.New("rate limited by upstream")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUnclassified        = errors.New("unexpected upstream response")
)

// StatusError carries the upstream HTTP status and detail text of a
// non-success response, wrapped around its failure class.
type StatusError struct {
	Status int
	Detail string
	kind   error
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (status %d: %s)", e.kind.Error(), e.Status, e.Detail)
	}
	return fmt.Sprintf("%s (status %d)", e.kind.Error(), e.Status)
}

func (e *StatusError) Unwrap() error { return e.kind }

// classifyStatus maps a non-200 status to its failure class and whether the
// request may be retried.
func classifyStatus(status int) (kind error, retryable bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailure, false
	case http.StatusNotFound:
		return ErrNotFound, false
	case http.StatusTooManyRequests:
		return ErrRateLimited, true
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return ErrUpstreamUnavailable, true
	default:
		return ErrUnclassified, false
	}
}

// Retryable reports whether err is a transient condition worth another
// attempt. Transport-level errors (no HTTP status at all) are retryable.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		_, retry := classifyStatus(se.Status)
		return retry
	}
	// No status means the request never completed: a connectivity problem.
	return !errors.Is(err, ErrInvalidInput)
}

// UserMessage renders a terminal failure as the single human-readable
// summary shown to the user.
func UserMessage(err error) string {
	var se *StatusError
	detail := ""
	if errors.As(err, &se) && se.Detail != "" {
		detail = ": " + se.Detail
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return "Player names are 3-16 letters, digits or spaces."
	case errors.Is(err, ErrNotFound):
		return "No such player" + detail
	case errors.Is(err, ErrAuthFailure):
		return "The API key was rejected; check your configuration" + detail
	case errors.Is(err, ErrRateLimited):
		return "The upstream API kept rate-limiting us; try again shortly" + detail
	case errors.Is(err, ErrUpstreamUnavailable):
		return "The upstream API is unavailable; try again shortly" + detail
	case errors.Is(err, ErrUnclassified):
		return "The upstream API returned an unexpected response" + detail
	default:
		return "Could not reach the upstream API: " + err.Error()
	}
}
