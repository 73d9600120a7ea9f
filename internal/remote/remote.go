// Package remote classifies failures of calls to external REST APIs.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

const maxBodySnippet = 512

// Error is a failed call to a remote API. StatusCode is zero when no response was received.
type Error struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op + ": remote call failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the call may succeed.
func (e *Error) Transient() bool {
	switch {
	case e.StatusCode == 0:
		return !errors.Is(e.Err, context.Canceled)
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	}

	return false
}

// FromResponse builds an Error from a non-successful response, capturing a snippet of the body.
func FromResponse(op string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))

	return &Error{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// FromTransport wraps an error returned by the HTTP client before any response arrived.
func FromTransport(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// IsTransient classifies any error for retrying: remote errors by status class,
// network timeouts and deadline overruns as transient, everything else as permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Transient()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error

	return errors.As(err, &nerr) && nerr.Timeout()
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.StatusCode
	}

	return 0
}
