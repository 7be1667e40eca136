// Package errors provides the error taxonomy shared by the catalog engine.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork marks transport-level failures: the request never produced an HTTP response.
var ErrNetwork = errors.New("network error")

// ErrServer is the sentinel every *ServerError unwraps to.
var ErrServer = errors.New("server error")

var ErrProductNotFound = errors.New("product not found")
var ErrRecordNotFound = errors.New("record not found")

// ErrStaleResult is returned internally when a fetch resolves after its filter generation was superseded.
var ErrStaleResult = errors.New("stale result discarded")

var ErrCacheWrite = errors.New("cache write failed")
var ErrInvalidFilter = errors.New("invalid filter")
var ErrInvalidCartItem = errors.New("invalid cart item")
var ErrUnauthorized = errors.New("unauthorized")

// ServerError is a non-2xx response. Message carries the server-supplied text when there was one.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

func (e *ServerError) Unwrap() error {
	return ErrServer
}

// Temporary reports whether retrying the same request may succeed.
func (e *ServerError) Temporary() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

// UserMessage returns the text to surface to a shopper for err: the server message
// when the server sent one, otherwise the error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
