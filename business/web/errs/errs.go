// Package errs provides error types the web layer uses to map ledger
// failures onto HTTP responses.
package errs

import "errors"

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted wraps an expected error with the HTTP status code it should be
// reported with. Anything else is treated as a 500.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface using the message of the wrapped
// error. This is what shows up in the service logs.
func (t *Trusted) Error() string {
	return t.Err.Error()
}

// GetTrusted returns the Trusted error wrapped in err, or nil.
func GetTrusted(err error) *Trusted {
	var t *Trusted
	if !errors.As(err, &t) {
		return nil
	}
	return t
}
