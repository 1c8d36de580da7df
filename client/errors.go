// client/errors.go
package client

import "fmt"

// The SDK's failure taxonomy. Validation failures never reach the
// network; backend failures carry the server message verbatim; network
// failures wrap the transport error behind a generic user message.
// Draft autosave failures are a fourth category that is only logged.

// ValidationError reports a precondition failure caught before any API
// call was attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// BackendError carries a {success:false} response message, shown to the
// user verbatim.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return "request failed"
	}
	return e.Message
}

// NetworkError wraps a transport-level failure (connection refused,
// non-2xx status, unparseable body).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error, please try again", e.Op)
}

func (e *NetworkError) Unwrap() error { return e.Err }
