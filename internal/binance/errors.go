package binance

import "fmt"

// APIError is a structured rejection from the venue: the request reached
// Binance and was refused. Never retried here; retry policy belongs to the
// caller.
type APIError struct {
	StatusCode int
	Code       int64
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance api error: status=%d code=%d message=%s", e.StatusCode, e.Code, e.Message)
}

// TransportError is a network-level failure (timeout, DNS, connection reset)
// before any venue response could be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("binance transport error: op=%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
