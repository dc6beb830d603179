package porssisahko

import "fmt"

// TransportError is a failed request or a non-success response.
type TransportError struct {
	StatusCode int // Zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("porssisahko transport error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("porssisahko transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FormatError is a response body that doesn't match the expected structure.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("porssisahko format error: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
