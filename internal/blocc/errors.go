package blocc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NetworkError reports that the request never produced a response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Error returns the backend's message
// verbatim when the body carried one.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend responded with status %d", e.StatusCode)
}

// DecodeError reports a body that does not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode response: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

type errorResponse struct {
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Message != "" {
		return &HTTPError{StatusCode: status, Message: apiErr.Message}
	}
	if text := strings.TrimSpace(string(payload)); text != "" && !strings.HasPrefix(text, "{") {
		return &HTTPError{StatusCode: status, Message: text}
	}
	return &HTTPError{StatusCode: status}
}
