package ors

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx Directions response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ors: %s (status %d): %s", statusDescription(e.StatusCode), e.StatusCode, e.Message)
}

// newAPIError builds an APIError from a response body, pulling the server's
// message out when the body is the documented JSON error envelope.
func newAPIError(statusCode int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := string(body)
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

// statusDescription maps the Directions API's documented status codes to
// short descriptions.
func statusDescription(code int) string {
	switch code {
	case 401:
		return "API key missing from request"
	case 403:
		return "API key not valid"
	case 404:
		return "unable to find requested object"
	case 413:
		return "request too large"
	case 429:
		return "quota or rate limit exceeded"
	case 500:
		return "unknown server error"
	case 501:
		return "server cannot fulfill this request"
	case 503:
		return "server unavailable due to overload or maintenance"
	default:
		return "unexpected API error"
	}
}
