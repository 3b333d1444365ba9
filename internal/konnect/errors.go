package konnect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxErrorDetailLength bounds string error payloads echoed back to callers.
const maxErrorDetailLength = 200

// Error categories, also used as metric labels.
const (
	CategoryUpstream = "upstream"
	CategoryNetwork  = "network"
	CategoryRequest  = "request"
)

// APIError means the backend answered with a non-success status.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Detail)
}

// NetworkError means the request was sent but no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: no response received from Konnect API: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError means the request failed before it was sent.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// errorDetail renders a response body for an APIError. Structured payloads
// are compacted, string payloads are truncated.
func errorDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		if s, ok := v.(string); ok {
			return truncate(s, maxErrorDetailLength)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err == nil {
			return buf.String()
		}
	}
	return truncate(string(body), maxErrorDetailLength)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
