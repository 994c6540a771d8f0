package httpclient

import (
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an upstream error body is retained.
const maxErrorBody = 1 << 20 // 1 MB

// UpstreamError carries a non-2xx upstream response: its status code and the
// raw body, so proxy handlers can relay both unchanged and typed callers can
// decode the structured detail payload.
type UpstreamError struct {
	Service string
	Status  int
	Body    []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, string(e.Body))
}

// NewUpstreamError reads and closes the body of a non-2xx response and wraps
// it. The caller should only invoke this when resp.StatusCode is not 2xx.
func NewUpstreamError(resp *http.Response, service string) *UpstreamError {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = nil
	}

	return &UpstreamError{
		Service: service,
		Status:  resp.StatusCode,
		Body:    body,
	}
}

// IsSuccess reports whether the status code is in the 2xx range.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
