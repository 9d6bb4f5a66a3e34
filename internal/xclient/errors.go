package xclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is a decoded Twitter v1.1 error response. Message holds the
// human-readable text from the error envelope and is what ends up in an
// account's status field.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter api status %d: %s", e.StatusCode, e.Message)
}

// decodeAPIError reads a non-2xx response body. v1.1 errors arrive as
// {"errors":[{"code":88,"message":"Rate limit exceeded"}]}; anything
// else falls back to a status-only message.
func decodeAPIError(resp *http.Response) *APIError {
	out := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return out
	}
	var raw struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err == nil && len(raw.Errors) > 0 && raw.Errors[0].Message != "" {
		out.Code = raw.Errors[0].Code
		out.Message = raw.Errors[0].Message
	}
	return out
}
