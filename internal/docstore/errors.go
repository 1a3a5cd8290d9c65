package docstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/imroc/req/v3"
)

var (
	ErrNoBaseURL = errors.New("docstore: api base url missing")
	ErrNoToken   = errors.New("docstore: access token missing")
)

const (
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error
	CodeAccessDenied   = "E_ACCESS_DENIED"   // access denied
	CodeNotFound       = "E_NOT_FOUND"       // node does not exist
	CodeUnknownError   = "E_UNKNOWN_ERR"     // unknown error
)

// APIError is an error payload returned by the document-store API.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// NewAPIError builds an APIError, mainly for tests and fakes.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: status}
}

// IsTransient reports whether err is worth retrying: transport errors,
// timeouts, throttling, and 5xx-class responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == CodeRateLimited || apiErr.Status == http.StatusTooManyRequests {
			return true
		}
		return apiErr.Status >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

// IsNotFound reports whether err means the target node no longer exists.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == CodeNotFound || apiErr.Status == http.StatusNotFound
	}
	return false
}

// handleAPIError folds the request error and the API error body into a
// single wrapped error for the operation.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	// got a response, but api returned an error
	if resp.IsErrorState() {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok {
			apiErr.Status = resp.StatusCode
			return fmt.Errorf("%s: %w", operation, apiErr)
		}

		return fmt.Errorf("%s: %w", operation, &APIError{
			Code:    CodeUnknownError,
			Message: resp.Status,
			Status:  resp.StatusCode,
		})
	}

	return nil
}
