package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tieubaoca/vapi-kb/utils"
)

// APIError is a non-2xx answer from an external service.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.StatusCode, e.Body)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func newAPIError(service string, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Body:       utils.Truncate(string(body), 200),
	}
}
