package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"equity-dashboard/models"
	"equity-dashboard/observability"
)

// StatusError is a non-2xx response from an upstream HTTP API
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Body)
}

// checkStatus turns a response code into an error. 404 means the upstream has
// nothing for the request; other 4xx codes except 429 are not worth retrying.
func checkStatus(service string, code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	err := &StatusError{Service: service, StatusCode: code, Body: snippet}
	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", models.ErrDataUnavailable, err)
	case code == http.StatusTooManyRequests, code >= 500:
		return err
	default:
		return Permanent(err)
	}
}

// callExternal runs fn with retry inside the named circuit breaker and records
// the external API metrics for it
func callExternal[T any](ctx context.Context, service, operation string, retry RetryConfig, fn func() (T, error)) (T, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(service, operation)
	timer := metrics.NewTimer()

	var result T
	err := WithRetry(ctx, retry, func() error {
		r, err := WithCircuitBreaker(ctx, service, fn)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	timer.ObserveExternalAPI(service, operation)
	if err != nil {
		metrics.RecordExternalAPIError(service, operation, categorizeAPIError(err))
	}
	return result, err
}

// categorizeAPIError maps an error to the error_type metric label
func categorizeAPIError(err error) string {
	if err == nil {
		return "none"
	}
	var status *StatusError
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		return "no_data"
	case errors.Is(err, ErrServiceUnavailable):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.As(err, &status) && status.StatusCode == http.StatusTooManyRequests:
		return "rate_limit"
	case errors.As(err, &status) && (status.StatusCode == http.StatusUnauthorized || status.StatusCode == http.StatusForbidden):
		return "auth_error"
	case errors.As(err, &status):
		return "http_error"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"):
		return "connection_error"
	case strings.Contains(msg, "decode"), strings.Contains(msg, "parse"):
		return "decode_error"
	default:
		return "unknown"
	}
}
