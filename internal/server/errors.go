package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alnah/go-folio/internal/logging"
)

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Message   string       `json:"message"`
	Errors    []FieldError `json:"errors,omitempty"`
	Attempted []string     `json:"attempted,omitempty"`
	ResetTime string       `json:"resetTime,omitempty"`
}

// APIError is returned by handlers to produce a specific status and body.
type APIError struct {
	Code int
	Body ErrorResponse
	Err  error // logged, never sent
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Body.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Body.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(code int, message string) *APIError {
	return &APIError{Code: code, Body: ErrorResponse{Message: message}}
}

// statusOf returns the status an error will be rendered with.
func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// newErrorHandler renders errors as ErrorResponse JSON. Server errors are
// logged with the cause; client errors at debug level.
func newErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := statusOf(err)
		body := ErrorResponse{Message: http.StatusText(code)}

		var apiErr *APIError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
			body = apiErr.Body
		case errors.As(err, &he):
			if he.Message != nil {
				body.Message = fmt.Sprint(he.Message)
			}
		default:
			body.Message = "Internal server error"
		}

		req := c.Request()
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", "status", code, "method", req.Method, "path", req.URL.Path,
				"ip", c.RealIP(), "request_id", c.Response().Header().Get(echo.HeaderXRequestID), "error", err)
		} else {
			logger.Debug("request rejected", "status", code, "method", req.Method, "path", req.URL.Path, "error", err)
		}

		if req.Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}
