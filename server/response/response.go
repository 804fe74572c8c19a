// Package response provides standardized HTTP response structures and helpers
// for the dashboard API. All API responses follow a consistent format with a
// data field for successful responses and an error field for failures.
package response

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/spektr-org/incomelens/errors"
)

// Response represents the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{
		Data:  data,
		Error: nil,
	}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Data: nil,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes a JSON response with the given status code. The body is
// encoded before any header is sent; a value that cannot be encoded becomes
// a 500 error response.
func JSON(w http.ResponseWriter, status int, resp Response) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(resp); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(Fail(
			"INTERNAL_ERROR",
			"Internal server error",
			"response could not be encoded",
		))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail(
		"METHOD_NOT_ALLOWED",
		"Method not allowed",
		"Method "+method+" is not supported for this endpoint",
	))
}

// Unprocessable writes a 422 error response for a chart that cannot be drawn.
func Unprocessable(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusUnprocessableEntity, Fail("RENDER_ERROR", message, details))
}

// InternalError writes a 500 error response.
func InternalError(w http.ResponseWriter, _ error) {
	// Log the actual error but don't expose details to client
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail(
		"SERVICE_UNAVAILABLE",
		"Service unavailable",
		message,
	))
}

// ErrorFromType maps typed errors to appropriate HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		ve *errors.ValidationError
		re *errors.RenderError
	)
	switch {
	case errors.As(err, &ve):
		BadRequest(w, ve.Error(), ve.Field)
	case errors.As(err, &re):
		Unprocessable(w, re.Error(), re.Chart)
	case errors.Is(err, errors.ErrNotFound):
		NotFound(w, err.Error(), "")
	case errors.Is(err, errors.ErrLoad), errors.Is(err, errors.ErrSchemaMismatch):
		ServiceUnavailable(w, err.Error())
	default:
		InternalError(w, err)
	}
}
