package tools

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/upstage-ai/upstage-mcp/internal/docfile"
	"github.com/upstage-ai/upstage-mcp/internal/schema"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeNotAFile              = "NOT_A_FILE"
	ErrCodeUnsupportedFormat     = "UNSUPPORTED_FORMAT"
	ErrCodeTooLarge              = "TOO_LARGE"
	ErrCodeMalformedJSON         = "MALFORMED_JSON"
	ErrCodeInvalidSchemaShape    = "INVALID_SCHEMA_SHAPE"
	ErrCodeNoSchemaAvailable     = "NO_SCHEMA_AVAILABLE"
	ErrCodeInvalidSchemaResponse = "INVALID_SCHEMA_RESPONSE"
	ErrCodeAPIError              = "API_ERROR"
	ErrCodeRateLimited           = "RATE_LIMITED"
	ErrCodeTimeout               = "TIMEOUT"
	ErrCodeInvalidAPIResponse    = "INVALID_API_RESPONSE"
	ErrCodeInvalidInput          = "INVALID_INPUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapValidationError converts a file validation error to a coded error.
// The message keeps the offending values (path, extension, sizes) so the
// caller can see what was rejected without consulting logs.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}

	code := ErrCodeInvalidInput

	var (
		notFound    *docfile.NotFoundError
		notAFile    *docfile.NotAFileError
		unsupported *docfile.UnsupportedFormatError
		tooLarge    *docfile.TooLargeError
	)
	switch {
	case errors.As(err, &notFound):
		code = ErrCodeNotFound
	case errors.As(err, &notAFile):
		code = ErrCodeNotAFile
	case errors.As(err, &unsupported):
		code = ErrCodeUnsupportedFormat
	case errors.As(err, &tooLarge):
		code = ErrCodeTooLarge
	}

	return &CodedError{Code: code, Message: err.Error(), Cause: err}
}

// WrapSchemaError converts a schema parsing or shape error to a coded error.
func WrapSchemaError(err error) error {
	if err == nil {
		return nil
	}

	code := ErrCodeInvalidInput

	var (
		malformed *schema.MalformedJSONError
		shape     *schema.ShapeError
	)
	switch {
	case errors.As(err, &malformed):
		code = ErrCodeMalformedJSON
	case errors.As(err, &shape):
		code = ErrCodeInvalidSchemaShape
	}

	return &CodedError{Code: code, Message: err.Error(), Cause: err}
}

// WrapUpstageError converts an upstage.APIError or other transport error to a
// coded error.
func WrapUpstageError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError

	var apiErr *upstage.APIError
	if errors.As(err, &apiErr) {
		code := ErrCodeAPIError
		if apiErr.StatusCode == 429 {
			code = ErrCodeRateLimited
		}
		coded = &CodedError{Code: code, Message: apiErr.Message, Cause: err}
	} else {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
		} else if strings.Contains(err.Error(), "context deadline exceeded") {
			coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
		} else {
			coded = &CodedError{Code: ErrCodeAPIError, Message: err.Error(), Cause: err}
		}
	}

	slog.Warn("upstage API error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrNoSchemaAvailable creates the error returned when extraction has no
// schema to work with and auto-generation is disabled.
func ErrNoSchemaAvailable() error {
	return &CodedError{
		Code:    ErrCodeNoSchemaAvailable,
		Message: "no extraction schema available: provide schema_json or schema_path, or enable auto_generate_schema",
	}
}

// ErrInvalidSchemaResponse creates the error returned when schema generation
// produced a response without a usable json_schema payload.
func ErrInvalidSchemaResponse(detail string) error {
	return &CodedError{
		Code:    ErrCodeInvalidSchemaResponse,
		Message: fmt.Sprintf("schema generation returned an unusable result: %s", detail),
	}
}

// ErrInvalidAPIResponse creates the error returned when the API answered
// successfully but the payload does not have the expected structure.
func ErrInvalidAPIResponse(detail string) error {
	return &CodedError{
		Code:    ErrCodeInvalidAPIResponse,
		Message: fmt.Sprintf("unexpected API response: %s", detail),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{Code: ErrCodeInvalidInput, Message: message}
}
