package tools

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upstage-ai/upstage-mcp/internal/docfile"
	"github.com/upstage-ai/upstage-mcp/internal/schema"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var coded *CodedError
	require.ErrorAs(t, err, &coded)
	return coded.Code
}

func TestWrapValidationError_MapsEachFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"not found", &docfile.NotFoundError{Path: "/x"}, ErrCodeNotFound},
		{"not a file", &docfile.NotAFileError{Path: "/x"}, ErrCodeNotAFile},
		{"unsupported", &docfile.UnsupportedFormatError{Extension: ".txt"}, ErrCodeUnsupportedFormat},
		{"too large", &docfile.TooLargeError{Size: 2, MaxSize: 1}, ErrCodeTooLarge},
		{"other", errors.New("weird"), ErrCodeInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, codeOf(t, WrapValidationError(tc.err)))
		})
	}
}

func TestWrapValidationError_KeepsOffendingValues(t *testing.T) {
	err := WrapValidationError(&docfile.TooLargeError{Size: 60 << 20, MaxSize: docfile.MaxFileSize})
	assert.Contains(t, err.Error(), fmt.Sprint(60<<20))
	assert.Contains(t, err.Error(), fmt.Sprint(docfile.MaxFileSize))
}

func TestWrapSchemaError_MapsParseAndShape(t *testing.T) {
	_, parseErr := schema.Parse("{broken")
	assert.Equal(t, ErrCodeMalformedJSON, codeOf(t, WrapSchemaError(parseErr)))

	_, shapeErr := schema.Parse(`{"no_json_schema": true}`)
	assert.Equal(t, ErrCodeInvalidSchemaShape, codeOf(t, WrapSchemaError(shapeErr)))
}

func TestWrapUpstageError_RateLimitAndAPIError(t *testing.T) {
	rateLimited := WrapUpstageError(&upstage.APIError{StatusCode: 429, Message: "slow down"})
	assert.Equal(t, ErrCodeRateLimited, codeOf(t, rateLimited))
	assert.Contains(t, rateLimited.Error(), "slow down")

	notFound := WrapUpstageError(&upstage.APIError{StatusCode: 404, Message: "no such model"})
	assert.Equal(t, ErrCodeAPIError, codeOf(t, notFound))

	server := WrapUpstageError(&upstage.APIError{StatusCode: 500, Message: "boom"})
	assert.Equal(t, ErrCodeAPIError, codeOf(t, server))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestWrapUpstageError_Timeouts(t *testing.T) {
	var netErr net.Error = timeoutErr{}
	assert.Equal(t, ErrCodeTimeout, codeOf(t, WrapUpstageError(netErr)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	wrapped := fmt.Errorf("calling API: %w", ctx.Err())
	assert.Equal(t, ErrCodeTimeout, codeOf(t, WrapUpstageError(wrapped)))
}

func TestWrapUpstageError_NilPassesThrough(t *testing.T) {
	assert.NoError(t, WrapUpstageError(nil))
	assert.NoError(t, WrapValidationError(nil))
	assert.NoError(t, WrapSchemaError(nil))
}

func TestCodedError_FormatAndUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &CodedError{Code: "API_ERROR", Message: "upstream broke", Cause: cause}

	assert.Equal(t, "API_ERROR: upstream broke", err.Error())
	assert.ErrorIs(t, err, cause)
}
