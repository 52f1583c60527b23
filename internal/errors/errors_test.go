package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(t *testing.T, fn func(c *gin.Context)) (int, ErrorResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	fn(c)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return w.Code, body
}

func TestResponders(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(c *gin.Context)
		status  int
		code    string
		message string
	}{
		{"unauthorized default", func(c *gin.Context) { Unauthorized(c, "") }, 401, CodeUnauthorized, "authentication required"},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "service token required") }, 403, CodeForbidden, "service token required"},
		{"not found", func(c *gin.Context) { NotFound(c, "channel") }, 404, CodeNotFound, "channel not found"},
		{"bad request", func(c *gin.Context) { BadRequest(c, "", nil) }, 400, CodeBadRequest, "invalid request"},
		{"unknown locale", func(c *gin.Context) { UnknownLocale(c, "xx") }, 400, CodeUnknownLocale, "unsupported locale: xx"},
		{"too many", func(c *gin.Context) { TooManyRequests(c, "") }, 429, CodeTooManyRequests, "too many requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := respond(t, tt.fn)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestInternalError_DetailsSanitizedInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	status, body := respond(t, func(c *gin.Context) {
		InternalError(c, "failed to publish", stderrors.New("dial tcp 10.0.0.1:6379: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, CodeServerError, body.Error)
	assert.Equal(t, "connection error occurred", body.Details)
}

func TestValidationError_RawDetailsOutsideProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	_, body := respond(t, func(c *gin.Context) {
		ValidationError(c, stderrors.New("Key: 'message' failed on the 'required' tag"))
	})

	assert.Equal(t, CodeValidationError, body.Error)
	assert.Contains(t, body.Details, "required")
}

func TestSanitizeString(t *testing.T) {
	tests := map[string]string{
		"redis: nil":                          "notification relay unavailable",
		"dial tcp: connection refused":        "connection error occurred",
		"context deadline exceeded":           "request timed out",
		"token is expired":                    "permission denied",
		"channel not found":                   "resource not found",
		"field message is required":           "validation failed",
		"something odd happened in the pipes": "an error occurred",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeString(in), "input %q", in)
	}
}
