package errors

import (
	"os"
	"strings"
)

// sanitizes error details for production; other environments see the raw text
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}

	if os.Getenv("ENVIRONMENT") != "production" {
		return err.Error()
	}

	return SanitizeString(err.Error())
}

// maps raw error text to a generic category message
func SanitizeString(errMsg string) string {
	lower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(lower, "redis") || strings.Contains(lower, "pubsub"):
		return "notification relay unavailable"
	case strings.Contains(lower, "connection") || strings.Contains(lower, "network") ||
		strings.Contains(lower, "dial"):
		return "connection error occurred"
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return "request timed out"
	case strings.Contains(lower, "permission") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "token"):
		return "permission denied"
	case strings.Contains(lower, "not found"):
		return "resource not found"
	case strings.Contains(lower, "validation") || strings.Contains(lower, "binding") ||
		strings.Contains(lower, "required"):
		return "validation failed"
	}

	return "an error occurred"
}
