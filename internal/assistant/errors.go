package assistant

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Provider error codes surfaced to the client alongside the message.
const (
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeRateLimited   = "RATE_LIMITED"
	CodeUnknown       = "UNKNOWN_ERROR"
)

// ProviderError is a model-provider failure surfaced verbatim to the end user
// with a distinguishing code. Provider failures are never retried internally.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

// classifyProviderError maps a provider failure to a ProviderError. Quota
// exhaustion and rate limiting get their own codes so the client can explain
// them; anything else passes through as UNKNOWN_ERROR.
func classifyProviderError(err error) *ProviderError {
	message := err.Error()

	var apiErr *openai.APIError
	statusCode := 0
	if errors.As(err, &apiErr) {
		statusCode = apiErr.HTTPStatusCode
	}

	switch {
	case strings.Contains(message, "RESOURCE_EXHAUSTED"),
		strings.Contains(message, "quota"),
		strings.Contains(message, "Quota exceeded"):
		return &ProviderError{
			Code:    CodeQuotaExceeded,
			Message: "API quota exceeded. Please upgrade the plan or try again later.",
		}
	case statusCode == 429,
		strings.Contains(message, "429"),
		strings.Contains(message, "Too Many Requests"):
		return &ProviderError{
			Code:    CodeRateLimited,
			Message: "Too many requests. Please wait a moment and try again.",
		}
	default:
		return &ProviderError{Code: CodeUnknown, Message: message}
	}
}
