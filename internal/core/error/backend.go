package errx

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// WrapBackend maps a completion backend failure into the unified Error
// taxonomy. Classification inspects the genai API error code when present
// and falls back to message sniffing for transports that lose the typed
// error.
func WrapBackend(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(err, KindTimeout)
	}

	code := backendStatusCode(err)
	msg := strings.ToLower(err.Error())

	switch {
	case code == 429 || strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted"):
		return New(err, KindQuotaExceeded)
	case code == 401 || code == 403 || strings.Contains(msg, "api key") || strings.Contains(msg, "unauthenticated") || strings.Contains(msg, "permission denied"):
		return New(err, KindInvalidCredential)
	case code == 400 || strings.Contains(msg, "invalid argument"):
		return New(err, KindBadRequest)
	default:
		return New(err, KindGenericFailure)
	}
}

func backendStatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
