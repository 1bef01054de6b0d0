package errx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/emyai/server/internal/chat/store"
)

func TestWrapBackendClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"api error 429", genai.APIError{Code: 429, Message: "quota"}, KindQuotaExceeded},
		{"quota message", errors.New("insufficient_quota for project"), KindQuotaExceeded},
		{"rate limit message", errors.New("rate limit reached"), KindQuotaExceeded},
		{"api error 401", genai.APIError{Code: 401, Message: "bad key"}, KindInvalidCredential},
		{"api error 403", genai.APIError{Code: 403, Message: "forbidden"}, KindInvalidCredential},
		{"key message", errors.New("API key not valid"), KindInvalidCredential},
		{"api error 400", genai.APIError{Code: 400, Message: "bad image"}, KindBadRequest},
		{"invalid argument message", errors.New("INVALID ARGUMENT: image"), KindBadRequest},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"cancelled", context.Canceled, KindTimeout},
		{"wrapped deadline", fmt.Errorf("generate: %w", context.DeadlineExceeded), KindTimeout},
		{"anything else", errors.New("socket hang up"), KindGenericFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapBackend(tt.err)
			require.Equal(t, tt.kind, wrapped.Kind)
			require.NotEmpty(t, wrapped.Message)
		})
	}
}

func TestWrapBackendPreservesChain(t *testing.T) {
	wrapped := WrapBackend(fmt.Errorf("generate: %w", context.DeadlineExceeded))
	require.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestGenericMessageEmbedsDetail(t *testing.T) {
	wrapped := WrapBackend(errors.New("socket hang up"))
	require.Contains(t, wrapped.Message, "socket hang up")
}

func TestWrapStore(t *testing.T) {
	require.Nil(t, WrapStore(nil))

	full := WrapStore(fmt.Errorf("set: %w", store.ErrCapacityExceeded))
	require.Equal(t, KindStorageFull, full.Kind)

	other := WrapStore(errors.New("connection refused"))
	require.Equal(t, KindGenericFailure, other.Kind)
}

func TestUserMessageNeverEmpty(t *testing.T) {
	require.Equal(t, FallbackMessage, UserMessage(errors.New("plain")))
	require.Equal(t, QuotaExceededMessage, UserMessage(New(errors.New("x"), KindQuotaExceeded)))
	require.Equal(t, FallbackMessage, UserMessage(nil))
}
