package errx

import (
	"errors"

	"github.com/emyai/server/internal/chat/store"
)

// WrapStore maps a persistence failure to the unified Error type. Capacity
// rejections get their own kind so the memory manager can truncate and
// retry; everything else is generic.
func WrapStore(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrCapacityExceeded) {
		return New(err, KindStorageFull)
	}

	return New(err, KindGenericFailure)
}
