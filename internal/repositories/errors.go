package repositories

import "errors"

// Store-layer sentinels. Callers branch with errors.Is; the dual-store
// accessor swallows ErrStoreUnavailable when a fallback store remains.
var (
	// ErrNotFound means the record is absent from the consulted store.
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable means the store call failed transiently. It is
	// recovered by falling back to the other store where one exists.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConflict means a uniqueness constraint (email, username) was hit.
	ErrConflict = errors.New("record already exists")
)
