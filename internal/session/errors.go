package session

import "errors"

// Errors returned by session operations.
var (
	// ErrUnknownPrefix indicates no policy is registered for a prefix.
	ErrUnknownPrefix = errors.New("unknown tag prefix")

	// ErrInvalidReplace indicates more characters were to be replaced than
	// precede the cursor.
	ErrInvalidReplace = errors.New("replace count exceeds text before cursor")

	// ErrNoSearch indicates the host supplied no search or pick callback.
	ErrNoSearch = errors.New("no search callback configured")

	// ErrClosed indicates the session has been closed.
	ErrClosed = errors.New("session is closed")
)

// errStale aborts a commit whose query is no longer active.
var errStale = errors.New("stale lookup result")
