package domain

import "errors"

var (
	ErrBusy           = errors.New("task already running")
	ErrEmptyQuery     = errors.New("query is empty")
	ErrUnknownClip    = errors.New("unknown clip")
	ErrUnknownBackend = errors.New("unknown generator backend")
	ErrNotFound       = errors.New("not found")
	ErrSceneNotReady  = errors.New("scene not built")
	ErrShuttingDown   = errors.New("shutting down")
)

// IsUserError reports whether err is a rejected submission rather than an internal failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrEmptyQuery)
}
