package content

import "errors"

// These errors provide a consistent way to indicate common failure conditions
// across all content cache implementations. Callers probing cache state should
// treat ErrContentNotFound as "not downloaded" and anything else as a backend
// problem worth logging.
//
// Implementations wrap them with context:
//
//	return 0, fmt.Errorf("content %s/%s: %w", fileID, filename, content.ErrContentNotFound)
var (
	// ErrContentNotFound indicates no cached bytes exist for the file.
	ErrContentNotFound = errors.New("content not found")

	// ErrInvalidID indicates a file ID or filename that cannot be mapped to a
	// cache location (empty, contains a path separator, or is a dot segment).
	ErrInvalidID = errors.New("invalid content ID")

	// ErrReadOnly indicates the cache does not accept writes.
	ErrReadOnly = errors.New("content cache is read-only")

	// ErrClosed indicates the cache has been closed.
	ErrClosed = errors.New("content cache is closed")
)
