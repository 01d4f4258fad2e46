// Package content defines the local content cache as seen by item
// materialization.
//
// A file is considered downloaded when its cache entry exists and holds at
// least one byte. The cache location for a file is derived from its file ID
// and display name; see ObjectPath.
package content

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Cache probes the on-device presence of file content.
//
// Stat returns the cached size in bytes. Implementations return an error
// wrapping ErrContentNotFound when nothing is cached, and other errors for
// backend failures. Callers never propagate these errors; they only decide
// between "downloaded" and "not downloaded".
type Cache interface {
	Stat(ctx context.Context, fileID, filename string) (int64, error)

	// Healthcheck verifies the backend is reachable.
	Healthcheck(ctx context.Context) error

	io.Closer
}

// Opener is implemented by caches that can stream cached bytes back.
// The type classifier uses it to sniff content when the extension is unknown.
type Opener interface {
	Open(ctx context.Context, fileID, filename string) (io.ReadCloser, error)
}

// WritableCache is a Cache that can be populated. The import command and the
// conformance suite use it to seed content.
type WritableCache interface {
	Cache
	Opener

	// Put stores r as the content of the file, replacing any previous
	// content, and returns the number of bytes written.
	Put(ctx context.Context, fileID, filename string, r io.Reader) (int64, error)

	// Delete removes the cached content. Deleting missing content returns
	// an error wrapping ErrContentNotFound.
	Delete(ctx context.Context, fileID, filename string) error
}

// ObjectPath returns the slash separated cache location "<fileID>/<filename>".
//
// Both components must be non-empty single path segments so that a crafted
// name can never escape the cache root.
func ObjectPath(fileID, filename string) (string, error) {
	if err := validateSegment(fileID); err != nil {
		return "", fmt.Errorf("file ID %q: %w", fileID, err)
	}
	if err := validateSegment(filename); err != nil {
		return "", fmt.Errorf("filename %q: %w", filename, err)
	}
	return fileID + "/" + filename, nil
}

func validateSegment(s string) error {
	switch {
	case s == "", s == ".", s == "..":
		return ErrInvalidID
	case strings.ContainsAny(s, "/\\\x00"):
		return ErrInvalidID
	}
	return nil
}
