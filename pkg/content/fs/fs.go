// Package fs implements the content cache on the local filesystem.
//
// Layout: <root>/<fileID>/<filename>. This mirrors the directory layout the
// sync client uses for downloaded files, so an existing client cache
// directory can be probed in place.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marmos91/dittoprovider/pkg/content"
)

// FSContentCache implements content.WritableCache on a local directory.
//
// Thread Safety:
// Probes are plain stat calls and are safe for concurrent use. Concurrent
// Put calls for the same file are last-writer-wins because each write goes
// to a temporary file that is renamed into place.
type FSContentCache struct {
	root string
}

// NewFSContentCache creates a filesystem cache rooted at root.
//
// The root directory is created with permissions 0755 if missing.
//
// Parameters:
//   - ctx: Context for cancellation
//   - root: Cache root directory
//
// Returns:
//   - *FSContentCache: Initialized cache
//   - error: If the root cannot be created or ctx is cancelled
func NewFSContentCache(ctx context.Context, root string) (*FSContentCache, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if root == "" {
		return nil, fmt.Errorf("filesystem content cache: root path is required")
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}

	return &FSContentCache{root: root}, nil
}

// Root returns the cache root directory.
func (c *FSContentCache) Root() string {
	return c.root
}

// path maps a file to its on-disk location.
func (c *FSContentCache) path(fileID, filename string) (string, error) {
	rel, err := content.ObjectPath(fileID, filename)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.root, filepath.FromSlash(rel)), nil
}

// Stat returns the size of the cached file.
//
// A directory at the file location is reported as not found; only regular
// files count as cached content.
func (c *FSContentCache) Stat(ctx context.Context, fileID, filename string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p, err := c.path(fileID, filename)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("content %s/%s: %w", fileID, filename, content.ErrContentNotFound)
		}
		return 0, fmt.Errorf("failed to stat cached content: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("content %s/%s is not a regular file: %w", fileID, filename, content.ErrContentNotFound)
	}

	return info.Size(), nil
}

// Open returns a reader over the cached bytes. The caller closes it.
func (c *FSContentCache) Open(ctx context.Context, fileID, filename string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := c.path(fileID, filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("content %s/%s: %w", fileID, filename, content.ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to open cached content: %w", err)
	}
	return f, nil
}

// Put writes r to the cache location through a temporary file and rename.
func (c *FSContentCache) Put(ctx context.Context, fileID, filename string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p, err := c.path(fileID, filename)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create content directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write content: %w", err)
	}

	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to commit content: %w", err)
	}

	return n, nil
}

// Delete removes the cached file and its per-file directory when empty.
func (c *FSContentCache) Delete(ctx context.Context, fileID, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := c.path(fileID, filename)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("content %s/%s: %w", fileID, filename, content.ErrContentNotFound)
		}
		return fmt.Errorf("failed to delete content: %w", err)
	}

	// Best effort: fails harmlessly when other names remain under the file ID.
	_ = os.Remove(filepath.Dir(p))
	return nil
}

// Healthcheck verifies the root is still an accessible directory.
func (c *FSContentCache) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("cache root unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cache root %s is not a directory", c.root)
	}
	return nil
}

// Close is a no-op; the filesystem cache holds no descriptors.
func (c *FSContentCache) Close() error {
	return nil
}
