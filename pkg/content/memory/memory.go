// Package memory implements an in-memory content cache for tests and
// ephemeral runs.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/marmos91/dittoprovider/pkg/content"
)

// MemoryContentCache implements content.WritableCache with a map of byte slices.
//
// Thread Safety:
// All operations are protected by a read-write mutex.
type MemoryContentCache struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryContentCache creates an empty in-memory cache.
func NewMemoryContentCache() *MemoryContentCache {
	return &MemoryContentCache{
		data: make(map[string][]byte),
	}
}

func (c *MemoryContentCache) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.closed {
		return content.ErrClosed
	}
	return nil
}

func (c *MemoryContentCache) Stat(ctx context.Context, fileID, filename string) (int64, error) {
	key, err := content.ObjectPath(fileID, filename)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.check(ctx); err != nil {
		return 0, err
	}

	data, ok := c.data[key]
	if !ok {
		return 0, fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
	}
	return int64(len(data)), nil
}

// Open returns a reader over a snapshot of the cached bytes.
func (c *MemoryContentCache) Open(ctx context.Context, fileID, filename string) (io.ReadCloser, error) {
	key, err := content.ObjectPath(fileID, filename)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.check(ctx); err != nil {
		return nil, err
	}

	data, ok := c.data[key]
	if !ok {
		return nil, fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (c *MemoryContentCache) Put(ctx context.Context, fileID, filename string, r io.Reader) (int64, error) {
	key, err := content.ObjectPath(fileID, filename)
	if err != nil {
		return 0, err
	}

	// Read outside the lock; r may be slow.
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read content: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(ctx); err != nil {
		return 0, err
	}

	c.data[key] = data
	return int64(len(data)), nil
}

func (c *MemoryContentCache) Delete(ctx context.Context, fileID, filename string) error {
	key, err := content.ObjectPath(fileID, filename)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(ctx); err != nil {
		return err
	}

	if _, ok := c.data[key]; !ok {
		return fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
	}
	delete(c.data, key)
	return nil
}

func (c *MemoryContentCache) Healthcheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.check(ctx)
}

// Close drops all content. Further calls return content.ErrClosed.
func (c *MemoryContentCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.data = nil
	return nil
}
