// Package cache provides caching layers for metadata lookups.
//
// Materialization issues up to four keyed lookups per item (folder row,
// folder record, tag, and the record itself for by-ID requests). Hosts
// enumerate the same folders repeatedly, so the parent lookups are highly
// repetitive and benefit from a short-lived cache.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/metrics"
)

// CachedMetadataStore wraps a WritableStore with an LRU+TTL cache for lookups.
//
// This decorator allows any store implementation to benefit from caching
// without modifying the store itself.
//
// Cache Strategy:
//   - Only successful lookups are cached; misses always reach the store
//   - LRU eviction when the cache is full
//   - TTL-based expiration
//   - Writes and deletes through the decorator invalidate the affected key
//   - A lookup that raced with a write does not refill the cache
//
// Thread Safety:
// All cache operations are protected by a mutex; hit/miss counters are atomic.
type CachedMetadataStore struct {
	store metadata.WritableStore

	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]*list.Element
	lruList *list.List

	// generation is bumped by every invalidation. A store read only fills
	// the cache when no invalidation happened since it started.
	generation uint64

	hits    atomic.Uint64
	misses  atomic.Uint64
	metrics metrics.LookupCacheMetrics

	now func() time.Time
}

// cacheEntry is one cached lookup result. value holds a *metadata.Record,
// *metadata.DirectoryRecord or *metadata.TagRecord.
type cacheEntry struct {
	key       string
	value     any
	timestamp time.Time
}

// CacheConfig holds configuration for the lookup cache.
type CacheConfig struct {
	// TTL is how long cached entries remain valid (default: 5s)
	TTL time.Duration `mapstructure:"ttl"`

	// MaxEntries limits the cache size (default: 10000)
	MaxEntries int `mapstructure:"max_entries"`
}

// DefaultCacheConfig returns production-ready cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Second,
		MaxEntries: 10000,
	}
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// NewCachedMetadataStore wraps a metadata store with caching.
//
// Parameters:
//   - store: The underlying metadata store to wrap
//   - config: Cache configuration (zero fields take defaults)
//   - m: Optional metrics; nil records nothing
func NewCachedMetadataStore(store metadata.WritableStore, config CacheConfig, m metrics.LookupCacheMetrics) *CachedMetadataStore {
	defaults := DefaultCacheConfig()
	if config.TTL <= 0 {
		config.TTL = defaults.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = defaults.MaxEntries
	}
	if m == nil {
		m = metrics.NewNoopLookupCacheMetrics()
	}

	logger.Info("Metadata lookup cache enabled: ttl=%v max_entries=%d", config.TTL, config.MaxEntries)

	return &CachedMetadataStore{
		store:      store,
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
		entries:    make(map[string]*list.Element),
		lruList:    list.New(),
		metrics:    m,
		now:        time.Now,
	}
}

func recordKey(account, fileID string) string {
	return "r\x00" + account + "\x00" + fileID
}

func directoryKey(account, directoryID string) string {
	return "d\x00" + account + "\x00" + directoryID
}

func tagKey(account, fileID string) string {
	return "t\x00" + account + "\x00" + fileID
}

// lookup returns a cached value if present and fresh.
func (c *CachedMetadataStore) lookup(kind, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		c.metrics.RecordMiss(kind)
		return nil, false
	}

	entry := el.Value.(*cacheEntry)
	if c.now().Sub(entry.timestamp) > c.ttl {
		c.lruList.Remove(el)
		delete(c.entries, key)
		c.misses.Add(1)
		c.metrics.RecordMiss(kind)
		return nil, false
	}

	c.lruList.MoveToFront(el)
	c.hits.Add(1)
	c.metrics.RecordHit(kind)
	return entry.value, true
}

// currentGeneration returns the invalidation generation to pass to put.
func (c *CachedMetadataStore) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generation
}

// put inserts or refreshes a value read at generation gen, evicting the
// least recently used entry when full. The value is dropped when a write
// invalidated any key since gen.
func (c *CachedMetadataStore) put(key string, value any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return
	}

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.value = value
		entry.timestamp = c.now()
		c.lruList.MoveToFront(el)
		return
	}

	el := c.lruList.PushFront(&cacheEntry{key: key, value: value, timestamp: c.now()})
	c.entries[key] = el

	for c.lruList.Len() > c.maxEntries {
		oldest := c.lruList.Back()
		if oldest == nil {
			break
		}
		c.lruList.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		c.metrics.RecordEviction()
	}
}

func (c *CachedMetadataStore) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++

	if el, ok := c.entries[key]; ok {
		c.lruList.Remove(el)
		delete(c.entries, key)
	}
}

// Purge drops every cached entry.
func (c *CachedMetadataStore) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.lruList.Init()
}

// Stats returns hit/miss counters and the current entry count.
func (c *CachedMetadataStore) Stats() Stats {
	c.mu.Lock()
	n := c.lruList.Len()
	c.mu.Unlock()

	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}
}

// LookupDirectory serves the folder row from cache when fresh.
func (c *CachedMetadataStore) LookupDirectory(ctx context.Context, account, directoryID string) (*metadata.DirectoryRecord, error) {
	key := directoryKey(account, directoryID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v, ok := c.lookup(metrics.LookupDirectory, key); ok {
		return v.(*metadata.DirectoryRecord).Clone(), nil
	}

	gen := c.currentGeneration()
	dir, err := c.store.LookupDirectory(ctx, account, directoryID)
	if err != nil {
		return nil, err
	}
	c.put(key, dir.Clone(), gen)
	return dir, nil
}

// LookupRecordByFileID serves the record from cache when fresh.
func (c *CachedMetadataStore) LookupRecordByFileID(ctx context.Context, account, fileID string) (*metadata.Record, error) {
	key := recordKey(account, fileID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v, ok := c.lookup(metrics.LookupRecord, key); ok {
		return v.(*metadata.Record).Clone(), nil
	}

	gen := c.currentGeneration()
	rec, err := c.store.LookupRecordByFileID(ctx, account, fileID)
	if err != nil {
		return nil, err
	}
	c.put(key, rec.Clone(), gen)
	return rec, nil
}

// LookupTag serves the tag from cache when fresh.
func (c *CachedMetadataStore) LookupTag(ctx context.Context, account, fileID string) (*metadata.TagRecord, error) {
	key := tagKey(account, fileID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v, ok := c.lookup(metrics.LookupTag, key); ok {
		return v.(*metadata.TagRecord).Clone(), nil
	}

	gen := c.currentGeneration()
	tag, err := c.store.LookupTag(ctx, account, fileID)
	if err != nil {
		return nil, err
	}
	c.put(key, tag.Clone(), gen)
	return tag, nil
}

func (c *CachedMetadataStore) PutRecord(ctx context.Context, rec *metadata.Record) error {
	if rec != nil {
		defer c.invalidate(recordKey(rec.Account, rec.FileID))
	}
	return c.store.PutRecord(ctx, rec)
}

func (c *CachedMetadataStore) PutDirectory(ctx context.Context, dir *metadata.DirectoryRecord) error {
	if dir != nil {
		defer c.invalidate(directoryKey(dir.Account, dir.DirectoryID))
	}
	return c.store.PutDirectory(ctx, dir)
}

func (c *CachedMetadataStore) PutTag(ctx context.Context, tag *metadata.TagRecord) error {
	if tag != nil {
		defer c.invalidate(tagKey(tag.Account, tag.FileID))
	}
	return c.store.PutTag(ctx, tag)
}

func (c *CachedMetadataStore) DeleteRecord(ctx context.Context, account, fileID string) error {
	defer c.invalidate(recordKey(account, fileID))
	return c.store.DeleteRecord(ctx, account, fileID)
}

func (c *CachedMetadataStore) DeleteDirectory(ctx context.Context, account, directoryID string) error {
	defer c.invalidate(directoryKey(account, directoryID))
	return c.store.DeleteDirectory(ctx, account, directoryID)
}

func (c *CachedMetadataStore) DeleteTag(ctx context.Context, account, fileID string) error {
	defer c.invalidate(tagKey(account, fileID))
	return c.store.DeleteTag(ctx, account, fileID)
}

func (c *CachedMetadataStore) Healthcheck(ctx context.Context) error {
	return c.store.Healthcheck(ctx)
}

// Close purges the cache and closes the underlying store.
func (c *CachedMetadataStore) Close() error {
	c.Purge()
	return c.store.Close()
}
