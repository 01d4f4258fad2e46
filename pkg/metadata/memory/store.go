package memory

import (
	"context"
	"sync"

	"github.com/marmos91/dittoprovider/pkg/metadata"
)

// MemoryMetadataStore implements metadata.WritableStore using in-memory maps.
//
// This implementation is suitable for:
//   - Testing and development environments
//   - Ephemeral runs seeded from an import file
//
// Thread Safety:
// All operations are protected by a single read-write mutex (mu). Lookups take
// the read lock, mutations the write lock.
//
// Storage Model:
// Three maps keyed by metadata.Key(account, id):
//   - records: fileID → Record
//   - directories: directoryID → DirectoryRecord (folder table)
//   - tags: fileID → TagRecord
//
// Values are cloned on the way in and on the way out so callers never share
// memory with the store.
type MemoryMetadataStore struct {
	mu sync.RWMutex

	records     map[string]*metadata.Record
	directories map[string]*metadata.DirectoryRecord
	tags        map[string]*metadata.TagRecord

	closed bool
}

// NewMemoryMetadataStore creates an empty in-memory store ready for use.
func NewMemoryMetadataStore() *MemoryMetadataStore {
	return &MemoryMetadataStore{
		records:     make(map[string]*metadata.Record),
		directories: make(map[string]*metadata.DirectoryRecord),
		tags:        make(map[string]*metadata.TagRecord),
	}
}

func (s *MemoryMetadataStore) checkOpen() error {
	if s.closed {
		return &metadata.StoreError{Code: metadata.ErrClosed, Message: "store is closed"}
	}
	return nil
}

// LookupDirectory returns the folder row for (account, directoryID).
func (s *MemoryMetadataStore) LookupDirectory(ctx context.Context, account, directoryID string) (*metadata.DirectoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateKey(account, directoryID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	key := metadata.Key(account, directoryID)
	dir, ok := s.directories[key]
	if !ok {
		return nil, metadata.NewNotFoundError("directory", key)
	}
	return dir.Clone(), nil
}

// LookupRecordByFileID returns the record for (account, fileID).
func (s *MemoryMetadataStore) LookupRecordByFileID(ctx context.Context, account, fileID string) (*metadata.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateKey(account, fileID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	key := metadata.Key(account, fileID)
	rec, ok := s.records[key]
	if !ok {
		return nil, metadata.NewNotFoundError("record", key)
	}
	return rec.Clone(), nil
}

// LookupTag returns the tag attached to (account, fileID).
func (s *MemoryMetadataStore) LookupTag(ctx context.Context, account, fileID string) (*metadata.TagRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateKey(account, fileID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	key := metadata.Key(account, fileID)
	tag, ok := s.tags[key]
	if !ok {
		return nil, metadata.NewNotFoundError("tag", key)
	}
	return tag.Clone(), nil
}

// PutRecord inserts or replaces a record.
func (s *MemoryMetadataStore) PutRecord(ctx context.Context, rec *metadata.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := metadata.ValidateRecord(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	s.records[metadata.Key(rec.Account, rec.FileID)] = rec.Clone()
	return nil
}

// PutDirectory inserts or replaces a folder row.
func (s *MemoryMetadataStore) PutDirectory(ctx context.Context, dir *metadata.DirectoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := metadata.ValidateDirectory(dir); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	s.directories[metadata.Key(dir.Account, dir.DirectoryID)] = dir.Clone()
	return nil
}

// PutTag inserts or replaces a tag.
func (s *MemoryMetadataStore) PutTag(ctx context.Context, tag *metadata.TagRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := metadata.ValidateTag(tag); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	s.tags[metadata.Key(tag.Account, tag.FileID)] = tag.Clone()
	return nil
}

// DeleteRecord removes a record. Deleting a missing record returns ErrNotFound.
func (s *MemoryMetadataStore) DeleteRecord(ctx context.Context, account, fileID string) error {
	return s.delete(ctx, "record", account, fileID, func(key string) bool {
		_, ok := s.records[key]
		delete(s.records, key)
		return ok
	})
}

// DeleteDirectory removes a folder row.
func (s *MemoryMetadataStore) DeleteDirectory(ctx context.Context, account, directoryID string) error {
	return s.delete(ctx, "directory", account, directoryID, func(key string) bool {
		_, ok := s.directories[key]
		delete(s.directories, key)
		return ok
	})
}

// DeleteTag removes a tag.
func (s *MemoryMetadataStore) DeleteTag(ctx context.Context, account, fileID string) error {
	return s.delete(ctx, "tag", account, fileID, func(key string) bool {
		_, ok := s.tags[key]
		delete(s.tags, key)
		return ok
	})
}

func (s *MemoryMetadataStore) delete(ctx context.Context, what, account, id string, remove func(key string) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := metadata.ValidateKey(account, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}

	key := metadata.Key(account, id)
	if !remove(key) {
		return metadata.NewNotFoundError(what, key)
	}
	return nil
}

// Healthcheck always succeeds for an open store.
func (s *MemoryMetadataStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkOpen()
}

// Close marks the store closed and drops all data.
func (s *MemoryMetadataStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	s.directories = nil
	s.tags = nil
	return nil
}
