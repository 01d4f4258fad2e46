package badger

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/metadata"
)

// BadgerMetadataStore implements metadata.WritableStore using BadgerDB for persistence.
//
// This implementation is suitable for:
//   - Long-running provider processes that must survive restarts
//   - Large accounts where keeping every record in memory is wasteful
//
// Thread Safety:
// BadgerDB transactions provide isolation; the store itself holds no mutable
// state besides the database handle, so it is safe for concurrent use.
//
// Storage Model:
// See keys.go for the key schema and serialization.go for value encoding.
type BadgerMetadataStore struct {
	db *badger.DB
}

// BadgerMetadataStoreConfig contains configuration for creating a BadgerDB metadata store.
type BadgerMetadataStoreConfig struct {
	// DBPath is the directory where BadgerDB will store its files
	DBPath string `mapstructure:"db_path"`

	// InMemory runs badger without touching disk (tests)
	InMemory bool `mapstructure:"in_memory"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64)
	BlockCacheSizeMB int64 `mapstructure:"block_cache_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32)
	IndexCacheSizeMB int64 `mapstructure:"index_cache_mb"`

	// BadgerOptions allows full customization of BadgerDB behavior.
	// If nil, options are derived from the fields above.
	BadgerOptions *badger.Options `mapstructure:"-"`
}

// NewBadgerMetadataStore opens (or creates) a BadgerDB metadata store.
//
// Parameters:
//   - ctx: Context for cancellation
//   - config: Database location and cache sizing
//
// Returns:
//   - *BadgerMetadataStore: A store ready for concurrent use
//   - error: If the context is cancelled or the database cannot be opened
func NewBadgerMetadataStore(ctx context.Context, config BadgerMetadataStoreConfig) (*BadgerMetadataStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if config.BadgerOptions != nil {
		opts = *config.BadgerOptions
	} else {
		if config.DBPath == "" && !config.InMemory {
			return nil, fmt.Errorf("badger metadata store: db_path is required")
		}

		if config.InMemory {
			opts = badger.DefaultOptions("").WithInMemory(true)
		} else {
			opts = badger.DefaultOptions(config.DBPath)
		}

		// Metadata rows are small: compression isn't worth the CPU.
		opts = opts.WithLoggingLevel(badger.WARNING)
		opts = opts.WithCompression(options.None)

		blockCacheMB := config.BlockCacheSizeMB
		if blockCacheMB == 0 {
			blockCacheMB = 64
		}
		indexCacheMB := config.IndexCacheSizeMB
		if indexCacheMB == 0 {
			indexCacheMB = 32
		}
		opts = opts.WithBlockCacheSize(blockCacheMB << 20)
		opts = opts.WithIndexCacheSize(indexCacheMB << 20)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	logger.Debug("Badger metadata store opened: path=%s in_memory=%v", config.DBPath, config.InMemory)

	return &BadgerMetadataStore{db: db}, nil
}

// get reads and decodes a single value, mapping a missing key to ErrNotFound.
func get[T any](ctx context.Context, db *badger.DB, key []byte, what, display string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out *T
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v, err := decode[T](val)
			if err != nil {
				return err
			}
			out = v
			return nil
		})
	})

	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, metadata.NewNotFoundError(what, display)
	case errors.Is(err, badger.ErrDBClosed):
		return nil, &metadata.StoreError{Code: metadata.ErrClosed, Message: "store is closed", Key: display}
	default:
		return nil, fmt.Errorf("%s lookup: %w", what, &metadata.StoreError{Code: metadata.ErrIOError, Message: err.Error(), Key: display})
	}
}

func (s *BadgerMetadataStore) set(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return metadata.NewIOError(fmt.Sprintf("failed to write key: %v", err), "")
	}
	return nil
}

func (s *BadgerMetadataStore) remove(ctx context.Context, key []byte, what, display string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return metadata.NewNotFoundError(what, display)
	default:
		return metadata.NewIOError(fmt.Sprintf("failed to delete %s: %v", what, err), display)
	}
}

// LookupDirectory returns the folder row for (account, directoryID).
func (s *BadgerMetadataStore) LookupDirectory(ctx context.Context, account, directoryID string) (*metadata.DirectoryRecord, error) {
	if err := metadata.ValidateKey(account, directoryID); err != nil {
		return nil, err
	}
	return get[metadata.DirectoryRecord](ctx, s.db, keyDirectory(account, directoryID), "directory", metadata.Key(account, directoryID))
}

// LookupRecordByFileID returns the record for (account, fileID).
func (s *BadgerMetadataStore) LookupRecordByFileID(ctx context.Context, account, fileID string) (*metadata.Record, error) {
	if err := metadata.ValidateKey(account, fileID); err != nil {
		return nil, err
	}
	return get[metadata.Record](ctx, s.db, keyRecord(account, fileID), "record", metadata.Key(account, fileID))
}

// LookupTag returns the tag attached to (account, fileID).
func (s *BadgerMetadataStore) LookupTag(ctx context.Context, account, fileID string) (*metadata.TagRecord, error) {
	if err := metadata.ValidateKey(account, fileID); err != nil {
		return nil, err
	}
	return get[metadata.TagRecord](ctx, s.db, keyTag(account, fileID), "tag", metadata.Key(account, fileID))
}

// PutRecord inserts or replaces a record.
func (s *BadgerMetadataStore) PutRecord(ctx context.Context, rec *metadata.Record) error {
	if err := metadata.ValidateRecord(rec); err != nil {
		return err
	}
	data, err := encode(rec)
	if err != nil {
		return err
	}
	return s.set(ctx, keyRecord(rec.Account, rec.FileID), data)
}

// PutDirectory inserts or replaces a folder row.
func (s *BadgerMetadataStore) PutDirectory(ctx context.Context, dir *metadata.DirectoryRecord) error {
	if err := metadata.ValidateDirectory(dir); err != nil {
		return err
	}
	data, err := encode(dir)
	if err != nil {
		return err
	}
	return s.set(ctx, keyDirectory(dir.Account, dir.DirectoryID), data)
}

// PutTag inserts or replaces a tag.
func (s *BadgerMetadataStore) PutTag(ctx context.Context, tag *metadata.TagRecord) error {
	if err := metadata.ValidateTag(tag); err != nil {
		return err
	}
	data, err := encode(tag)
	if err != nil {
		return err
	}
	return s.set(ctx, keyTag(tag.Account, tag.FileID), data)
}

// DeleteRecord removes a record.
func (s *BadgerMetadataStore) DeleteRecord(ctx context.Context, account, fileID string) error {
	if err := metadata.ValidateKey(account, fileID); err != nil {
		return err
	}
	return s.remove(ctx, keyRecord(account, fileID), "record", metadata.Key(account, fileID))
}

// DeleteDirectory removes a folder row.
func (s *BadgerMetadataStore) DeleteDirectory(ctx context.Context, account, directoryID string) error {
	if err := metadata.ValidateKey(account, directoryID); err != nil {
		return err
	}
	return s.remove(ctx, keyDirectory(account, directoryID), "directory", metadata.Key(account, directoryID))
}

// DeleteTag removes a tag.
func (s *BadgerMetadataStore) DeleteTag(ctx context.Context, account, fileID string) error {
	if err := metadata.ValidateKey(account, fileID); err != nil {
		return err
	}
	return s.remove(ctx, keyTag(account, fileID), "tag", metadata.Key(account, fileID))
}

// Healthcheck runs an empty read transaction.
func (s *BadgerMetadataStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return &metadata.StoreError{Code: metadata.ErrClosed, Message: "store is closed"}
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// Close flushes and closes the database.
func (s *BadgerMetadataStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}
