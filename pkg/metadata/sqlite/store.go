// Package sqlite provides a metadata.WritableStore backed by an SQLite
// database file, using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/metadata"

	_ "modernc.org/sqlite"
)

// SQLiteMetadataStore implements metadata.WritableStore on SQLite.
//
// Thread Safety:
// database/sql pools connections and SQLite serializes writers. Every pooled
// connection waits up to busy_timeout for the write lock, so the store is
// safe for concurrent use.
type SQLiteMetadataStore struct {
	db *sql.DB
}

// SQLiteMetadataStoreConfig configures the SQLite store.
type SQLiteMetadataStoreConfig struct {
	// Path is the database file. ":memory:" keeps everything in RAM.
	Path string `mapstructure:"path"`

	// MaxOpenConns bounds the connection pool (default: 4, forced to 1 for ":memory:").
	MaxOpenConns int `mapstructure:"max_open_conns"`
}

// NewSQLiteMetadataStore opens the database and creates the schema.
func NewSQLiteMetadataStore(ctx context.Context, config SQLiteMetadataStoreConfig) (*SQLiteMetadataStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.Path == "" {
		return nil, fmt.Errorf("sqlite metadata store: path is required")
	}

	db, err := sql.Open("sqlite", dataSourceName(config.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxConns := config.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 4
	}
	if config.Path == ":memory:" {
		// Every connection to ":memory:" is a distinct database.
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("SQLite metadata store opened: path=%s max_open_conns=%d", config.Path, maxConns)

	return &SQLiteMetadataStore{db: db}, nil
}

func ioError(what, key string, err error) error {
	return &metadata.StoreError{Code: metadata.ErrIOError, Message: fmt.Sprintf("%s: %v", what, err), Key: key}
}

// LookupDirectory returns the folder row for (account, directoryID).
func (s *SQLiteMetadataStore) LookupDirectory(ctx context.Context, account, directoryID string) (*metadata.DirectoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateKey(account, directoryID); err != nil {
		return nil, err
	}

	dir := &metadata.DirectoryRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT account, directory_id, file_id, server_url
		FROM directories WHERE account = ? AND directory_id = ?
	`, account, directoryID).Scan(&dir.Account, &dir.DirectoryID, &dir.FileID, &dir.ServerURL)

	key := metadata.Key(account, directoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, metadata.NewNotFoundError("directory", key)
	}
	if err != nil {
		return nil, ioError("directory lookup", key, err)
	}
	return dir, nil
}

// LookupRecordByFileID returns the record for (account, fileID).
func (s *SQLiteMetadataStore) LookupRecordByFileID(ctx context.Context, account, fileID string) (*metadata.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateKey(account, fileID); err != nil {
		return nil, err
	}

	var (
		rec       metadata.Record
		dateNanos int64
		directory int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT account, file_id, directory_id, server_url, file_name_view, etag, date, size, directory
		FROM records WHERE account = ? AND file_id = ?
	`, account, fileID).Scan(
		&rec.Account, &rec.FileID, &rec.DirectoryID, &rec.ServerURL,
		&rec.FileNameView, &rec.Etag, &dateNanos, &rec.Size, &directory,
	)

	key := metadata.Key(account, fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, metadata.NewNotFoundError("record", key)
	}
	if err != nil {
		return nil, ioError("record lookup", key, err)
	}

	rec.Date = time.Unix(0, dateNanos).UTC()
	rec.Directory = directory != 0
	return &rec, nil
}

// LookupTag returns the tag attached to (account, fileID).
func (s *SQLiteMetadataStore) LookupTag(ctx context.Context, account, fileID string) (*metadata.TagRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateKey(account, fileID); err != nil {
		return nil, err
	}

	tag := &metadata.TagRecord{}
	err := s.db.QueryRowContext(ctx, `
		SELECT account, file_id, tag_data FROM tags WHERE account = ? AND file_id = ?
	`, account, fileID).Scan(&tag.Account, &tag.FileID, &tag.TagData)

	key := metadata.Key(account, fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, metadata.NewNotFoundError("tag", key)
	}
	if err != nil {
		return nil, ioError("tag lookup", key, err)
	}
	return tag, nil
}

// PutRecord inserts or replaces a record.
func (s *SQLiteMetadataStore) PutRecord(ctx context.Context, rec *metadata.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := metadata.ValidateRecord(rec); err != nil {
		return err
	}

	directory := 0
	if rec.Directory {
		directory = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO records
		    (account, file_id, directory_id, server_url, file_name_view, etag, date, size, directory)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Account, rec.FileID, rec.DirectoryID, rec.ServerURL, rec.FileNameView,
		rec.Etag, rec.Date.UnixNano(), rec.Size, directory)
	if err != nil {
		return ioError("record insert", metadata.Key(rec.Account, rec.FileID), err)
	}
	return nil
}

// PutDirectory inserts or replaces a folder row.
func (s *SQLiteMetadataStore) PutDirectory(ctx context.Context, dir *metadata.DirectoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := metadata.ValidateDirectory(dir); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO directories (account, directory_id, file_id, server_url)
		VALUES (?, ?, ?, ?)
	`, dir.Account, dir.DirectoryID, dir.FileID, dir.ServerURL)
	if err != nil {
		return ioError("directory insert", metadata.Key(dir.Account, dir.DirectoryID), err)
	}
	return nil
}

// PutTag inserts or replaces a tag.
func (s *SQLiteMetadataStore) PutTag(ctx context.Context, tag *metadata.TagRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := metadata.ValidateTag(tag); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tags (account, file_id, tag_data) VALUES (?, ?, ?)
	`, tag.Account, tag.FileID, tag.TagData)
	if err != nil {
		return ioError("tag insert", metadata.Key(tag.Account, tag.FileID), err)
	}
	return nil
}

// DeleteRecord removes a record.
func (s *SQLiteMetadataStore) DeleteRecord(ctx context.Context, account, fileID string) error {
	return s.delete(ctx, "record", `DELETE FROM records WHERE account = ? AND file_id = ?`, account, fileID)
}

// DeleteDirectory removes a folder row.
func (s *SQLiteMetadataStore) DeleteDirectory(ctx context.Context, account, directoryID string) error {
	return s.delete(ctx, "directory", `DELETE FROM directories WHERE account = ? AND directory_id = ?`, account, directoryID)
}

// DeleteTag removes a tag.
func (s *SQLiteMetadataStore) DeleteTag(ctx context.Context, account, fileID string) error {
	return s.delete(ctx, "tag", `DELETE FROM tags WHERE account = ? AND file_id = ?`, account, fileID)
}

func (s *SQLiteMetadataStore) delete(ctx context.Context, what, query, account, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := metadata.ValidateKey(account, id); err != nil {
		return err
	}

	key := metadata.Key(account, id)
	res, err := s.db.ExecContext(ctx, query, account, id)
	if err != nil {
		return ioError(what+" delete", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ioError(what+" delete", key, err)
	}
	if n == 0 {
		return metadata.NewNotFoundError(what, key)
	}
	return nil
}

// Healthcheck pings the database.
func (s *SQLiteMetadataStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *SQLiteMetadataStore) Close() error {
	return s.db.Close()
}
