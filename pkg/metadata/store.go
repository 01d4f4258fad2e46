package metadata

import (
	"context"
	"io"
)

// Store is the read side of the metadata repository consumed by item
// materialization.
//
// The store is flat: there is no native parent pointer. Parent linkage is
// resolved with two keyed lookups (LookupDirectory, then
// LookupRecordByFileID on the directory's FileID).
//
// Every lookup returns a StoreError with code ErrNotFound when no row
// matches. Callers that treat a miss as "absent" should test with IsNotFound.
//
// Returned values are copies; callers may modify them freely.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// LookupDirectory returns the folder table row for (account, directoryID).
	LookupDirectory(ctx context.Context, account, directoryID string) (*DirectoryRecord, error)

	// LookupRecordByFileID returns the record for (account, fileID).
	LookupRecordByFileID(ctx context.Context, account, fileID string) (*Record, error)

	// LookupTag returns the tag attached to (account, fileID).
	LookupTag(ctx context.Context, account, fileID string) (*TagRecord, error)

	// Healthcheck verifies the backing storage is reachable.
	Healthcheck(ctx context.Context) error

	io.Closer
}

// WritableStore extends Store with the mutations used to seed and refresh
// the repository. Puts overwrite existing rows with the same key.
type WritableStore interface {
	Store

	PutRecord(ctx context.Context, rec *Record) error
	PutDirectory(ctx context.Context, dir *DirectoryRecord) error
	PutTag(ctx context.Context, tag *TagRecord) error

	DeleteRecord(ctx context.Context, account, fileID string) error
	DeleteDirectory(ctx context.Context, account, directoryID string) error
	DeleteTag(ctx context.Context, account, fileID string) error
}

// Key formats the composite key used in error messages and by key-value backends.
func Key(account, id string) string {
	return account + "/" + id
}

// ValidateKey checks that both halves of a composite key are present.
func ValidateKey(account, id string) error {
	if account == "" {
		return NewInvalidArgumentError("account is required")
	}
	if id == "" {
		return NewInvalidArgumentError("identifier is required")
	}
	return nil
}

// ValidateRecord checks the fields a record must carry to be stored.
func ValidateRecord(rec *Record) error {
	if rec == nil {
		return NewInvalidArgumentError("record is nil")
	}
	return ValidateKey(rec.Account, rec.FileID)
}

// ValidateDirectory checks the fields a folder row must carry to be stored.
func ValidateDirectory(dir *DirectoryRecord) error {
	if dir == nil {
		return NewInvalidArgumentError("directory record is nil")
	}
	if err := ValidateKey(dir.Account, dir.DirectoryID); err != nil {
		return err
	}
	if dir.FileID == "" {
		return NewInvalidArgumentError("directory file_id is required")
	}
	return nil
}

// ValidateTag checks the fields a tag must carry to be stored.
func ValidateTag(tag *TagRecord) error {
	if tag == nil {
		return NewInvalidArgumentError("tag record is nil")
	}
	return ValidateKey(tag.Account, tag.FileID)
}
