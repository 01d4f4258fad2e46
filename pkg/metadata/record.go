package metadata

import "time"

// Record is the locally persisted description of a remote file or folder.
//
// Records are owned by the metadata store and are read-only for the item
// materialization layer. Folders are modelled as ordinary records with their
// own FileID; the folder table (DirectoryRecord) links a folder's DirectoryID
// back to that FileID.
type Record struct {
	// Account is the tenant/user scope the record belongs to.
	Account string `json:"account" yaml:"account"`

	// FileID identifies the remote entity. Unique per account and stable
	// across renames and moves.
	FileID string `json:"file_id" yaml:"file_id"`

	// DirectoryID identifies the containing folder (its DirectoryRecord).
	DirectoryID string `json:"directory_id" yaml:"directory_id"`

	// ServerURL is the remote folder path the record lives in.
	ServerURL string `json:"server_url" yaml:"server_url"`

	// FileNameView is the display name of the entity.
	FileNameView string `json:"file_name_view" yaml:"file_name_view"`

	// Etag is the opaque content fingerprint reported by the server.
	Etag string `json:"etag" yaml:"etag"`

	// Date is the last modification time reported by the server.
	Date time.Time `json:"date" yaml:"date"`

	// Size is the remote size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// Directory is true for folders.
	Directory bool `json:"directory" yaml:"directory"`
}

// DirectoryRecord is a row of the folder table.
type DirectoryRecord struct {
	Account string `json:"account" yaml:"account"`

	// DirectoryID is the folder's own directory identifier, referenced by the
	// DirectoryID field of its children.
	DirectoryID string `json:"directory_id" yaml:"directory_id"`

	// FileID is the identifier of the Record representing this folder.
	FileID string `json:"file_id" yaml:"file_id"`

	// ServerURL is the remote path of the folder itself.
	ServerURL string `json:"server_url" yaml:"server_url"`
}

// TagRecord carries an opaque tag blob attached to a file by the host.
type TagRecord struct {
	Account string `json:"account" yaml:"account"`
	FileID  string `json:"file_id" yaml:"file_id"`
	TagData []byte `json:"tag_data" yaml:"tag_data"`
}

// Clone returns a copy of the record that shares no memory with r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Clone returns a copy of the directory record.
func (d *DirectoryRecord) Clone() *DirectoryRecord {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// Clone returns a deep copy of the tag record.
func (t *TagRecord) Clone() *TagRecord {
	if t == nil {
		return nil
	}
	c := *t
	if t.TagData != nil {
		c.TagData = append([]byte(nil), t.TagData...)
	}
	return &c
}
