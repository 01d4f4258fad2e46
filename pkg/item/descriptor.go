package item

import (
	"math"
	"time"
)

// FavoriteRankUnranked marks a folder the user has not ranked.
const FavoriteRankUnranked uint64 = math.MaxUint64

// Descriptor is the host-facing view of a remote file or folder.
//
// A Descriptor is rebuilt on every materialization and owned by the caller
// once returned. Collaborator failures never abort materialization; they
// leave the affected fields at their safe defaults instead.
type Descriptor struct {
	ItemIdentifier       Identifier   `json:"item_identifier" yaml:"item_identifier"`
	ParentItemIdentifier Identifier   `json:"parent_item_identifier" yaml:"parent_item_identifier"`
	Filename             string       `json:"filename" yaml:"filename"`
	TypeIdentifier       string       `json:"type_identifier" yaml:"type_identifier"`
	IsDirectory          bool         `json:"is_directory" yaml:"is_directory"`
	Capabilities         Capabilities `json:"capabilities" yaml:"capabilities"`

	ChildItemCount          *int64    `json:"child_item_count,omitempty" yaml:"child_item_count,omitempty"`
	DocumentSize            int64     `json:"document_size" yaml:"document_size"`
	ContentModificationDate time.Time `json:"content_modification_date" yaml:"content_modification_date"`
	CreationDate            time.Time `json:"creation_date" yaml:"creation_date"`
	IsTrashed               bool      `json:"is_trashed" yaml:"is_trashed"`

	VersionIdentifier             []byte `json:"version_identifier" yaml:"version_identifier"`
	IsDownloaded                  bool   `json:"is_downloaded" yaml:"is_downloaded"`
	IsMostRecentVersionDownloaded bool   `json:"is_most_recent_version_downloaded" yaml:"is_most_recent_version_downloaded"`
	IsDownloading                 bool   `json:"is_downloading" yaml:"is_downloading"`
	DownloadingError              string `json:"downloading_error,omitempty" yaml:"downloading_error,omitempty"`

	IsUploaded     bool   `json:"is_uploaded" yaml:"is_uploaded"`
	IsUploading    bool   `json:"is_uploading" yaml:"is_uploading"`
	UploadingError string `json:"uploading_error,omitempty" yaml:"uploading_error,omitempty"`

	TagData      []byte  `json:"tag_data,omitempty" yaml:"tag_data,omitempty"`
	FavoriteRank *uint64 `json:"favorite_rank,omitempty" yaml:"favorite_rank,omitempty"`
}

// Key returns the pending queue key of the descriptor.
func (d *Descriptor) Key() string {
	return string(d.ItemIdentifier)
}

// VersionString returns the version identifier as text. Version identifiers
// are the etag bytes, so this is the etag itself.
func (d *Descriptor) VersionString() string {
	return string(d.VersionIdentifier)
}
