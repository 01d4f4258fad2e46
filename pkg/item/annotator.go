package item

import (
	"context"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/metadata"
)

// UploadTracker reports whether a file has an upload waiting in the
// client's upload queue.
type UploadTracker interface {
	HasPendingUpload(ctx context.Context, account, fileID string) (bool, error)
}

// FavoriteRanker reports the user-assigned favorite rank of a folder.
// The boolean result is false when the folder is not ranked.
type FavoriteRanker interface {
	FavoriteRank(ctx context.Context, account, fileID string) (uint64, bool, error)
}

// Annotator attaches version, tag, upload and favorite information.
type Annotator struct {
	store     metadata.Store
	uploads   UploadTracker
	favorites FavoriteRanker
}

// NewAnnotator creates an annotator. uploads and favorites are optional.
func NewAnnotator(store metadata.Store, uploads UploadTracker, favorites FavoriteRanker) *Annotator {
	return &Annotator{store: store, uploads: uploads, favorites: favorites}
}

// Apply fills the annotation fields of d.
func (a *Annotator) Apply(ctx context.Context, rec *metadata.Record, d *Descriptor) {
	d.VersionIdentifier = []byte(rec.Etag)

	a.applyUpload(ctx, rec, d)

	if rec.Directory {
		a.applyFavorite(ctx, rec, d)
	}

	tag, err := a.store.LookupTag(ctx, rec.Account, rec.FileID)
	switch {
	case err == nil:
		d.TagData = tag.TagData
	case metadata.IsNotFound(err):
	default:
		logger.Warn("Tag lookup for %s/%s failed: %v", rec.Account, rec.FileID, err)
	}
}

// applyUpload reports folders and untracked files as uploaded.
func (a *Annotator) applyUpload(ctx context.Context, rec *metadata.Record, d *Descriptor) {
	d.IsUploaded = true
	d.IsUploading = false

	if rec.Directory || a.uploads == nil {
		return
	}

	pending, err := a.uploads.HasPendingUpload(ctx, rec.Account, rec.FileID)
	if err != nil {
		logger.Warn("Upload state for %s/%s unavailable: %v", rec.Account, rec.FileID, err)
		return
	}
	if pending {
		d.IsUploaded = false
		d.IsUploading = true
	}
}

func (a *Annotator) applyFavorite(ctx context.Context, rec *metadata.Record, d *Descriptor) {
	if a.favorites == nil {
		return
	}

	rank, ok, err := a.favorites.FavoriteRank(ctx, rec.Account, rec.FileID)
	if err != nil {
		logger.Warn("Favorite rank for %s/%s unavailable: %v", rec.Account, rec.FileID, err)
		return
	}
	if !ok {
		rank = FavoriteRankUnranked
	}
	d.FavoriteRank = &rank
}
