package item

import (
	"context"
	"errors"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/metrics"
)

// CacheTracker derives download state from the local content cache.
type CacheTracker struct {
	cache   content.Cache
	metrics metrics.MaterializerMetrics
}

// NewCacheTracker creates a tracker probing cache.
func NewCacheTracker(cache content.Cache, m metrics.MaterializerMetrics) *CacheTracker {
	if m == nil {
		m = metrics.NewNoopMaterializerMetrics()
	}
	return &CacheTracker{cache: cache, metrics: m}
}

// Apply sets the download fields of d for rec.
//
// Folders are always present. A file is downloaded only when the cache holds
// at least one byte for it, in which case the cached size replaces the
// remote size. Empty entries and probe failures both mean "not downloaded"
// and keep the remote size; failures are logged, never returned.
func (t *CacheTracker) Apply(ctx context.Context, rec *metadata.Record, d *Descriptor) {
	if rec.Directory {
		d.IsDownloaded = true
		d.IsMostRecentVersionDownloaded = true
		return
	}

	size, err := t.cache.Stat(ctx, rec.FileID, rec.FileNameView)
	switch {
	case err != nil:
		if errors.Is(err, content.ErrContentNotFound) {
			logger.Debug("Content for %s/%s not cached", rec.FileID, rec.FileNameView)
			t.metrics.RecordCacheProbe(metrics.ProbeNotDownloaded)
		} else {
			logger.Warn("Cache probe for %s/%s failed: %v", rec.FileID, rec.FileNameView, err)
			t.metrics.RecordCacheProbe(metrics.ProbeError)
		}
		d.IsDownloaded = false
		d.IsMostRecentVersionDownloaded = false
	case size > 0:
		d.IsDownloaded = true
		d.IsMostRecentVersionDownloaded = true
		d.DocumentSize = size
		t.metrics.RecordCacheProbe(metrics.ProbeDownloaded)
	default:
		d.IsDownloaded = false
		d.IsMostRecentVersionDownloaded = false
		t.metrics.RecordCacheProbe(metrics.ProbeNotDownloaded)
	}
}
