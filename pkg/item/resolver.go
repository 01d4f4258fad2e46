package item

import (
	"context"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/metrics"
)

// Resolver computes parent identifiers from the flat metadata store.
//
// The store has no tree: a child only knows its folder's DirectoryID. The
// folder table maps that DirectoryID to the FileID of the record that
// represents the folder, and that record's FileID is the parent identifier.
// Both hops may miss; a miss attaches the item at the root.
type Resolver struct {
	store         metadata.Store
	homeServerURL string
	metrics       metrics.MaterializerMetrics
}

// NewResolver creates a resolver. Records living directly in homeServerURL
// are children of the root container.
func NewResolver(store metadata.Store, homeServerURL string, m metrics.MaterializerMetrics) *Resolver {
	if m == nil {
		m = metrics.NewNoopMaterializerMetrics()
	}
	return &Resolver{
		store:         store,
		homeServerURL: homeServerURL,
		metrics:       m,
	}
}

// ResolveParent returns the parent identifier for an item in directoryID
// under serverURL. It never fails; every miss yields RootContainer.
func (r *Resolver) ResolveParent(ctx context.Context, account, directoryID, serverURL string) Identifier {
	if sameServerURL(serverURL, r.homeServerURL) {
		r.metrics.RecordParentResolution(metrics.ParentRoot)
		return RootContainer
	}

	dir, err := r.store.LookupDirectory(ctx, account, directoryID)
	if err != nil {
		r.logMiss("folder row", account, directoryID, err)
		r.metrics.RecordParentResolution(metrics.ParentFallback)
		return RootContainer
	}

	parent, err := r.store.LookupRecordByFileID(ctx, account, dir.FileID)
	if err != nil {
		r.logMiss("folder record", account, dir.FileID, err)
		r.metrics.RecordParentResolution(metrics.ParentFallback)
		return RootContainer
	}

	r.metrics.RecordParentResolution(metrics.ParentResolved)
	return Identifier(parent.FileID)
}

func (r *Resolver) logMiss(what, account, id string, err error) {
	if metadata.IsNotFound(err) {
		logger.Debug("Parent %s %s/%s not found, attaching at root", what, account, id)
		return
	}
	logger.Warn("Parent %s lookup %s/%s failed, attaching at root: %v", what, account, id, err)
}
