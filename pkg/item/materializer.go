// Package item builds host-facing item descriptors from local metadata.
//
// Materialization combines four sources: the metadata store (identity,
// parent, tags), the content cache (download state), a type classifier and
// optional upload/favorite collaborators. It never fails: each collaborator
// miss degrades one field to a safe default so that an enumerating host
// always receives a usable descriptor.
//
// After a descriptor is built, any queued pending update for the same item
// is dropped, since the fresh descriptor supersedes it.
package item

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/metrics"
	"github.com/marmos91/dittoprovider/pkg/pending"
	"github.com/marmos91/dittoprovider/pkg/typeid"
)

// Options configures a Materializer.
type Options struct {
	// HomeServerURL is the remote path of the account's top-level folder.
	// Records living there are children of RootContainer.
	HomeServerURL string

	// LegacyIdentifiers is set for hosts that predate hierarchical
	// identifiers; both identifiers are then left empty and the pending
	// queue is never deduplicated.
	LegacyIdentifiers bool

	// Store is the metadata store. Required.
	Store metadata.Store

	// Cache is the local content cache. Required.
	Cache content.Cache

	// Classifier derives type identifiers. Defaults to typeid.NewTable().
	Classifier typeid.Classifier

	// Queue holds pending updates. Defaults to a new empty queue.
	Queue *pending.Queue[*Descriptor]

	// Metrics is optional; nil records nothing.
	Metrics metrics.MaterializerMetrics

	// Uploads is optional; nil reports every file as uploaded.
	Uploads UploadTracker

	// Favorites is optional; nil leaves FavoriteRank unset.
	Favorites FavoriteRanker
}

// Materializer builds descriptors. It is safe for concurrent use; the only
// mutable state it touches is the injected queue, which has its own lock.
type Materializer struct {
	legacy     bool
	store      metadata.Store
	resolver   *Resolver
	tracker    *CacheTracker
	annotator  *Annotator
	classifier typeid.Classifier
	queue      *pending.Queue[*Descriptor]
	metrics    metrics.MaterializerMetrics
}

// NewMaterializer validates opts and wires the components.
func NewMaterializer(opts Options) (*Materializer, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("metadata store is required")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("content cache is required")
	}
	if opts.Classifier == nil {
		opts.Classifier = typeid.NewTable()
	}
	if opts.Queue == nil {
		opts.Queue = pending.New[*Descriptor]()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoopMaterializerMetrics()
	}

	return &Materializer{
		legacy:     opts.LegacyIdentifiers,
		store:      opts.Store,
		resolver:   NewResolver(opts.Store, opts.HomeServerURL, opts.Metrics),
		tracker:    NewCacheTracker(opts.Cache, opts.Metrics),
		annotator:  NewAnnotator(opts.Store, opts.Uploads, opts.Favorites),
		classifier: opts.Classifier,
		queue:      opts.Queue,
		metrics:    opts.Metrics,
	}, nil
}

// Queue returns the pending update queue shared with the host.
func (m *Materializer) Queue() *pending.Queue[*Descriptor] {
	return m.queue
}

// Materialize builds the descriptor for rec.
//
// serverURL is the remote folder the record lives in; when empty the
// record's own ServerURL is used.
func (m *Materializer) Materialize(ctx context.Context, rec *metadata.Record, serverURL string) *Descriptor {
	start := time.Now()

	if serverURL == "" {
		serverURL = rec.ServerURL
	}

	d := &Descriptor{
		Filename:                rec.FileNameView,
		IsDirectory:             rec.Directory,
		Capabilities:            CapabilitiesFor(rec.Directory),
		DocumentSize:            rec.Size,
		ContentModificationDate: rec.Date,
		CreationDate:            rec.Date,
	}

	if !m.legacy {
		d.ItemIdentifier = Identifier(rec.FileID)
		d.ParentItemIdentifier = m.resolver.ResolveParent(ctx, rec.Account, rec.DirectoryID, serverURL)
	}

	if uti, ok := m.classifier.Classify(ctx, rec.FileNameView, rec); ok {
		d.TypeIdentifier = uti
		m.metrics.RecordTypeClassification(true)
	} else {
		m.metrics.RecordTypeClassification(false)
	}

	m.tracker.Apply(ctx, rec, d)
	m.annotator.Apply(ctx, rec, d)

	// Without hierarchical identifiers every descriptor has the same empty
	// key, so removal would drop an unrelated entry.
	if d.ItemIdentifier != "" {
		removed := m.queue.RemoveIfPresent(d.Key())
		m.metrics.RecordPendingRemoval(removed)
		if removed {
			logger.Debug("Dropped stale pending update for %s", d.ItemIdentifier)
		}
	}
	m.metrics.SetPendingQueueLength(m.queue.Len())

	m.metrics.RecordMaterialize(time.Since(start), rec.Directory)
	return d
}

// MaterializeByID loads the record for fileID and materializes it in its
// own server folder.
//
// Unlike Materialize this can fail, because there is nothing to describe
// when the record itself is missing.
func (m *Materializer) MaterializeByID(ctx context.Context, account, fileID string) (*Descriptor, error) {
	rec, err := m.store.LookupRecordByFileID(ctx, account, fileID)
	if err != nil {
		return nil, fmt.Errorf("load record %s/%s: %w", account, fileID, err)
	}
	return m.Materialize(ctx, rec, rec.ServerURL), nil
}

// MaterializeAndEnqueue materializes rec and queues the result for host
// notification, replacing any older queued state of the same item.
//
// Materializing and queueing take the queue lock separately, so concurrent
// calls for the same item queue whichever descriptor is enqueued last, not
// the one built from the newest record. Legacy descriptors have no key and
// are appended without replacement.
func (m *Materializer) MaterializeAndEnqueue(ctx context.Context, rec *metadata.Record, serverURL string) *Descriptor {
	d := m.Materialize(ctx, rec, serverURL)
	if d.Key() == "" {
		m.queue.Enqueue(d)
	} else {
		m.queue.EnqueueOrReplace(d)
	}
	m.metrics.SetPendingQueueLength(m.queue.Len())
	return d
}

// EnqueueByID loads the record for fileID, materializes it and queues the
// result. It fails only when the record is missing.
func (m *Materializer) EnqueueByID(ctx context.Context, account, fileID string) (*Descriptor, error) {
	rec, err := m.store.LookupRecordByFileID(ctx, account, fileID)
	if err != nil {
		return nil, fmt.Errorf("load record %s/%s: %w", account, fileID, err)
	}
	return m.MaterializeAndEnqueue(ctx, rec, rec.ServerURL), nil
}
