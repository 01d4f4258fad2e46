package metrics

import "time"

// Parent resolution outcomes.
const (
	ParentRoot     = "root"
	ParentResolved = "resolved"
	ParentFallback = "fallback"
)

// Cache probe outcomes.
const (
	ProbeDownloaded    = "downloaded"
	ProbeNotDownloaded = "not_downloaded"
	ProbeError         = "error"
)

// MaterializerMetrics provides observability for descriptor materialization.
//
// This interface is optional - if not provided to the materializer, a no-op
// implementation is used.
type MaterializerMetrics interface {
	// RecordMaterialize records one completed materialization.
	//
	// Parameters:
	//   - duration: Time taken to build the descriptor
	//   - directory: Whether the item is a folder
	RecordMaterialize(duration time.Duration, directory bool)

	// RecordParentResolution records how the parent identifier was obtained:
	// ParentRoot, ParentResolved or ParentFallback.
	RecordParentResolution(outcome string)

	// RecordCacheProbe records a content cache probe outcome:
	// ProbeDownloaded, ProbeNotDownloaded or ProbeError.
	RecordCacheProbe(outcome string)

	// RecordTypeClassification records whether a type identifier was found.
	RecordTypeClassification(found bool)

	// RecordPendingRemoval records whether materializing removed a queued update.
	RecordPendingRemoval(removed bool)

	// SetPendingQueueLength updates the pending queue gauge.
	SetPendingQueueLength(n int)
}

// NewNoopMaterializerMetrics returns a MaterializerMetrics that records nothing.
func NewNoopMaterializerMetrics() MaterializerMetrics {
	return noopMaterializerMetrics{}
}

type noopMaterializerMetrics struct{}

func (noopMaterializerMetrics) RecordMaterialize(time.Duration, bool) {}
func (noopMaterializerMetrics) RecordParentResolution(string)         {}
func (noopMaterializerMetrics) RecordCacheProbe(string)               {}
func (noopMaterializerMetrics) RecordTypeClassification(bool)         {}
func (noopMaterializerMetrics) RecordPendingRemoval(bool)             {}
func (noopMaterializerMetrics) SetPendingQueueLength(int)             {}
