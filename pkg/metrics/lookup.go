package metrics

// Lookup kinds reported by the metadata lookup cache.
const (
	LookupRecord    = "record"
	LookupDirectory = "directory"
	LookupTag       = "tag"
)

// LookupCacheMetrics provides observability for the metadata lookup cache.
type LookupCacheMetrics interface {
	// RecordHit records a lookup served from cache.
	RecordHit(kind string)

	// RecordMiss records a lookup that reached the backing store.
	RecordMiss(kind string)

	// RecordEviction records an entry dropped to honor the size limit.
	RecordEviction()
}

// NewNoopLookupCacheMetrics returns a LookupCacheMetrics that records nothing.
func NewNoopLookupCacheMetrics() LookupCacheMetrics {
	return noopLookupCacheMetrics{}
}

type noopLookupCacheMetrics struct{}

func (noopLookupCacheMetrics) RecordHit(string)  {}
func (noopLookupCacheMetrics) RecordMiss(string) {}
func (noopLookupCacheMetrics) RecordEviction()   {}
