package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The registry is process-wide and never initialized in this package's
// tests, so these cover the disabled path.
func TestHandler_Disabled(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disabled")
}

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(ServerConfig{})
	assert.Equal(t, 9090, s.Port())

	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ":9090/metrics")

	rec = httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoopMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		m := NewNoopMaterializerMetrics()
		m.RecordMaterialize(0, true)
		m.RecordParentResolution(ParentRoot)
		m.RecordCacheProbe(ProbeError)
		m.RecordTypeClassification(true)
		m.RecordPendingRemoval(false)
		m.SetPendingQueueLength(3)

		l := NewNoopLookupCacheMetrics()
		l.RecordHit(LookupRecord)
		l.RecordMiss(LookupTag)
		l.RecordEviction()
	})
}
