package config

import (
	"testing"

	"github.com/marmos91/dittoprovider/pkg/metrics"
	"github.com/stretchr/testify/assert"
)

func TestInitializeMetrics_Disabled(t *testing.T) {
	result := InitializeMetrics(GetDefaultConfig())

	assert.Nil(t, result.Server)
	assert.Equal(t, metrics.NewNoopMaterializerMetrics(), result.Materializer)
	assert.Equal(t, metrics.NewNoopLookupCacheMetrics(), result.LookupCache)
}
