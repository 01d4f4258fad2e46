package testing

import (
	"testing"

	"github.com/marmos91/dittoprovider/pkg/metadata"
)

// StoreTestSuite is a comprehensive test suite for metadata.WritableStore
// implementations. It tests the interface contract, not implementation
// details, making it reusable across memory, badger and sqlite backends.
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh store instance
	// for each test. This ensures test isolation. Implementations needing a
	// temporary directory can use t.TempDir().
	NewStore func(t *testing.T) metadata.WritableStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("Record", suite.RunRecordTests)
	test.Run("Directory", suite.RunDirectoryTests)
	test.Run("Tag", suite.RunTagTests)
	test.Run("Healthcheck", suite.RunHealthcheckTests)
	test.Run("Concurrency", suite.RunConcurrencyTests)
}

// newStore creates a store and registers its Close with the test cleanup.
func (suite *StoreTestSuite) newStore(t *testing.T) metadata.WritableStore {
	t.Helper()
	store := suite.NewStore(t)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
