package testing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunHealthcheckTests(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		store := suite.newStore(t)
		assert.NoError(t, store.Healthcheck(context.Background()))
	})
}

func (suite *StoreTestSuite) RunConcurrencyTests(t *testing.T) {
	t.Run("ParallelPutLookup", suite.TestConcurrency_ParallelPutLookup)
}

// TestConcurrency_ParallelPutLookup hammers the store from several goroutines.
func (suite *StoreTestSuite) TestConcurrency_ParallelPutLookup(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := fmt.Sprintf("F-%d-%d", w, i)
				if err := store.PutRecord(ctx, FileRecord(TestAccount, id, "D1", id+".txt")); err != nil {
					errs <- err
					continue
				}
				if _, err := store.LookupRecordByFileID(ctx, TestAccount, id); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
