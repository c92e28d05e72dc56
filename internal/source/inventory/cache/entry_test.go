package cache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntryIsResolved(t *testing.T) {
	t.Run("when a response is set", func(t *testing.T) {
		entry := newCacheEntry("item/whitelist/batch-jobs", nil)
		entry.response = "resolved"

		require.True(t, entry.IsResolved())
	})

	t.Run("when nothing was retrieved yet", func(t *testing.T) {
		entry := newCacheEntry("item/whitelist/batch-jobs", nil)

		require.False(t, entry.IsResolved())
	})
}

func TestEntryRetrieve(t *testing.T) {
	t.Run("the fetch runs only once", func(t *testing.T) {
		var fetches uint64

		entry := newCacheEntry("item/whitelist/batch-jobs", func() interface{} {
			atomic.AddUint64(&fetches, 1)
			return "resolved"
		})

		for i := 0; i < 3; i++ {
			response, err := entry.Retrieve(context.Background())
			require.NoError(t, err)
			require.Equal(t, "resolved", response)
		}

		require.Equal(t, uint64(1), atomic.LoadUint64(&fetches))
	})

	t.Run("a caller gives up when its context is done", func(t *testing.T) {
		blocked := make(chan struct{})

		entry := newCacheEntry("item/whitelist/batch-jobs", func() interface{} {
			<-blocked
			return "resolved"
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := entry.Retrieve(ctx)
		require.ErrorIs(t, err, context.Canceled)

		close(blocked)
	})
}
