package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
)

func TestRetrieveItemRetriesOnFailure(t *testing.T) {
	failure := errors.New("inventory is on fire")
	resolver := &stubClient{failure: failure}

	retriever := NewRetriever(resolver, 5*time.Second, time.Millisecond, 3)

	lookup := retriever.RetrieveItem("whitelist", "web-servers")

	require.Equal(t, failure, lookup.Error)
	require.Equal(t, uint64(3), resolutions(resolver))
}

func TestRetrieveItemDoesNotRetryMissingItems(t *testing.T) {
	resolver := &stubClient{failure: api.ErrBagItemNotFound}

	retriever := NewRetriever(resolver, 5*time.Second, time.Millisecond, 3)

	lookup := retriever.RetrieveItem("whitelist", "no-such-item")

	require.Equal(t, api.ErrBagItemNotFound, lookup.Error)
	require.Equal(t, uint64(1), resolutions(resolver))
}

func TestRetrieveItemDoesNotSleepAfterLastAttempt(t *testing.T) {
	failure := errors.New("inventory is on fire")
	resolver := &stubClient{failure: failure}

	// with a single attempt the retriever must never hit the interval,
	// otherwise the hour long sleep below trips the retrieval timeout
	retriever := NewRetriever(resolver, time.Second, time.Hour, 1)

	lookup := retriever.RetrieveItem("whitelist", "web-servers")

	require.Equal(t, failure, lookup.Error)
	require.Equal(t, uint64(1), resolutions(resolver))
}

func TestRetrieveNodeDoesNotSleepAfterLastAttempt(t *testing.T) {
	failure := errors.New("inventory is on fire")
	resolver := &stubClient{failure: failure}

	retriever := NewRetriever(resolver, time.Second, time.Hour, 1)

	lookup := retriever.RetrieveNode("web-1.example.com")

	require.Equal(t, failure, lookup.Error)
	require.Equal(t, uint64(1), resolutions(resolver))
}
