package cache

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
)

// Retriever is an utility type that performs an API request with bounded
// retries in case of errors
type Retriever struct {
	client               api.Client
	retrievalTimeout     time.Duration
	maxRetrievalInterval time.Duration
	maxRetrievalRetries  int
}

// NewRetriever creates a Retriever with a client
func NewRetriever(client api.Client, retrievalTimeout, maxRetrievalInterval time.Duration, maxRetrievalRetries int) *Retriever {
	return &Retriever{
		client:               client,
		retrievalTimeout:     retrievalTimeout,
		maxRetrievalInterval: maxRetrievalInterval,
		maxRetrievalRetries:  maxRetrievalRetries,
	}
}

// RetrieveItem retrieves a data bag item lookup from the inventory with
// timeout and retries. It has its own context so callers giving up early
// do not cancel the fetch for everyone else waiting on the same entry.
func (r *Retriever) RetrieveItem(bag, name string) (lookup api.Lookup) {
	ctx, cancel := context.WithTimeout(context.Background(), r.retrievalTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		log.Debug("whitelist item retrieval context done")
		lookup = api.Lookup{Bag: bag, Name: name, Error: ctx.Err()}
	case lookup = <-r.fetchItemWithRetries(ctx, bag, name):
		log.Debug("whitelist item retrieval response sent")
	}

	return lookup
}

// RetrieveNode retrieves a node lookup from the inventory with timeout and
// retries
func (r *Retriever) RetrieveNode(fqdn string) (lookup api.NodeLookup) {
	ctx, cancel := context.WithTimeout(context.Background(), r.retrievalTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		log.Debug("node retrieval context done")
		lookup = api.NodeLookup{FQDN: fqdn, Error: ctx.Err()}
	case lookup = <-r.fetchNodeWithRetries(ctx, fqdn):
		log.Debug("node retrieval response sent")
	}

	return lookup
}

func (r *Retriever) fetchItemWithRetries(ctx context.Context, bag, name string) <-chan api.Lookup {
	response := make(chan api.Lookup, 1)

	go func() {
		var lookup api.Lookup

		for i := 1; i <= r.maxRetrievalRetries; i++ {
			lookup = r.client.GetBagItem(ctx, bag, name)

			// a missing item is an answer, not a failure, retrying would
			// not change it
			if lookup.Error == nil || errors.Is(lookup.Error, api.ErrBagItemNotFound) {
				break
			}

			if i < r.maxRetrievalRetries {
				time.Sleep(r.maxRetrievalInterval)
			}
		}

		response <- lookup
		close(response)
	}()

	return response
}

func (r *Retriever) fetchNodeWithRetries(ctx context.Context, fqdn string) <-chan api.NodeLookup {
	response := make(chan api.NodeLookup, 1)

	go func() {
		var lookup api.NodeLookup

		for i := 1; i <= r.maxRetrievalRetries; i++ {
			lookup = r.client.GetNode(ctx, fqdn)

			if lookup.Error == nil || errors.Is(lookup.Error, api.ErrNodeNotFound) {
				break
			}

			if i < r.maxRetrievalRetries {
				time.Sleep(r.maxRetrievalInterval)
			}
		}

		response <- lookup
		close(response)
	}()

	return response
}
