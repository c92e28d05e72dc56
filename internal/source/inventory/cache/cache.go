package cache

import (
	"context"
	"time"

	"gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
	"gitlab.com/fleetops/whitelistd/metrics"
)

// itemKind and nodeKind namespace cache keys and label cache metrics
const (
	itemKind = "item"
	nodeKind = "node"
)

// Cache is a run scoped caching mechanism for inventory API lookups. Failed
// fetches are cached like successful ones and only evicted again when
// negative caching is disabled.
type Cache struct {
	store            Store
	retriever        *Retriever
	retrievalTimeout time.Duration
	negativeCaching  bool
}

// NewCache creates a new instance of Cache.
func NewCache(client api.Client, cc *config.Cache) *Cache {
	return &Cache{
		store:            newMemStore(cc),
		retriever:        NewRetriever(client, cc.RetrievalTimeout, cc.MaxRetrievalInterval, cc.MaxRetrievalRetries),
		retrievalTimeout: cc.RetrievalTimeout,
		negativeCaching:  cc.NegativeCaching,
	}
}

// ResolveItem returns a Lookup for the given data bag item, served from the
// cache whenever possible
func (c *Cache) ResolveItem(ctx context.Context, bag, name string) *api.Lookup {
	key := itemKind + "/" + bag + "/" + name

	entry := c.loadOrCreate(key, itemKind, func() interface{} {
		lookup := c.retriever.RetrieveItem(bag, name)
		return &lookup
	})

	response, err := c.wait(ctx, entry)
	if err != nil {
		return &api.Lookup{Bag: bag, Name: name, Error: err}
	}

	lookup := response.(*api.Lookup)

	if lookup.Error != nil && !c.negativeCaching {
		c.store.Remove(key, entry)
	}

	return lookup
}

// ResolveNode returns a NodeLookup for the given fully qualified domain
// name, served from the cache whenever possible
func (c *Cache) ResolveNode(ctx context.Context, fqdn string) *api.NodeLookup {
	key := nodeKind + "/" + fqdn

	entry := c.loadOrCreate(key, nodeKind, func() interface{} {
		lookup := c.retriever.RetrieveNode(fqdn)
		return &lookup
	})

	response, err := c.wait(ctx, entry)
	if err != nil {
		return &api.NodeLookup{FQDN: fqdn, Error: err}
	}

	lookup := response.(*api.NodeLookup)

	if lookup.Error != nil && !c.negativeCaching {
		c.store.Remove(key, entry)
	}

	return lookup
}

func (c *Cache) loadOrCreate(key, kind string, fetch retrieveFunc) *Entry {
	entry := c.store.LoadOrCreate(key, fetch)

	if entry.IsResolved() {
		metrics.SourceCacheHit.WithLabelValues(kind).Inc()
	} else {
		metrics.SourceCacheMiss.WithLabelValues(kind).Inc()
	}

	return entry
}

func (c *Cache) wait(ctx context.Context, entry *Entry) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.retrievalTimeout)
	defer cancel()

	return entry.Retrieve(ctx)
}
