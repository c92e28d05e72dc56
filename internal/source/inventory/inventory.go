package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/cache"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/client"
	"gitlab.com/fleetops/whitelistd/whitelist"
)

// Inventory is a whitelist source backed by the inventory API. All lookups
// go through a run scoped cache.
type Inventory struct {
	resolver api.Resolver
	client   api.Client
	mu       *sync.RWMutex
	isReady  bool
}

// New returns a new instance of the inventory whitelist source.
func New(cfg *config.Config) (*Inventory, error) {
	apiClient, err := client.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	i := &Inventory{
		resolver: cache.NewCache(apiClient, &cfg.Store.Cache),
		client:   apiClient,
		mu:       &sync.RWMutex{},
	}

	go i.poll(backoff.DefaultInitialInterval, maxPollingTime)

	return i, nil
}

// GetWhitelist fetches a data bag item and extracts a whitelist Record from
// it. The roles key keeps its absent versus empty distinction.
func (i *Inventory) GetWhitelist(ctx context.Context, bag, item, attribute string) (*whitelist.Record, error) {
	lookup := i.resolver.ResolveItem(ctx, bag, item)
	if lookup.Error != nil {
		if errors.Is(lookup.Error, api.ErrBagItemNotFound) {
			return nil, fmt.Errorf("%s/%s: %w", bag, item, whitelist.ErrWhitelistNotFound)
		}

		return nil, lookup.Error
	}

	patterns, err := lookup.Item.Patterns(attribute)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %s: %w", bag, item, err, whitelist.ErrMalformedWhitelist)
	}

	roles, present, err := lookup.Item.Roles()
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %s: %w", bag, item, err, whitelist.ErrMalformedWhitelist)
	}

	record := &whitelist.Record{Patterns: patterns}
	if present {
		record.Roles = roles
	}

	return record, nil
}

// GetNode fetches a node by its fully qualified domain name
func (i *Inventory) GetNode(ctx context.Context, fqdn string) (*api.Node, error) {
	lookup := i.resolver.ResolveNode(ctx, fqdn)
	if lookup.Error != nil {
		return nil, lookup.Error
	}

	return lookup.Node, nil
}

// IsReady returns whether the inventory API could be reached at least once
// since the daemon started
func (i *Inventory) IsReady() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.isReady
}
