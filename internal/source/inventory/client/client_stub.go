package client

import (
	"context"

	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
)

// StubClient is a stubbed client used for testing
type StubClient struct {
	ItemLookup *api.Lookup
	NodeLookup *api.NodeLookup
	StatusErr  func() error
}

// GetBagItem returns the canned item lookup, or a not found error when none
// was configured
func (c StubClient) GetBagItem(ctx context.Context, bag, name string) api.Lookup {
	if c.ItemLookup != nil {
		return *c.ItemLookup
	}

	return api.Lookup{Bag: bag, Name: name, Error: api.ErrBagItemNotFound}
}

// GetNode returns the canned node lookup, or a not found error when none
// was configured
func (c StubClient) GetNode(ctx context.Context, fqdn string) api.NodeLookup {
	if c.NodeLookup != nil {
		return *c.NodeLookup
	}

	return api.NodeLookup{FQDN: fqdn, Error: api.ErrNodeNotFound}
}

// Status implements api.Client
func (c StubClient) Status() error {
	if c.StatusErr != nil {
		return c.StatusErr()
	}

	return nil
}

// ResolveItem implements api.Resolver
func (c StubClient) ResolveItem(ctx context.Context, bag, name string) *api.Lookup {
	lookup := c.GetBagItem(ctx, bag, name)

	return &lookup
}

// ResolveNode implements api.Resolver
func (c StubClient) ResolveNode(ctx context.Context, fqdn string) *api.NodeLookup {
	lookup := c.GetNode(ctx, fqdn)

	return &lookup
}
