package api

import (
	"context"
)

// Resolver represents an interface we use to retrieve information from the
// inventory in a more generic way. It can be a concrete API client or a
// cached client.
type Resolver interface {
	// ResolveItem retrieves a data bag item and wraps it into a Lookup
	ResolveItem(ctx context.Context, bag, name string) *Lookup

	// ResolveNode retrieves the node registered under fqdn and wraps it
	// into a NodeLookup
	ResolveNode(ctx context.Context, fqdn string) *NodeLookup
}
