package api

import (
	"context"
	"errors"
)

// ErrBagItemNotFound is returned when the data bag or the item within it
// does not exist in the inventory
var ErrBagItemNotFound = errors.New("data bag item does not exist")

// ErrNodeNotFound is returned when no node is registered under a FQDN
var ErrNodeNotFound = errors.New("node does not exist")

// Client represents an interface we use to retrieve information from the
// inventory API
type Client interface {
	// GetBagItem retrieves a data bag item and wraps it into a Lookup
	GetBagItem(ctx context.Context, bag, name string) Lookup

	// GetNode retrieves the node registered under fqdn and wraps it into
	// a NodeLookup
	GetNode(ctx context.Context, fqdn string) NodeLookup

	// Status checks the availability of the inventory API
	Status() error
}
