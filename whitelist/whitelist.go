// Package whitelist answers whether a host belongs to a named whitelist
// group. A group admits hosts by glob patterns over their fully qualified
// domain name, or by membership in one of a list of roles.
package whitelist

import (
	"context"
	"errors"
)

// DefaultBag is the data bag whitelist items are read from when a check
// does not name one.
const DefaultBag = "whitelist"

// DefaultAttribute is the item attribute holding host patterns when a
// check does not name one.
const DefaultAttribute = "patterns"

// ErrWhitelistNotFound is returned by sources when the bag or the item
// does not exist.
var ErrWhitelistNotFound = errors.New("whitelist not found")

// ErrMalformedWhitelist is returned by sources when the item exists but
// its fields do not have the expected types.
var ErrMalformedWhitelist = errors.New("malformed whitelist record")

// Record is a whitelist item fetched from a source. Once fetched it is
// never mutated.
type Record struct {
	// Patterns are glob-style host patterns, tried in order.
	Patterns []string

	// Roles is nil when the item has no roles key. A non-nil empty slice
	// means the key is present but names no roles, so the role search
	// runs and trivially finds nothing.
	Roles []string
}

// Subject is the host whose membership is being tested.
type Subject interface {
	// FQDN returns the host identity matched against patterns. May be
	// empty.
	FQDN() string

	// HasRole reports whether the host holds the named role. Lookup
	// failures are answered as false by the implementation.
	HasRole(ctx context.Context, role string) bool
}

// Source resolves a whitelist item to a Record.
//
// Implementations return errors wrapping ErrWhitelistNotFound for missing
// bags or items and ErrMalformedWhitelist for items that decode to
// unexpected types. Any other error is treated as a connection failure.
type Source interface {
	GetWhitelist(ctx context.Context, bag, item, attribute string) (*Record, error)
}
