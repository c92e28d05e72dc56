package source

import (
	"context"
	"fmt"

	"gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/source/disk"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
	"gitlab.com/fleetops/whitelistd/whitelist"
)

// Source represents an abstract interface of a whitelist configuration
// source.
type Source interface {
	// GetWhitelist returns the whitelist Record stored under the given data
	// bag item, with host patterns read from the given attribute
	GetWhitelist(ctx context.Context, bag, item, attribute string) (*whitelist.Record, error)

	// GetNode returns the node registered under the given fully qualified
	// domain name
	GetNode(ctx context.Context, fqdn string) (*api.Node, error)

	// IsReady reports whether the source is able to answer lookups
	IsReady() bool
}

// Reloader is implemented by sources that can re-read their backing data
// on demand, such as the disk source on SIGHUP.
type Reloader interface {
	Reload() error
}

// NewSource returns a whitelist source built according to the daemon
// configuration. The configured source kind has been validated already, an
// unknown one here is a programming error.
func NewSource(cfg *config.Config) (Source, error) {
	switch cfg.Store.Source {
	case config.SourceDisk:
		return disk.New(cfg)
	case config.SourceInventory:
		return inventory.New(cfg)
	default:
		return nil, fmt.Errorf("unknown whitelist source: %q", cfg.Store.Source)
	}
}
