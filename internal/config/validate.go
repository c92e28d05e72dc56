package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-multierror"

	"gitlab.com/fleetops/whitelistd/internal/config/tls"
)

var (
	// ErrNoListener when no listener was configured
	ErrNoListener = errors.New("no listener defined, please specify at least one --listen-* flag")
	// ErrUnknownSource when whitelist-source is neither inventory nor disk
	ErrUnknownSource = errors.New("invalid whitelist-source, supported values are 'inventory' and 'disk'")
	// ErrInventoryNoServer when the inventory source lacks a server URL
	ErrInventoryNoServer = errors.New("inventory-server must be defined when whitelist-source is 'inventory'")
	// ErrInventoryUnsupportedScheme when the inventory server URL is not http(s)
	ErrInventoryUnsupportedScheme = errors.New("inventory-server scheme must be either http:// or https://")
	// ErrInventoryNoSecret when the inventory source lacks an API secret
	ErrInventoryNoSecret = errors.New("api-secret-key must be defined when whitelist-source is 'inventory'")
	// ErrDiskNoFile when the disk source lacks a whitelist file
	ErrDiskNoFile = errors.New("whitelist-file must be defined when whitelist-source is 'disk'")
	// ErrNoDefaultBag when default-bag is empty
	ErrNoDefaultBag = errors.New("default-bag must not be empty")
	// ErrNoDefaultAttribute when default-attribute is empty
	ErrNoDefaultAttribute = errors.New("default-attribute must not be empty")
	// ErrInvalidRateLimit when a negative rate limit was configured
	ErrInvalidRateLimit = errors.New("rate-limit-source-ip must not be negative")
)

// Validate values populated in Config
func Validate(config *Config) error {
	var result *multierror.Error

	result = multierror.Append(result,
		validateListeners(config),
		validateStoreConfig(config),
		validateRateLimitConfig(config),
		tls.ValidateTLSVersions(*tlsMinVersion, *tlsMaxVersion),
	)

	return result.ErrorOrNil()
}

func validateListeners(config *Config) error {
	if config.ListenHTTPStrings.Len() == 0 &&
		config.ListenHTTPSStrings.Len() == 0 &&
		config.ListenProxyStrings.Len() == 0 &&
		config.ListenProxyV2Strings.Len() == 0 {
		return ErrNoListener
	}

	return nil
}

// ValidateStore validates only the store and inventory settings. One-shot
// tools without listeners use it in place of Validate.
func ValidateStore(config *Config) error {
	return validateStoreConfig(config)
}

func validateStoreConfig(config *Config) error {
	var result *multierror.Error

	if config.Store.DefaultBag == "" {
		result = multierror.Append(result, ErrNoDefaultBag)
	}

	if config.Store.DefaultAttribute == "" {
		result = multierror.Append(result, ErrNoDefaultAttribute)
	}

	switch config.Store.Source {
	case SourceInventory:
		result = multierror.Append(result, validateInventoryConfig(config))
	case SourceDisk:
		if config.Store.File == "" {
			result = multierror.Append(result, ErrDiskNoFile)
		}
	default:
		result = multierror.Append(result, ErrUnknownSource)
	}

	return result.ErrorOrNil()
}

func validateInventoryConfig(config *Config) error {
	var result *multierror.Error

	if config.Inventory.Server == "" {
		result = multierror.Append(result, ErrInventoryNoServer)
	} else {
		u, err := url.Parse(config.Inventory.Server)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("parsing inventory-server: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			// url.Parse ensures that the Scheme attribute is always lower case.
			result = multierror.Append(result, ErrInventoryUnsupportedScheme)
		}
	}

	if len(config.Inventory.APISecretKey) == 0 {
		result = multierror.Append(result, ErrInventoryNoSecret)
	}

	return result.ErrorOrNil()
}

func validateRateLimitConfig(config *Config) error {
	if config.RateLimit.SourceIPLimitPerSecond < 0 {
		return ErrInvalidRateLimit
	}

	return nil
}
