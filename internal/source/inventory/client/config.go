package client

import "time"

// Config is the part of the daemon configuration the inventory API client
// needs
type Config interface {
	InventoryServerURL() string
	InventoryAPISecret() []byte
	InventoryClientConnectionTimeout() time.Duration
	InventoryJWTTokenExpiry() time.Duration
}
