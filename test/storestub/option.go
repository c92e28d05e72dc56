package storestub

import (
	"crypto/tls"
	"net/http"
	"time"

	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
)

type config struct {
	bagHandler    http.HandlerFunc
	statusHandler http.HandlerFunc
	bags          map[string]map[string]interface{}
	nodes         map[string]*api.Node
	secretKey     []byte
	delay         time.Duration
	tlsConfig     *tls.Config
}

type Option func(*config)

// WithBagHandler replaces the default data bag handler
func WithBagHandler(bh http.HandlerFunc) Option {
	return func(sc *config) {
		sc.bagHandler = bh
	}
}

// WithStatusHandler replaces the default status handler
func WithStatusHandler(sh http.HandlerFunc) Option {
	return func(sc *config) {
		sc.statusHandler = sh
	}
}

// WithBagItem adds a data bag item on top of the predefined responses
func WithBagItem(bag, item string, fields map[string]interface{}) Option {
	return func(sc *config) {
		sc.bags[bag+"/"+item] = fields
	}
}

// WithNode adds a node on top of the predefined responses
func WithNode(node *api.Node) Option {
	return func(sc *config) {
		sc.nodes[node.FQDN] = node
	}
}

// WithSecretKey makes the stub reject requests that do not carry a valid
// API token signed with key
func WithSecretKey(key []byte) Option {
	return func(sc *config) {
		sc.secretKey = key
	}
}

// WithDelay makes every response wait for delay before answering
func WithDelay(delay time.Duration) Option {
	return func(sc *config) {
		sc.delay = delay
	}
}

// WithCertificate makes the stub serve TLS with cert
func WithCertificate(cert tls.Certificate) Option {
	return func(sc *config) {
		sc.tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
		}
	}
}
