package config

import (
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/namsral/flag"
	log "github.com/sirupsen/logrus"

	"gitlab.com/fleetops/whitelistd/internal/config/tls"
	"gitlab.com/fleetops/whitelistd/internal/customheaders"
	"gitlab.com/fleetops/whitelistd/internal/logging"
)

// Config stores all the config options relevant to whitelistd.
type Config struct {
	General   General
	Inventory Inventory
	Store     Store
	RateLimit RateLimit
	Listeners Listeners
	Log       Log
	Sentry    Sentry
	Server    Server
	TLS       TLS

	// Fields used to share information between files. These are not directly
	// set by command line flags, but rather populated based on info from them.
	// ListenMetrics points to a file descriptor of a socket, whose address is
	// specified by `Config.General.MetricsAddress`.
	ListenMetrics uintptr

	// These fields contain the raw strings passed for listen-http,
	// listen-https, listen-proxy and listen-proxyv2 settings. It is used by
	// appMain() to create listeners, and the pointers to these listeners
	// gets assigned to Config.Listeners.* fields
	ListenHTTPStrings    MultiStringFlag
	ListenHTTPSStrings   MultiStringFlag
	ListenProxyStrings   MultiStringFlag
	ListenProxyV2Strings MultiStringFlag
}

// General groups settings that are general to whitelistd and can not be
// categorized under other head.
type General struct {
	CustomHeaders   http.Header
	HTTP2           bool
	MaxConns        int
	MaxURILength    int
	MetricsAddress  string
	RootCertificate []byte
	RootKey         []byte
	StatusPath      string

	DisableCrossOriginRequests bool
	InsecureCiphers            bool
	PropagateCorrelationID     bool

	ShowVersion bool
}

// Inventory groups settings related to configuring the client used to
// interact with the inventory API
type Inventory struct {
	Server             string
	APISecretKey       []byte
	ClientHTTPTimeout  time.Duration
	JWTTokenExpiration time.Duration
}

// Cache configuration for whitelist items and nodes
type Cache struct {
	CacheExpiry          time.Duration
	CacheCleanupInterval time.Duration
	NegativeCaching      bool
	RetrievalTimeout     time.Duration
	MaxRetrievalInterval time.Duration
	MaxRetrievalRetries  int
}

// Store groups settings that select and configure the whitelist source
type Store struct {
	Source           string
	File             string
	DefaultBag       string
	DefaultAttribute string
	Cache            Cache
}

// RateLimit groups settings related to rate limiting incoming requests
type RateLimit struct {
	SourceIPLimitPerSecond float64
	SourceIPBurst          int
}

// Listeners groups settings related to configuring various listeners
// (HTTP, HTTPS, Proxy, HTTPS over PROXY v2)
type Listeners struct {
	HTTP    []uintptr
	HTTPS   []uintptr
	Proxy   []uintptr
	ProxyV2 []uintptr
}

// Log groups settings related to configuring logging
type Log struct {
	Format  string
	Verbose bool
}

// Sentry groups settings related to configuring Sentry
type Sentry struct {
	DSN         string
	Environment string
}

// Server groups settings related to HTTP server timeouts
type Server struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ListenKeepAlive   time.Duration
	ShutdownTimeout   time.Duration
}

// TLS groups settings related to configuring TLS
type TLS struct {
	MinVersion uint16
	MaxVersion uint16
}

// SourceInventory and SourceDisk are the accepted -whitelist-source values
const (
	SourceInventory = "inventory"
	SourceDisk      = "disk"
)

// InventoryServerURL returns the URL of the inventory API server
func (config *Config) InventoryServerURL() string {
	return config.Inventory.Server
}

// InventoryAPISecret returns the shared secret used to sign API requests
func (config *Config) InventoryAPISecret() []byte {
	return config.Inventory.APISecretKey
}

// InventoryClientConnectionTimeout returns the HTTP client timeout used for
// inventory API requests
func (config *Config) InventoryClientConnectionTimeout() time.Duration {
	return config.Inventory.ClientHTTPTimeout
}

// InventoryJWTTokenExpiry returns the duration for which a signed API token
// stays valid
func (config *Config) InventoryJWTTokenExpiry() time.Duration {
	return config.Inventory.JWTTokenExpiration
}

func inventoryServerFromFlags() string {
	return strings.TrimRight(*inventoryServer, "/")
}

// ReadAPISecretKey reads the base64 encoded inventory API secret from the
// given file and returns the decoded 32 byte key.
func ReadAPISecretKey(secretFile string) ([]byte, error) {
	encoded, err := ioutil.ReadFile(secretFile)
	if err != nil {
		return nil, fmt.Errorf("reading secret file: %w", err)
	}

	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	secretLength, err := base64.StdEncoding.Decode(decoded, encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding inventory API secret: %w", err)
	}

	if secretLength != 32 {
		return nil, fmt.Errorf("expected 32 bytes inventory API secret but got %d bytes", secretLength)
	}

	return decoded[:secretLength], nil
}

func setAPISecretKey(secretFile string, config *Config) error {
	if secretFile == "" {
		return nil
	}

	key, err := ReadAPISecretKey(secretFile)
	if err != nil {
		return err
	}

	config.Inventory.APISecretKey = key
	return nil
}

func loadConfig() (*Config, error) {
	config := &Config{
		General: General{
			HTTP2:                      *useHTTP2,
			MaxConns:                   *maxConns,
			MaxURILength:               *maxURILength,
			MetricsAddress:             *metricsAddress,
			StatusPath:                 *statusPath,
			DisableCrossOriginRequests: *disableCrossOriginRequests,
			InsecureCiphers:            *insecureCiphers,
			PropagateCorrelationID:     *propagateCorrelationID,
			ShowVersion:                *showVersion,
		},
		Inventory: Inventory{
			Server:             inventoryServerFromFlags(),
			ClientHTTPTimeout:  *inventoryClientHTTPTimeout,
			JWTTokenExpiration: *inventoryClientJWTExpiry,
		},
		Store: Store{
			Source:           *whitelistSource,
			File:             *whitelistFile,
			DefaultBag:       *defaultBag,
			DefaultAttribute: *defaultAttribute,
			Cache: Cache{
				CacheExpiry:          *whitelistCacheExpiry,
				CacheCleanupInterval: *whitelistCacheCleanup,
				NegativeCaching:      *whitelistCacheNegative,
				RetrievalTimeout:     *whitelistRetrievalTimeout,
				MaxRetrievalInterval: *whitelistRetrievalInterval,
				MaxRetrievalRetries:  *whitelistRetrievalRetries,
			},
		},
		RateLimit: RateLimit{
			SourceIPLimitPerSecond: *rateLimitSourceIP,
			SourceIPBurst:          *rateLimitSourceIPBurst,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},
		Sentry: Sentry{
			DSN:         *sentryDSN,
			Environment: *sentryEnvironment,
		},
		Server: Server{
			ReadTimeout:       *serverReadTimeout,
			ReadHeaderTimeout: *serverReadHeaderTimeout,
			WriteTimeout:      *serverWriteTimeout,
			ListenKeepAlive:   *serverKeepAlive,
			ShutdownTimeout:   *serverShutdownTimeout,
		},
		TLS: TLS{
			MinVersion: tls.AllTLSVersions[*tlsMinVersion],
			MaxVersion: tls.AllTLSVersions[*tlsMaxVersion],
		},

		// Actual listener pointers will be populated in appMain. We populate the
		// raw strings here so that they are available in appMain
		ListenHTTPStrings:    listenHTTP,
		ListenHTTPSStrings:   listenHTTPS,
		ListenProxyStrings:   listenProxy,
		ListenProxyV2Strings: listenProxyV2,
		Listeners:            Listeners{},
	}

	var err error

	// Populating remaining General settings
	for _, file := range []struct {
		contents *[]byte
		path     string
	}{
		{&config.General.RootCertificate, *rootCert},
		{&config.General.RootKey, *rootKey},
	} {
		if file.path != "" {
			if *file.contents, err = ioutil.ReadFile(file.path); err != nil {
				return nil, err
			}
		}
	}

	if err = setAPISecretKey(*inventoryAPISecretKey, config); err != nil {
		return nil, err
	}

	customHeaders, err := customheaders.ParseHeaderString(header.Split())
	if err != nil {
		return nil, fmt.Errorf("unable to parse header string: %w", err)
	}
	config.General.CustomHeaders = customHeaders

	if !config.General.ShowVersion {
		if err := Validate(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// LogConfig logs the loaded configuration on daemon start
func LogConfig(config *Config) {
	log.WithFields(log.Fields{
		"api-secret-key":                *inventoryAPISecretKey,
		"default-attribute":             config.Store.DefaultAttribute,
		"default-bag":                   config.Store.DefaultBag,
		"default-config-filename":       flag.DefaultConfigFlagname,
		"disable-cross-origin-requests": *disableCrossOriginRequests,
		"insecure-ciphers":              config.General.InsecureCiphers,
		"inventory-server":              logging.CleanURL(config.Inventory.Server),
		"listen-http":                   listenHTTP.String(),
		"listen-https":                  listenHTTPS.String(),
		"listen-proxy":                  listenProxy.String(),
		"listen-proxyv2":                listenProxyV2.String(),
		"log-format":                    *logFormat,
		"max-conns":                     config.General.MaxConns,
		"max-uri-length":                config.General.MaxURILength,
		"metrics-address":               *metricsAddress,
		"propagate-correlation-id":      *propagateCorrelationID,
		"rate-limit-source-ip":          config.RateLimit.SourceIPLimitPerSecond,
		"rate-limit-source-ip-burst":    config.RateLimit.SourceIPBurst,
		"root-cert":                     *rootCert,
		"root-key":                      *rootKey,
		"status-path":                   config.General.StatusPath,
		"tls-min-version":               *tlsMinVersion,
		"tls-max-version":               *tlsMaxVersion,
		"use-http-2":                    config.General.HTTP2,
		"whitelist-cache-cleanup":       config.Store.Cache.CacheCleanupInterval,
		"whitelist-cache-expiry":        config.Store.Cache.CacheExpiry,
		"whitelist-cache-negative":      config.Store.Cache.NegativeCaching,
		"whitelist-file":                config.Store.File,
		"whitelist-retrieval-interval":  config.Store.Cache.MaxRetrievalInterval,
		"whitelist-retrieval-retries":   config.Store.Cache.MaxRetrievalRetries,
		"whitelist-retrieval-timeout":   config.Store.Cache.RetrievalTimeout,
		"whitelist-source":              config.Store.Source,
	}).Debug("Start daemon with configuration")
}

// LoadConfig parses configuration settings passed as command line arguments or
// via config file, and populates a Config object with those values
func LoadConfig() (*Config, error) {
	initFlags()

	return loadConfig()
}
