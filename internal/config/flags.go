package config

import (
	"time"

	"github.com/namsral/flag"

	"gitlab.com/fleetops/whitelistd/internal/config/tls"
)

var (
	rootCert = flag.String("root-cert", "", "The default path to the file certificate used to serve API requests over TLS")
	rootKey  = flag.String("root-key", "", "The default path to the file private key used to serve API requests over TLS")
	useHTTP2 = flag.Bool("use-http2", true, "Enable HTTP2 support")

	// HTTP rate limits
	rateLimitSourceIP      = flag.Float64("rate-limit-source-ip", 0.0, "Rate limit HTTP requests per second from a single IP, 0 means is disabled")
	rateLimitSourceIPBurst = flag.Int("rate-limit-source-ip-burst", 100, "Rate limit HTTP requests from a single IP, maximum burst allowed per second")

	statusPath             = flag.String("status-path", "/-/status", "The url path for a status page, e.g., /-/status")
	metricsAddress         = flag.String("metrics-address", "", "The address to listen on for metrics requests")
	sentryDSN              = flag.String("sentry-dsn", "", "The address for sending sentry crash reporting to")
	sentryEnvironment      = flag.String("sentry-environment", "", "The environment for sentry crash reporting")
	propagateCorrelationID = flag.Bool("propagate-correlation-id", true, "Reuse existing Correlation-ID from the incoming request header `X-Request-ID` if present")
	logFormat              = flag.String("log-format", "json", "The log output format: 'text' or 'json'")
	logVerbose             = flag.Bool("log-verbose", false, "Verbose logging")

	inventoryServer            = flag.String("inventory-server", "", "Inventory server used for data bag and node API requests, for example https://inventory.example.internal")
	inventoryAPISecretKey      = flag.String("api-secret-key", "", "File with secret key used to authenticate with the inventory API")
	inventoryClientHTTPTimeout = flag.Duration("inventory-client-http-timeout", 10*time.Second, "Inventory API HTTP client connection timeout in seconds (default: 10s)")
	inventoryClientJWTExpiry   = flag.Duration("inventory-client-jwt-expiry", 30*time.Second, "JWT Token expiry time in seconds (default: 30s)")

	whitelistSource            = flag.String("whitelist-source", "inventory", "Where to read whitelist data bags and nodes from: 'inventory' or 'disk'")
	whitelistFile              = flag.String("whitelist-file", "", "YAML file with data bags and nodes, used when whitelist-source is 'disk'")
	defaultBag                 = flag.String("default-bag", "whitelist", "The data bag holding whitelist items when a check does not name one")
	defaultAttribute           = flag.String("default-attribute", "patterns", "The item attribute holding host patterns when a check does not name one")
	whitelistCacheExpiry       = flag.Duration("whitelist-cache-expiry", 0, "The maximum time a whitelist item or node is stored in the cache, 0 means cached answers never expire")
	whitelistCacheCleanup      = flag.Duration("whitelist-cache-cleanup", time.Minute, "The interval at which expired items are removed from the cache")
	whitelistCacheNegative     = flag.Bool("whitelist-cache-negative", true, "Keep failed whitelist lookups in the cache, repeated checks return the cached failure instead of re-fetching")
	whitelistRetrievalTimeout  = flag.Duration("whitelist-retrieval-timeout", 30*time.Second, "The maximum time to wait for a response from the inventory API per request")
	whitelistRetrievalInterval = flag.Duration("whitelist-retrieval-interval", time.Second, "The interval to wait before retrying to fetch a whitelist item via the inventory API")
	whitelistRetrievalRetries  = flag.Int("whitelist-retrieval-retries", 3, "The maximum number of times to retry to fetch a whitelist item via the API")

	maxConns        = flag.Int("max-conns", 0, "Limit on the number of concurrent connections to the HTTP, HTTPS or proxy listeners, 0 for no limit")
	maxURILength    = flag.Int("max-uri-length", 1024, "Limit the length of URI, 0 for unlimited.")
	insecureCiphers = flag.Bool("insecure-ciphers", false, "Use default list of cipher suites, may contain insecure ones like 3DES and RC4")
	tlsMinVersion   = flag.String("tls-min-version", "tls1.2", tls.FlagUsage("min"))
	tlsMaxVersion   = flag.String("tls-max-version", "", tls.FlagUsage("max"))

	// HTTP server timeouts
	serverShutdownTimeout   = flag.Duration("server-shutdown-timeout", 30*time.Second, "Server shutdown timeout (default: 30s)")
	serverReadTimeout       = flag.Duration("server-read-timeout", 5*time.Second, "ReadTimeout is the maximum duration for reading the entire request, including the body. A zero or negative value means there will be no timeout.")
	serverReadHeaderTimeout = flag.Duration("server-read-header-timeout", time.Second, "ReadHeaderTimeout is the amount of time allowed to read request headers. A zero or negative value means there will be no timeout.")
	serverWriteTimeout      = flag.Duration("server-write-timeout", 0, "WriteTimeout is the maximum duration before timing out writes of the response. A zero or negative value means there will be no timeout.")
	serverKeepAlive         = flag.Duration("server-keep-alive", 15*time.Second, "KeepAlive specifies the keep-alive period for network connections accepted by this listener. If zero, keep-alives are enabled if supported by the protocol and operating system. If negative, keep-alives are disabled.")

	disableCrossOriginRequests = flag.Bool("disable-cross-origin-requests", false, "Disable cross-origin requests")

	showVersion = flag.Bool("version", false, "Show version")

	// See initFlags()
	listenHTTP    = MultiStringFlag{separator: ","}
	listenHTTPS   = MultiStringFlag{separator: ","}
	listenProxy   = MultiStringFlag{separator: ","}
	listenProxyV2 = MultiStringFlag{separator: ","}

	header = MultiStringFlag{separator: ";;"}
)

// initFlags will be called from LoadConfig
func initFlags() {
	flag.Var(&listenHTTP, "listen-http", "The address(es) or unix socket paths to listen on for HTTP requests")
	flag.Var(&listenHTTPS, "listen-https", "The address(es) or unix socket paths to listen on for HTTPS requests")
	flag.Var(&listenProxy, "listen-proxy", "The address(es) or unix socket paths to listen on for proxy requests")
	flag.Var(&listenProxyV2, "listen-proxyv2", "The address(es) or unix socket paths to listen on for HTTPS PROXY v2 protocol requests")
	flag.Var(&header, "header", "The additional http header(s) that should be send to the client")

	// read from -config=/path/to/whitelistd-config
	flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	flag.Parse()
}
