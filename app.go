package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	ghandlers "github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"gitlab.com/gitlab-org/labkit/monitoring"

	cfg "gitlab.com/fleetops/whitelistd/internal/config"
	tlsconfig "gitlab.com/fleetops/whitelistd/internal/config/tls"
	"gitlab.com/fleetops/whitelistd/internal/customheaders"
	"gitlab.com/fleetops/whitelistd/internal/errortracking"
	"gitlab.com/fleetops/whitelistd/internal/handlers"
	"gitlab.com/fleetops/whitelistd/internal/healthcheck"
	"gitlab.com/fleetops/whitelistd/internal/logging"
	"gitlab.com/fleetops/whitelistd/internal/netutil"
	"gitlab.com/fleetops/whitelistd/internal/ratelimiter"
	"gitlab.com/fleetops/whitelistd/internal/rejectmethods"
	"gitlab.com/fleetops/whitelistd/internal/request"
	"gitlab.com/fleetops/whitelistd/internal/source"
	"gitlab.com/fleetops/whitelistd/internal/urilimiter"
	"gitlab.com/fleetops/whitelistd/metrics"
)

type theApp struct {
	config   *cfg.Config
	source   source.Source
	Handlers *handlers.Handlers

	handler http.Handler

	mu      sync.Mutex
	servers []*http.Server
}

func newApp(config *cfg.Config, src source.Source) (*theApp, error) {
	a := &theApp{
		config:   config,
		source:   src,
		Handlers: handlers.New(config, src),
	}

	handler, err := a.buildHandlerPipeline()
	if err != nil {
		return nil, fmt.Errorf("building the handler pipeline: %w", err)
	}
	a.handler = handler

	return a, nil
}

// setRequestScheme will update r.URL.Scheme if empty based on r.TLS
func setRequestScheme(r *http.Request) *http.Request {
	if r.URL.Scheme == request.SchemeHTTPS || r.TLS != nil {
		// make sure is set for non-proxy requests
		r.URL.Scheme = request.SchemeHTTPS
	} else {
		r.URL.Scheme = request.SchemeHTTP
	}

	return r
}

func (a *theApp) ServeHTTP(ww http.ResponseWriter, r *http.Request) {
	r = setRequestScheme(r)

	a.handler.ServeHTTP(ww, r)
}

// proxyHandler trusts the forwarding headers set by the upstream load
// balancer on top of the regular pipeline
func (a *theApp) proxyHandler() http.Handler {
	return ghandlers.ProxyHeaders(http.HandlerFunc(a.ServeHTTP))
}

func (a *theApp) buildHandlerPipeline() (http.Handler, error) {
	handler := http.Handler(a.Handlers.Router())

	handler = rejectmethods.NewMiddleware(handler)
	handler = urilimiter.NewMiddleware(handler, a.config.General.MaxURILength)

	if a.config.RateLimit.SourceIPLimitPerSecond > 0 {
		rl := ratelimiter.New(
			ratelimiter.WithSourceIPLimitPerSecond(a.config.RateLimit.SourceIPLimitPerSecond),
			ratelimiter.WithSourceIPBurstSize(a.config.RateLimit.SourceIPBurst),
			ratelimiter.WithProxied(a.config.ListenProxyStrings.Len() > 0),
		)

		handler = rl.SourceIPLimiter(handler)
	}

	// the status check stays reachable when the rate limiter is throttling
	handler = healthcheck.NewMiddleware(handler, a.source, a.config.General.StatusPath)
	handler = customheaders.NewMiddleware(handler, a.config.General.CustomHeaders)
	handler = handlers.CorsHandler(a.config, handler)

	handler, err := logging.BasicAccessLogger(handler, a.config.Log.Format, nil)
	if err != nil {
		return nil, err
	}

	// correlation outermost so that every log line and capture carries the ID
	correlationOpts := []correlation.InboundHandlerOption{
		correlation.WithSetResponseHeader(),
	}
	if a.config.General.PropagateCorrelationID {
		correlationOpts = append(correlationOpts, correlation.WithPropagation())
	}
	handler = correlation.InjectCorrelationID(handler, correlationOpts...)

	return handler, nil
}

func (a *theApp) Run() {
	var wg sync.WaitGroup

	var limiter *netutil.Limiter
	if a.config.General.MaxConns > 0 {
		limiter = netutil.NewLimiterWithMetrics(
			a.config.General.MaxConns,
			metrics.LimitListenerMaxConns,
			metrics.LimitListenerConcurrentConns,
			metrics.LimitListenerWaitingConns,
		)
	}

	// Listen for HTTP
	for _, fd := range a.config.Listeners.HTTP {
		a.listen(&wg, listenerConfig{
			fd:      fd,
			handler: http.HandlerFunc(a.ServeHTTP),
			limiter: limiter,
		})
	}

	// Listen for HTTPS
	for _, fd := range a.config.Listeners.HTTPS {
		tlsConfig, err := a.TLSConfig()
		if err != nil {
			capturingFatal(err, errortracking.WithField("listener", "https"))
		}

		a.listen(&wg, listenerConfig{
			fd:        fd,
			handler:   http.HandlerFunc(a.ServeHTTP),
			tlsConfig: tlsConfig,
			limiter:   limiter,
		})
	}

	// Listen for HTTP proxy requests
	for _, fd := range a.config.Listeners.Proxy {
		a.listen(&wg, listenerConfig{
			fd:      fd,
			handler: a.proxyHandler(),
			limiter: limiter,
		})
	}

	// Listen for HTTPS PROXY v2 requests
	for _, fd := range a.config.Listeners.ProxyV2 {
		tlsConfig, err := a.TLSConfig()
		if err != nil {
			capturingFatal(err, errortracking.WithField("listener", "proxyv2"))
		}

		a.listen(&wg, listenerConfig{
			fd:        fd,
			handler:   http.HandlerFunc(a.ServeHTTP),
			isProxyV2: true,
			tlsConfig: tlsConfig,
			limiter:   limiter,
		})
	}

	// Serve metrics for Prometheus
	if a.config.ListenMetrics != 0 {
		go a.serveMetrics(a.config.ListenMetrics)
	}

	a.awaitShutdown()

	wg.Wait()
}

func (a *theApp) serveMetrics(fd uintptr) {
	l, err := net.FileListener(os.NewFile(fd, "[socket]"))
	if err != nil {
		capturingFatal(fmt.Errorf("failed to listen on FD %d: %w", fd, err), errortracking.WithField("listener", "metrics"))
	}

	monitoringOpts := []monitoring.Option{
		monitoring.WithBuildInformation(VERSION, ""),
		monitoring.WithListener(l),
	}

	if err := monitoring.Start(monitoringOpts...); err != nil {
		capturingFatal(err, errortracking.WithField("listener", "metrics"))
	}
}

func (a *theApp) listen(wg *sync.WaitGroup, config listenerConfig) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := a.listenAndServe(config); err != nil {
			capturingFatal(err, errortracking.WithField("fd", fmt.Sprintf("%d", config.fd)))
		}
	}()
}

func (a *theApp) addServer(server *http.Server) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.servers = append(a.servers, server)
}

// awaitShutdown blocks until the daemon is told to terminate, then drains
// the listeners for up to the configured shutdown timeout
func (a *theApp) awaitShutdown() {
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint

	log.Info("Shutting down whitelistd")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	var swg sync.WaitGroup
	for _, server := range a.servers {
		swg.Add(1)
		go func(server *http.Server) {
			defer swg.Done()

			if err := server.Shutdown(ctx); err != nil {
				log.WithError(err).Error("shutting down server")
			}
		}(server)
	}
	swg.Wait()
}

func (a *theApp) TLSConfig() (*tls.Config, error) {
	return tlsconfig.Create(
		a.config.General.RootCertificate,
		a.config.General.RootKey,
		a.config.General.InsecureCiphers,
		a.config.TLS.MinVersion,
		a.config.TLS.MaxVersion,
	)
}

func runApp(config *cfg.Config) {
	src, err := source.NewSource(config)
	if err != nil {
		fatal(err, "could not create whitelist source")
	}

	a, err := newApp(config, src)
	if err != nil {
		fatal(err, "could not configure whitelistd")
	}

	if config.Store.Source == cfg.SourceDisk {
		watchForSignals(src)
	}

	a.Run()
}

// watchForSignals reloads the disk source on SIGHUP so whitelist edits do
// not need a daemon restart
func watchForSignals(src source.Source) {
	reloader, ok := src.(source.Reloader)
	if !ok {
		return
	}

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)

	go func() {
		for range sighup {
			log.Info("Reloading whitelist file")

			if err := reloader.Reload(); err != nil {
				log.WithError(err).Error("Failed to reload the whitelist file")
			}
		}
	}()
}
