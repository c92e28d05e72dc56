package main

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/errortracking"

	"gitlab.com/fleetops/whitelistd/internal/boring"
	cfg "gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/logging"
	"gitlab.com/fleetops/whitelistd/internal/validateargs"
)

// VERSION stores the information about the semantic version of application
var VERSION = "dev"

// REVISION stores the information about the git revision of application
var REVISION = "HEAD"

func initErrorReporting(sentryDSN, sentryEnvironment string) error {
	return errortracking.Initialize(
		errortracking.WithSentryDSN(sentryDSN),
		errortracking.WithVersion(fmt.Sprintf("%s-%s", VERSION, REVISION)),
		errortracking.WithLoggerName("whitelistd"),
		errortracking.WithSentryEnvironment(sentryEnvironment))
}

func appMain() {
	if err := validateargs.NotAllowed(os.Args[1:]); err != nil {
		log.WithError(err).Fatal("Using invalid arguments, use -config=whitelistd-config file instead")
	}

	if err := validateargs.Deprecated(os.Args[1:]); err != nil {
		log.WithError(err).Warn("Using deprecated arguments")
	}

	config, err := cfg.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	printVersion(config.General.ShowVersion, VERSION)

	if err := logging.ConfigureLogging(config.Log.Format, config.Log.Verbose); err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}

	log.WithFields(log.Fields{
		"version":  VERSION,
		"revision": REVISION,
	}).Info("Whitelistd Daemon")
	log.Info("URL: https://gitlab.com/fleetops/whitelistd")

	boring.CheckBoring()

	if config.Sentry.DSN != "" {
		if err := initErrorReporting(config.Sentry.DSN, config.Sentry.Environment); err != nil {
			log.WithError(err).Warn("Failed to initialize errortracking")
		}
	}

	cfg.LogConfig(config)

	for _, cs := range [][]io.Closer{
		createAppListeners(config),
		createMetricsListener(config),
	} {
		defer closeAll(cs)
	}

	runApp(config)
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		c.Close()
	}
}

// createAppListeners returns net.Listener and *os.File instances. The
// caller must ensure they don't get closed or garbage-collected (which
// implies closing) too soon.
func createAppListeners(config *cfg.Config) []io.Closer {
	var closers []io.Closer

	for _, addr := range config.ListenHTTPStrings.Split() {
		l, f := createSocket(addr)
		closers = append(closers, l, f)

		log.WithFields(log.Fields{
			"listener": addr,
		}).Debug("Set up HTTP listener")

		config.Listeners.HTTP = append(config.Listeners.HTTP, f.Fd())
	}

	for _, addr := range config.ListenHTTPSStrings.Split() {
		l, f := createSocket(addr)
		closers = append(closers, l, f)

		log.WithFields(log.Fields{
			"listener": addr,
		}).Debug("Set up HTTPS listener")

		config.Listeners.HTTPS = append(config.Listeners.HTTPS, f.Fd())
	}

	for _, addr := range config.ListenProxyStrings.Split() {
		l, f := createSocket(addr)
		closers = append(closers, l, f)

		log.WithFields(log.Fields{
			"listener": addr,
		}).Debug("Set up proxy listener")

		config.Listeners.Proxy = append(config.Listeners.Proxy, f.Fd())
	}

	for _, addr := range config.ListenProxyV2Strings.Split() {
		l, f := createSocket(addr)
		closers = append(closers, l, f)

		log.WithFields(log.Fields{
			"listener": addr,
		}).Debug("Set up proxyv2 listener")

		config.Listeners.ProxyV2 = append(config.Listeners.ProxyV2, f.Fd())
	}

	return closers
}

// createMetricsListener returns net.Listener and *os.File instances. The
// caller must ensure they don't get closed or garbage-collected (which
// implies closing) too soon.
func createMetricsListener(config *cfg.Config) []io.Closer {
	addr := config.General.MetricsAddress
	if addr == "" {
		return nil
	}

	l, f := createSocket(addr)
	config.ListenMetrics = f.Fd()

	log.WithFields(log.Fields{
		"listener": addr,
	}).Debug("Set up metrics listener")

	return []io.Closer{l, f}
}

func createSocket(addr string) (net.Listener, *os.File) {
	if strings.HasPrefix(addr, "unix:") {
		return createUnixSocket(strings.TrimPrefix(addr, "unix:"))
	}

	return createTCPSocket(addr)
}

func createTCPSocket(addr string) (net.Listener, *os.File) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(err, "could not create TCP listener")
	}

	f, err := l.(*net.TCPListener).File()
	if err != nil {
		fatal(err, "could not get file for TCP listener")
	}

	return l, f
}

func createUnixSocket(addr string) (net.Listener, *os.File) {
	if err := os.Remove(addr); err != nil && !os.IsNotExist(err) {
		fatal(err, "could not remove existing socket")
	}

	l, err := net.Listen("unix", addr)
	if err != nil {
		fatal(err, "could not create Unix socket listener")
	}

	f, err := l.(*net.UnixListener).File()
	if err != nil {
		fatal(err, "could not get file for Unix socket listener")
	}

	return l, f
}

func printVersion(showVersion bool, version string) {
	if showVersion {
		fmt.Fprintf(os.Stdout, "%s\n", version)
		os.Exit(0)
	}
}

func main() {
	log.SetOutput(os.Stderr)

	rand.Seed(time.Now().UnixNano())

	appMain()
}
