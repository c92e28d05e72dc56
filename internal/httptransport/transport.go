package httptransport

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"sync"
	"time"

	"gitlab.com/gitlab-org/labkit/log"
)

// DefaultTTFBTimeout is the timeout used in the meteredRoundTripper
// when calling http.Transport.RoundTrip. The request will be canceled
// if the response takes longer than this to arrive.
const DefaultTTFBTimeout = 15 * time.Second

var (
	sysPoolOnce    = &sync.Once{}
	sysPool        *x509.CertPool
	loadExtraCerts = func() {}

	// DefaultTransport is the transport shared by all clients talking to the
	// inventory API. TLS verification uses the system roots plus any
	// SSL_CERT_FILE and SSL_CERT_DIR overrides.
	DefaultTransport = newInternalTransport()

	// InternalTransport can be used with http.Client with TLS and certificates
	InternalTransport http.RoundTripper = DefaultTransport
)

func newInternalTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()

	t.TLSClientConfig = &tls.Config{
		RootCAs: pool(),
	}

	// overrides the DefaultMaxIdleConnsPerHost = 2
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 0

	t.IdleConnTimeout = 90 * time.Second
	t.TLSHandshakeTimeout = 10 * time.Second
	t.ResponseHeaderTimeout = 15 * time.Second
	t.ExpectContinueTimeout = 15 * time.Second

	return t
}

// This is here because macOS does not support the SSL_CERT_FILE and
// SSL_CERT_DIR environment variables. We have arranged things to read
// the extra certificates as late as possible to avoid conflicts with
// file descriptor passing at startup.
func pool() *x509.CertPool {
	sysPoolOnce.Do(loadPool)
	return sysPool
}

func loadPool() {
	var err error

	sysPool, err = x509.SystemCertPool()
	if err != nil {
		log.WithError(err).Error("failed to load system cert pool for http client")
		return
	}

	loadExtraCerts()
}
