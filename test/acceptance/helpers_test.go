package acceptance_test

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pires/go-proxyproto"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"gitlab.com/fleetops/whitelistd/internal/fixture"
	"gitlab.com/fleetops/whitelistd/internal/request"
	"gitlab.com/fleetops/whitelistd/test/storestub"
)

var (
	// The HTTPS certificate isn't signed by anyone. This http client is set up
	// so it can talk to servers using it.
	TestHTTPSClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: TestCertPool},
		},
	}

	// Use a very short timeout to repeatedly check for the server to be up.
	QuickTimeoutHTTPSClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig:       &tls.Config{RootCAs: TestCertPool},
			ResponseHeaderTimeout: 100 * time.Millisecond,
		},
	}

	TestProxyv2Client = &http.Client{
		Transport: &http.Transport{
			DialContext:     Proxyv2DialContext,
			TLSClientConfig: &tls.Config{RootCAs: TestCertPool},
		},
	}

	QuickTimeoutProxyv2Client = &http.Client{
		Transport: &http.Transport{
			DialContext:           Proxyv2DialContext,
			TLSClientConfig:       &tls.Config{RootCAs: TestCertPool},
			ResponseHeaderTimeout: 100 * time.Millisecond,
		},
	}

	TestCertPool = x509.NewCertPool()

	// Proxyv2DialContext writes a dummy PROXY v2 header with src
	// 10.1.1.1:1000 and dst 20.2.2.2:2000 before handing the
	// connection over
	Proxyv2DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		var d net.Dialer

		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		header := &proxyproto.Header{
			Version:           2,
			Command:           proxyproto.PROXY,
			TransportProtocol: proxyproto.TCPv4,
			SourceAddr: &net.TCPAddr{
				IP:   net.ParseIP("10.1.1.1"),
				Port: 1000,
			},
			DestinationAddr: &net.TCPAddr{
				IP:   net.ParseIP("20.2.2.2"),
				Port: 2000,
			},
		}

		_, err = header.WriteTo(conn)

		return conn, err
	}
)

type tWriter struct {
	t *testing.T
}

func (t *tWriter) Write(b []byte) (int, error) {
	t.t.Log(string(bytes.TrimRight(b, "\r\n")))

	return len(b), nil
}

// LogCaptureBuffer is a goroutine safe buffer holding the daemon output
type LogCaptureBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (b *LogCaptureBuffer) Read(p []byte) (n int, err error) {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.Read(p)
}

func (b *LogCaptureBuffer) Write(p []byte) (n int, err error) {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.Write(p)
}

func (b *LogCaptureBuffer) String() string {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.String()
}

// ListenSpec is used to point at a running whitelistd listener, preserving
// the type of port it is (http, https, proxy, proxyv2)
type ListenSpec struct {
	Type string
	Host string
	Port string
}

func supportedListeners() []ListenSpec {
	if !nettest.SupportsIPv6() {
		return ipv4Listeners
	}

	return listeners
}

func (l ListenSpec) URL(suffix string) string {
	scheme := request.SchemeHTTP
	if l.Type == request.SchemeHTTPS || l.Type == "proxyv2" {
		scheme = request.SchemeHTTPS
	}

	suffix = strings.TrimPrefix(suffix, "/")

	return fmt.Sprintf("%s://%s/%s", scheme, l.JoinHostPort(), suffix)
}

func (l ListenSpec) JoinHostPort() string {
	return net.JoinHostPort(l.Host, l.Port)
}

func (l ListenSpec) Client() *http.Client {
	if l.Type == "proxyv2" {
		return TestProxyv2Client
	}

	return TestHTTPSClient
}

// WaitUntilRequestSucceeds returns only once this spec points at a working
// TCP server
func (l ListenSpec) WaitUntilRequestSucceeds(done chan struct{}) error {
	timeout := 5 * time.Second
	for start := time.Now(); time.Since(start) < timeout; {
		select {
		case <-done:
			return fmt.Errorf("server has shut down already")
		default:
		}

		req, err := http.NewRequest("GET", l.URL("/"), nil)
		if err != nil {
			return err
		}

		client := QuickTimeoutHTTPSClient
		if l.Type == "proxyv2" {
			client = QuickTimeoutProxyv2Client
		}

		response, err := client.Transport.RoundTrip(req)
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		response.Body.Close()

		if code := response.StatusCode; code >= 200 && code < 500 {
			return nil
		}

		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("timed out after %v waiting for listener %v", timeout, l)
}

// RunWhitelistdWithStubStore starts an inventory API stub plus a whitelistd
// process pointed at it, and returns a function that shuts both down again.
func RunWhitelistdWithStubStore(t *testing.T, listeners []ListenSpec, promPort string, extraArgs ...string) (*LogCaptureBuffer, func()) {
	t.Helper()

	key, err := base64.StdEncoding.DecodeString(fixture.APISecretKey)
	require.NoError(t, err)

	store := storestub.NewUnstartedServer(storestub.WithSecretKey(key))
	store.Start()

	args := append([]string{
		"-whitelist-source", "inventory",
		"-inventory-server", store.URL,
		"-api-secret-key", CreateAPISecretKeyFixtureFile(t),
		"-whitelist-retrieval-timeout", "500ms",
		"-whitelist-retrieval-interval", "10ms",
		"-whitelist-retrieval-retries", "1",
	}, extraArgs...)

	logBuf, cleanup := runWhitelistd(t, listeners, promPort, args...)

	return logBuf, func() {
		cleanup()
		store.Close()
	}
}

func runWhitelistd(t *testing.T, listeners []ListenSpec, promPort string, extraArgs ...string) (*LogCaptureBuffer, func()) {
	t.Helper()

	_, err := os.Stat(*whitelistdBinary)
	require.NoError(t, err)

	logBuf := &LogCaptureBuffer{}
	out := io.MultiWriter(&tWriter{t}, logBuf)

	args := getWhitelistdArgs(t, listeners, promPort, extraArgs)
	cmd := exec.Command(*whitelistdBinary, args...)
	cmd.Env = os.Environ()
	cmd.Stdout = out
	cmd.Stderr = out
	require.NoError(t, cmd.Start())
	t.Logf("Running %s %v", *whitelistdBinary, args)

	waitCh := make(chan struct{})
	go func() {
		cmd.Wait()
		close(waitCh)
	}()

	cleanup := func() {
		cmd.Process.Signal(os.Interrupt)
		<-waitCh
	}

	for _, spec := range listeners {
		if err := spec.WaitUntilRequestSucceeds(waitCh); err != nil {
			cleanup()
			t.Fatal(err)
		}
	}

	return logBuf, cleanup
}

func getWhitelistdArgs(t *testing.T, listeners []ListenSpec, promPort string, extraArgs []string) []string {
	t.Helper()

	args := []string{"-log-verbose=true"}

	var hasHTTPS bool

	for _, spec := range listeners {
		args = append(args, "-listen-"+spec.Type, spec.JoinHostPort())

		if spec.Type == request.SchemeHTTPS || spec.Type == "proxyv2" {
			hasHTTPS = true
		}
	}

	if hasHTTPS {
		key, cert := CreateHTTPSFixtureFiles(t)
		args = append(args, "-root-key", key, "-root-cert", cert)
	}

	if promPort != "" {
		args = append(args, "-metrics-address", promPort)
	}

	return append(args, extraArgs...)
}

// CreateHTTPSFixtureFiles writes the per-run HTTPS key pair into temporary
// files the daemon can load
func CreateHTTPSFixtureFiles(t *testing.T) (keyfile string, certfile string) {
	t.Helper()

	keyfile = writeTempFile(t, "whitelistd-https-key", httpsKey)
	certfile = writeTempFile(t, "whitelistd-https-cert", httpsCert)

	return keyfile, certfile
}

// CreateAPISecretKeyFixtureFile writes the base64 encoded API secret into a
// temporary file the daemon can load
func CreateAPISecretKeyFixtureFile(t *testing.T) string {
	t.Helper()

	return writeTempFile(t, "whitelistd-api-secret", []byte(fixture.APISecretKey))
}

func writeTempFile(t *testing.T, pattern string, content []byte) string {
	t.Helper()

	f, err := os.CreateTemp("", pattern)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(f.Name()) })

	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	return f.Name()
}

type memberReply struct {
	Whitelist string `json:"whitelist"`
	Host      string `json:"host"`
	Member    bool   `json:"member"`
	MatchedBy string `json:"matched_by"`
}

// getMember asks the running daemon whether host is a member of whitelist
func getMember(t *testing.T, spec ListenSpec, whitelist, host string) (memberReply, int) {
	t.Helper()

	url := spec.URL(fmt.Sprintf("/v1/whitelists/%s/member?host=%s", whitelist, host))

	resp, err := spec.Client().Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply memberReply
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	}

	return reply, resp.StatusCode
}
