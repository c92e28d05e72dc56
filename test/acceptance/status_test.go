package acceptance_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusPage(t *testing.T) {
	_, teardown := RunWhitelistdWithStubStore(t, supportedListeners(), "")
	defer teardown()

	for _, spec := range supportedListeners() {
		t.Run(spec.Type+"_"+spec.JoinHostPort(), func(t *testing.T) {
			waitUntilReady(t, spec)

			resp, err := spec.Client().Get(spec.URL("/-/status"))
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestStatusNotYetReady(t *testing.T) {
	// no stub store, the daemon can never reach the inventory API
	_, teardown := runWhitelistd(t, []ListenSpec{httpListener}, "",
		"-whitelist-source", "inventory",
		"-inventory-server", "http://127.0.0.1:1",
		"-api-secret-key", CreateAPISecretKeyFixtureFile(t),
		"-whitelist-retrieval-timeout", "50ms",
		"-whitelist-retrieval-interval", "10ms",
		"-whitelist-retrieval-retries", "1",
	)
	defer teardown()

	resp, err := httpListener.Client().Get(httpListener.URL("/-/status"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCustomStatusPath(t *testing.T) {
	_, teardown := RunWhitelistdWithStubStore(t, []ListenSpec{httpListener}, "", "-status-path", "/@statuscheck")
	defer teardown()

	waitUntilReadyAt(t, httpListener, "/@statuscheck")
}

// waitUntilReady waits for the daemon's status check to turn green. It is
// not immediate: readiness follows the startup poll of the inventory
// status API.
func waitUntilReady(t *testing.T, spec ListenSpec) {
	t.Helper()

	waitUntilReadyAt(t, spec, "/-/status")
}

func waitUntilReadyAt(t *testing.T, spec ListenSpec, statusPath string) {
	t.Helper()

	require.Eventually(t, func() bool {
		resp, err := spec.Client().Get(spec.URL(statusPath))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 100*time.Millisecond, "listener %v never became ready", spec)
}
