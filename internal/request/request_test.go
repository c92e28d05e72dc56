package request

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsHTTPS(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)

	r.URL.Scheme = SchemeHTTPS
	require.True(t, IsHTTPS(r))

	r.URL.Scheme = SchemeHTTP
	require.False(t, IsHTTPS(r))
}

func TestGetHostWithoutPort(t *testing.T) {
	r, err := http.NewRequest("GET", "http://host.example.com:8080/", nil)
	require.NoError(t, err)

	require.Equal(t, "host.example.com", GetHostWithoutPort(r))
}

func TestGetRemoteAddrWithoutPort(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		expected   string
	}{
		{
			name:       "with port",
			remoteAddr: "192.168.1.1:35000",
			expected:   "192.168.1.1",
		},
		{
			name:       "without port",
			remoteAddr: "192.168.1.1",
			expected:   "192.168.1.1",
		},
		{
			name:       "ipv6 with port",
			remoteAddr: "[2001:db8::1]:35000",
			expected:   "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := http.NewRequest("GET", "/", nil)
			require.NoError(t, err)
			r.RemoteAddr = tt.remoteAddr

			require.Equal(t, tt.expected, GetRemoteAddrWithoutPort(r))
		})
	}
}
