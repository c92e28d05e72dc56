package logging

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gitlab-org/labkit/log"

	"gitlab.com/fleetops/whitelistd/internal/request"
)

func TestEnrichExtraFields(t *testing.T) {
	tests := []struct {
		name        string
		scheme      string
		host        string
		extraFields log.ExtraFieldsGeneratorFunc
	}{
		{
			name:   "https",
			scheme: request.SchemeHTTPS,
			host:   "whitelistd.example.com",
		},
		{
			name:   "http",
			scheme: request.SchemeHTTP,
			host:   "whitelistd.example.com",
		},
		{
			name:   "extra_generator",
			scheme: request.SchemeHTTP,
			host:   "whitelistd.example.com",
			extraFields: func(r *http.Request) log.Fields {
				return log.Fields{"whitelist": "batch-jobs"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("GET", "/", nil)
			require.NoError(t, err)

			req.URL.Scheme = tt.scheme
			req.Host = tt.host

			got := enrichExtraFields(tt.extraFields)(req)
			require.Equal(t, tt.scheme == request.SchemeHTTPS, got["https"])
			require.Equal(t, tt.host, got["host"])
			require.Contains(t, got, "correlation_id")

			if tt.extraFields != nil {
				require.Equal(t, "batch-jobs", got["whitelist"])
			}
		})
	}
}
