package metrics

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsVectorsCanBeScraped(t *testing.T) {
	reg := prometheus.NewRegistry()

	// vectors only show up in /metrics once a label has been set, so they
	// cannot be asserted on a freshly started process
	reg.MustRegister(
		MembershipChecks,
		SourceAPIReqTotal,
		SourceAPICallDuration,
		SourceDegraded,
	)

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	testServer := httptest.NewServer(handler)
	defer testServer.Close()

	MembershipChecks.WithLabelValues("member", "pattern").Inc()
	SourceAPIReqTotal.WithLabelValues("200").Inc()
	SourceAPICallDuration.WithLabelValues("200").Observe(0.02)
	SourceDegraded.WithLabelValues("fetch_failure").Inc()

	c, err := MembershipChecks.GetMetricWithLabelValues("member", "pattern")
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(c))

	c, err = SourceAPIReqTotal.GetMetricWithLabelValues("200")
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(c))

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, metricFamilies, 4)

	res, err := http.Get(testServer.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := ioutil.ReadAll(res.Body)

	require.Contains(t, string(body), `whitelistd_membership_checks_total{matched_by="pattern",result="member"}`)
	require.Contains(t, string(body), `whitelistd_source_api_requests_total{status_code="200"}`)
	require.Contains(t, string(body), `whitelistd_source_api_call_duration`)
	require.Contains(t, string(body), `whitelistd_source_degraded_total{reason="fetch_failure"}`)
}
