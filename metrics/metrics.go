package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MembershipChecks counts whitelist membership decisions, partitioned by
	// the boolean result and what produced it (pattern, role or nothing)
	MembershipChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whitelistd_membership_checks_total",
		Help: "The total number of whitelist membership checks",
	}, []string{"result", "matched_by"})

	// SourceCacheHit is the number of source lookups served from the cache
	SourceCacheHit = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whitelistd_source_cache_hit",
		Help: "The number of source lookup cache hits",
	}, []string{"kind"})

	// SourceCacheMiss is the number of source lookups that had to be retrieved
	SourceCacheMiss = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whitelistd_source_cache_miss",
		Help: "The number of source lookup cache misses",
	}, []string{"kind"})

	// SourceDegraded counts lookups degraded to an empty record
	SourceDegraded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whitelistd_source_degraded_total",
		Help: "The number of whitelist lookups degraded to an empty record, by reason",
	}, []string{"reason"})

	// SourceAPIReqTotal is the number of requests made to the inventory API
	SourceAPIReqTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whitelistd_source_api_requests_total",
		Help: "The number of inventory API requests",
	}, []string{"status_code"})

	// SourceAPICallDuration is the time it takes to get a response from the
	// inventory API
	SourceAPICallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "whitelistd_source_api_call_duration",
		Help:    "The time (in seconds) it takes to get a response from the inventory API",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"status_code"})

	// SourceAPITraceDuration requests breakdown by stage of the HTTP request
	SourceAPITraceDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "whitelistd_source_api_trace_duration",
		Help:    "The time (in seconds) taken by each stage of an inventory API request",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"request_stage"})

	// PatternCachedEntries is the number of compiled patterns held in the LRU
	PatternCachedEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "whitelistd_pattern_cache_entries",
		Help: "The number of compiled glob patterns in the cache",
	}, []string{"op"})

	// PatternCacheRequests is the number of compiled-pattern cache requests
	PatternCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whitelistd_pattern_cache_requests",
		Help: "The number of requests to the compiled glob pattern cache, by result",
	}, []string{"op", "cache"})

	// RateLimitSourceIPCachedEntries is the number of source IP entries in the
	// rate limiter LRU
	RateLimitSourceIPCachedEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "whitelistd_rate_limit_source_ip_cached_entries",
		Help: "The number of source IP entries in the rate limiter cache",
	}, []string{"op"})

	// RateLimitSourceIPCacheRequests is the number of rate limiter LRU requests
	RateLimitSourceIPCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whitelistd_rate_limit_source_ip_cache_requests",
		Help: "The number of requests to the rate limiter cache, by result",
	}, []string{"op", "cache"})

	// RateLimitSourceIPBlockedCount is the number of requests throttled by the
	// source IP rate limiter
	RateLimitSourceIPBlockedCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "whitelistd_rate_limit_source_ip_blocked_count",
		Help: "The number of requests from a source IP that have been blocked by the rate limiter",
	}, []string{"enforced"})

	// RejectedRequestsCount is the number of requests with rejected HTTP methods
	RejectedRequestsCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "whitelistd_unknown_method_rejections_total",
		Help: "The number of requests with rejected HTTP methods",
	})

	// LimitListenerMaxConns is the maximum number of connections the
	// listeners accept together
	LimitListenerMaxConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "whitelistd_limit_listener_max_conns",
		Help: "The maximum number of connections allowed by the limit listener",
	})

	// LimitListenerConcurrentConns is the number of connections currently held
	LimitListenerConcurrentConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "whitelistd_limit_listener_concurrent_conns",
		Help: "The number of concurrent connections in the limit listener",
	})

	// LimitListenerWaitingConns is the number of connections waiting for a slot
	LimitListenerWaitingConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "whitelistd_limit_listener_waiting_conns",
		Help: "The number of connections waiting on the limit listener",
	})
)

func init() {
	prometheus.MustRegister(MembershipChecks)
	prometheus.MustRegister(SourceCacheHit)
	prometheus.MustRegister(SourceCacheMiss)
	prometheus.MustRegister(SourceDegraded)
	prometheus.MustRegister(SourceAPIReqTotal)
	prometheus.MustRegister(SourceAPICallDuration)
	prometheus.MustRegister(SourceAPITraceDuration)
	prometheus.MustRegister(PatternCachedEntries)
	prometheus.MustRegister(PatternCacheRequests)
	prometheus.MustRegister(RateLimitSourceIPCachedEntries)
	prometheus.MustRegister(RateLimitSourceIPCacheRequests)
	prometheus.MustRegister(RateLimitSourceIPBlockedCount)
	prometheus.MustRegister(RejectedRequestsCount)
	prometheus.MustRegister(LimitListenerMaxConns)
	prometheus.MustRegister(LimitListenerConcurrentConns)
	prometheus.MustRegister(LimitListenerWaitingConns)
}
