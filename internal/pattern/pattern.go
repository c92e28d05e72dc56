// Package pattern matches fully qualified domain names against the host
// patterns stored in whitelist items.
package pattern

import (
	"time"

	"github.com/gobwas/glob"
	log "github.com/sirupsen/logrus"

	"gitlab.com/fleetops/whitelistd/internal/lru"
	"gitlab.com/fleetops/whitelistd/metrics"
)

const (
	// compiled globs are immutable, entries only leave the cache when the
	// whitelists churn through more distinct patterns than this
	defaultCompiledItems              = 10000
	defaultCompiledExpirationInterval = time.Hour
)

// Matcher compiles host patterns and reports which one matches a FQDN.
// Compiled patterns are kept in an LRU cache shared across checks.
type Matcher struct {
	cache *lru.Cache
}

// New creates a Matcher with the default compiled pattern cache
func New() *Matcher {
	return &Matcher{
		cache: lru.New(
			"pattern",
			defaultCompiledItems,
			defaultCompiledExpirationInterval,
			metrics.PatternCachedEntries,
			metrics.PatternCacheRequests,
		),
	}
}

// Match returns the first pattern matching fqdn. Patterns are tried in
// order, `*` spans any run of characters and `?` exactly one, both can
// cross label boundaries. Matching is case sensitive. A pattern that
// fails to compile is skipped.
func (m *Matcher) Match(fqdn string, patterns []string) (string, bool) {
	for _, p := range patterns {
		g, err := m.compile(p)
		if err != nil {
			log.WithError(err).WithField("pattern", p).Warn("skipping malformed whitelist pattern")
			continue
		}

		if g.Match(fqdn) {
			return p, true
		}
	}

	return "", false
}

func (m *Matcher) compile(p string) (glob.Glob, error) {
	g, err := m.cache.FindOrFetch(p, p, func() (interface{}, error) {
		return glob.Compile(p)
	})
	if err != nil {
		return nil, err
	}

	return g.(glob.Glob), nil
}
