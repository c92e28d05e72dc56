package whitelist

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"gitlab.com/fleetops/whitelistd/internal/pattern"
	"gitlab.com/fleetops/whitelistd/metrics"
)

// MatchedBy reports which kind of rule admitted a subject.
type MatchedBy string

const (
	// MatchedByPattern means a host pattern matched the subject's FQDN
	MatchedByPattern MatchedBy = "pattern"
	// MatchedByRole means the subject holds one of the whitelist's roles
	MatchedByRole MatchedBy = "role"
	// MatchedByNone means no rule admitted the subject
	MatchedByNone MatchedBy = "none"
)

// Result is the outcome of a membership check.
type Result struct {
	Member    bool
	MatchedBy MatchedBy

	// Rule is the pattern or role that admitted the subject, empty when
	// MatchedBy is MatchedByNone.
	Rule string
}

// Checker tests hosts against whitelists read from a Source. It is
// stateless apart from the compiled pattern cache, all record caching
// lives behind the Source.
type Checker struct {
	source           Source
	defaultBag       string
	defaultAttribute string
	matcher          *pattern.Matcher
}

// Option configures a Checker
type Option func(*Checker)

// WithDefaultBag overrides DefaultBag for checks that do not name a bag
func WithDefaultBag(bag string) Option {
	return func(c *Checker) {
		c.defaultBag = bag
	}
}

// WithDefaultAttribute overrides DefaultAttribute for checks that do not
// name an attribute
func WithDefaultAttribute(attribute string) Option {
	return func(c *Checker) {
		c.defaultAttribute = attribute
	}
}

// NewChecker creates a Checker reading whitelists from source
func NewChecker(source Source, opts ...Option) *Checker {
	c := &Checker{
		source:           source,
		defaultBag:       DefaultBag,
		defaultAttribute: DefaultAttribute,
		matcher:          pattern.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type checkParams struct {
	bag       string
	attribute string
}

// CheckOption configures a single membership check
type CheckOption func(*checkParams)

// WithBag reads the whitelist item from the named bag instead of the
// checker's default
func WithBag(bag string) CheckOption {
	return func(p *checkParams) {
		p.bag = bag
	}
}

// WithAttribute reads host patterns from the named item attribute instead
// of the checker's default
func WithAttribute(attribute string) CheckOption {
	return func(p *checkParams) {
		p.attribute = attribute
	}
}

// IsInWhitelist reports whether subject belongs to the named whitelist.
// Fetch failures degrade to an empty whitelist and answer false, they are
// never surfaced to the caller.
func (c *Checker) IsInWhitelist(ctx context.Context, whitelist string, subject Subject, opts ...CheckOption) bool {
	return c.Check(ctx, whitelist, subject, opts...).Member
}

// Check is IsInWhitelist with the full decision attached.
func (c *Checker) Check(ctx context.Context, whitelist string, subject Subject, opts ...CheckOption) Result {
	params := checkParams{
		bag:       c.defaultBag,
		attribute: c.defaultAttribute,
	}
	for _, opt := range opts {
		opt(&params)
	}

	record := c.loadRecord(ctx, whitelist, params.bag, params.attribute)
	fqdn := subject.FQDN()

	result := c.resolve(ctx, record, fqdn, subject)

	logDecision(whitelist, params.bag, fqdn, result)
	countDecision(result)

	return result
}

func (c *Checker) resolve(ctx context.Context, record *Record, fqdn string, subject Subject) Result {
	if matched, ok := c.matcher.Match(fqdn, record.Patterns); ok {
		return Result{Member: true, MatchedBy: MatchedByPattern, Rule: matched}
	}

	// a missing roles key skips the role search entirely, an empty one
	// runs it and finds nothing
	if record.Roles != nil {
		if role, ok := c.SearchRoles(ctx, record.Roles, subject); ok {
			return Result{Member: true, MatchedBy: MatchedByRole, Rule: role}
		}
	}

	return Result{Member: false, MatchedBy: MatchedByNone}
}

// SearchRoles returns the first role in roles that subject is a member
// of. The order of roles decides which one is reported, the boolean is an
// OR over all of them.
func (c *Checker) SearchRoles(ctx context.Context, roles []string, subject Subject) (string, bool) {
	for _, role := range roles {
		if subject.HasRole(ctx, role) {
			return role, true
		}
	}

	return "", false
}

// loadRecord fetches the whitelist item, degrading fetch failures to an
// empty record with no roles key
func (c *Checker) loadRecord(ctx context.Context, whitelist, bag, attribute string) *Record {
	record, err := c.source.GetWhitelist(ctx, bag, whitelist, attribute)
	if err != nil {
		reason := degradeReason(err)

		log.WithError(err).WithFields(log.Fields{
			"whitelist": whitelist,
			"bag":       bag,
			"reason":    reason,
		}).Error("failed to load whitelist, treating it as empty")
		metrics.SourceDegraded.WithLabelValues(reason).Inc()

		return &Record{}
	}

	return record
}

func degradeReason(err error) string {
	switch {
	case errors.Is(err, ErrWhitelistNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedWhitelist):
		return "malformed"
	default:
		return "connection"
	}
}

func logDecision(whitelist, bag, fqdn string, result Result) {
	log.WithFields(log.Fields{
		"whitelist":  whitelist,
		"bag":        bag,
		"host":       fqdn,
		"member":     result.Member,
		"matched_by": result.MatchedBy,
		"rule":       result.Rule,
	}).Debug("whitelist membership decision")
}

func countDecision(result Result) {
	outcome := "non_member"
	if result.Member {
		outcome = "member"
	}

	metrics.MembershipChecks.WithLabelValues(outcome, string(result.MatchedBy)).Inc()
}
