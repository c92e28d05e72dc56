// Package subject holds the subjects of whitelist membership checks. A
// subject answers role queries for a single host.
package subject

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
	"gitlab.com/fleetops/whitelistd/metrics"
)

type nodeSource interface {
	GetNode(ctx context.Context, fqdn string) (*api.Node, error)
}

// Subject is a host whose whitelist membership is being checked. Its node
// is fetched lazily on the first role query and at most once, pattern-only
// checks never touch the source.
type Subject struct {
	fqdn   string
	source nodeSource

	node     *api.Node
	nodeOnce sync.Once
}

// New returns a Subject for the given fully qualified domain name
func New(fqdn string, source nodeSource) *Subject {
	return &Subject{fqdn: fqdn, source: source}
}

// FQDN returns the host name being checked
func (s *Subject) FQDN() string {
	return s.fqdn
}

// HasRole reports whether the node registered under the subject's FQDN
// holds the given role. A host that is not registered holds no roles, and
// so does one whose node cannot be fetched.
func (s *Subject) HasRole(ctx context.Context, role string) bool {
	s.nodeOnce.Do(func() { s.node = s.lookupNode(ctx) })

	if s.node == nil {
		return false
	}

	return s.node.HasRole(role)
}

func (s *Subject) lookupNode(ctx context.Context) *api.Node {
	node, err := s.source.GetNode(ctx, s.fqdn)
	if err != nil {
		if errors.Is(err, api.ErrNodeNotFound) {
			log.WithField("host", s.fqdn).Debug("host is not a registered node, it holds no roles")
			return nil
		}

		log.WithError(err).WithField("host", s.fqdn).Error("failed to load node, treating it as having no roles")
		metrics.SourceDegraded.WithLabelValues("connection").Inc()

		return nil
	}

	return node
}

// Static is a subject with a fixed set of roles, for callers that already
// know them.
type Static struct {
	fqdn  string
	roles []string
}

// NewStatic returns a subject that never queries a source
func NewStatic(fqdn string, roles []string) *Static {
	return &Static{fqdn: fqdn, roles: roles}
}

// FQDN returns the host name being checked
func (s *Static) FQDN() string {
	return s.fqdn
}

// HasRole reports whether the fixed role set contains the given role
func (s *Static) HasRole(ctx context.Context, role string) bool {
	for _, r := range s.roles {
		if r == role {
			return true
		}
	}

	return false
}
