// Package probe implements the external signal sources consulted during
// lead enrichment: email/MX validation, mail-record analysis, domain
// registration lookup, account discovery via an external tool, and
// social-platform existence checks. Every probe fails closed: network and
// tool errors become a typed Outcome on the probe's result, never an error
// returned to the caller.
package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sells-group/osint-enrich/internal/model"
)

// Resolver is the DNS collaborator used by the email and mail-record
// probes. The standard library resolver satisfies it via NewResolver.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
	LookupTXT(ctx context.Context, domain string) ([]string, error)
}

type netResolver struct {
	r       *net.Resolver
	timeout time.Duration
}

// NewResolver returns a Resolver backed by the default system resolver,
// applying the given timeout to each lookup.
func NewResolver(timeout time.Duration) Resolver {
	return &netResolver{r: net.DefaultResolver, timeout: timeout}
}

func (n *netResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.r.LookupMX(ctx, domain)
}

func (n *netResolver) LookupTXT(ctx context.Context, domain string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.r.LookupTXT(ctx, domain)
}

// outcomeFromErr classifies a collaborator error into a probe outcome.
func outcomeFromErr(err error) model.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.TimedOut(err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.TimedOut(err.Error())
	}
	return model.Unavailable(err.Error())
}
