package probe

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/sells-group/osint-enrich/internal/model"
)

// emailPattern is a conservative address grammar. Addresses that fail it
// are rejected without any network lookup.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// EmailProbe validates email syntax and confirms the domain accepts mail
// by resolving its MX records.
type EmailProbe struct {
	resolver Resolver
}

// NewEmailProbe creates an EmailProbe using the given resolver.
func NewEmailProbe(resolver Resolver) *EmailProbe {
	return &EmailProbe{resolver: resolver}
}

// Check validates the address. Valid is true only when both the syntax
// check and the MX lookup succeed.
func (p *EmailProbe) Check(ctx context.Context, email string) model.EmailCheck {
	if !emailPattern.MatchString(email) {
		return model.EmailCheck{Outcome: model.Malformed("invalid email format"), Valid: false}
	}

	_, domain, ok := model.SplitEmail(email)
	if !ok {
		return model.EmailCheck{Outcome: model.Malformed("invalid email format"), Valid: false}
	}

	mxs, err := p.resolver.LookupMX(ctx, domain)
	if err != nil {
		zap.L().Debug("email probe: MX lookup failed",
			zap.String("domain", domain),
			zap.Error(err),
		)
		return model.EmailCheck{Outcome: outcomeFromErr(err), Valid: false}
	}
	if len(mxs) == 0 {
		return model.EmailCheck{Outcome: model.Unavailable("no MX records"), Valid: false}
	}

	hosts := make([]string, 0, len(mxs))
	for _, mx := range mxs {
		hosts = append(hosts, mx.Host)
	}

	return model.EmailCheck{Outcome: model.Succeeded(), Valid: true, MXHosts: hosts}
}
