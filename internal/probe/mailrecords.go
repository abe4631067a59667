package probe

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/osint-enrich/internal/model"
)

// MailProbe fetches a domain's MX and TXT records and classifies the TXT
// entries into SPF, DMARC and DKIM buckets.
type MailProbe struct {
	resolver Resolver
}

// NewMailProbe creates a MailProbe using the given resolver.
func NewMailProbe(resolver Resolver) *MailProbe {
	return &MailProbe{resolver: resolver}
}

// Lookup resolves mail-related records for the domain. The outcome is
// successful when either lookup resolved; auxiliary record presence does
// not affect it. Both lookups failing reports a non-fatal "no records"
// outcome.
func (p *MailProbe) Lookup(ctx context.Context, domain string) model.MailRecords {
	rec := model.MailRecords{}

	mxs, mxErr := p.resolver.LookupMX(ctx, domain)
	if mxErr == nil {
		for _, mx := range mxs {
			rec.MX = append(rec.MX, mx.Host)
		}
	}

	txts, txtErr := p.resolver.LookupTXT(ctx, domain)
	if txtErr == nil {
		// The classes are not exclusive; one record can land in several.
		for _, txt := range txts {
			if strings.Contains(txt, "v=spf1") {
				rec.SPF = append(rec.SPF, txt)
			}
			if strings.Contains(txt, "_dmarc") {
				rec.DMARC = append(rec.DMARC, txt)
			}
			if strings.Contains(txt, "v=DKIM1") {
				rec.DKIM = append(rec.DKIM, txt)
			}
		}
	}

	if mxErr != nil && txtErr != nil {
		zap.L().Debug("mail probe: no records",
			zap.String("domain", domain),
			zap.Error(mxErr),
		)
		rec.Outcome = model.Unavailable("no records: " + mxErr.Error())
		return rec
	}

	rec.Outcome = model.Succeeded()
	return rec
}
