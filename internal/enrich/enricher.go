// Package enrich holds the per-lead probe orchestrator and the parallel
// batch runner. The orchestrator composes a bounded reputation score from
// whichever probes succeed; the runner fans orchestrations out over a
// bounded worker pool with live progress accounting.
package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/osint-enrich/internal/model"
)

// Score weights per probe. They sum to the score ceiling, so the final
// clamp is a guard against future weight changes rather than a reachable
// branch today.
const (
	emailWeight        = 20
	mailRecordsWeight  = 15
	registrationWeight = 15
	accountPointsEach  = 2
	accountWeightCap   = 30
	socialWeight       = 20
	maxScore           = 100
)

// EmailChecker validates an address and its mail exchanger.
type EmailChecker interface {
	Check(ctx context.Context, email string) model.EmailCheck
}

// MailLookup fetches a domain's mail-related DNS records.
type MailLookup interface {
	Lookup(ctx context.Context, domain string) model.MailRecords
}

// RegistrationLookup fetches domain registration metadata.
type RegistrationLookup interface {
	Lookup(ctx context.Context, domain string) model.Registration
}

// AccountDiscoverer finds external accounts registered to an email.
type AccountDiscoverer interface {
	Discover(ctx context.Context, email string) model.AccountDiscovery
}

// SocialLookup checks social platforms for profiles derived from an email.
type SocialLookup interface {
	Lookup(ctx context.Context, email string) model.SocialPresence
}

// Enricher runs all probes for one lead and composes the score. It never
// returns an error: probe failures zero their own contribution and are
// recorded on the result instead.
type Enricher struct {
	email        EmailChecker
	mail         MailLookup
	registration RegistrationLookup
	accounts     AccountDiscoverer
	social       SocialLookup
}

// NewEnricher wires the probe collaborators into an Enricher.
func NewEnricher(email EmailChecker, mail MailLookup, registration RegistrationLookup, accounts AccountDiscoverer, social SocialLookup) *Enricher {
	return &Enricher{
		email:        email,
		mail:         mail,
		registration: registration,
		accounts:     accounts,
		social:       social,
	}
}

// Enrich produces the enrichment record for one lead. Probes run in a
// fixed order (validation, mail records, registration, account discovery,
// social); scoring is additive and order-independent. A lead whose email
// has no usable domain skips every network probe.
func (e *Enricher) Enrich(ctx context.Context, lead model.Lead) model.EnrichmentResult {
	start := time.Now()
	log := zap.L().With(zap.Int64("lead_id", lead.ID), zap.String("email", lead.Email))

	result := model.EnrichmentResult{
		LeadID:    lead.ID,
		Email:     lead.Email,
		Company:   lead.Company,
		Country:   lead.Country,
		Status:    model.ResultStatusProcessing,
		Timestamp: time.Now().UTC(),
	}

	// 1. Email syntax + MX validation.
	check := e.email.Check(ctx, lead.Email)
	result.Data.Email = &check
	if check.Valid {
		result.Score += emailWeight
	}

	_, domain, ok := model.SplitEmail(lead.Email)
	if !ok {
		// No domain to analyze; remaining probes would all need one.
		log.Debug("enrich: malformed email, skipping network probes")
		result.Status = model.ResultStatusCompleted
		result.ProcessingTime = time.Since(start)
		return result
	}

	// 2a. Mail-record analysis.
	records := e.mail.Lookup(ctx, domain)
	result.Data.MailRecords = &records
	if records.Outcome.OK() {
		result.Score += mailRecordsWeight
	}

	// 2b. Registration lookup.
	registration := e.registration.Lookup(ctx, domain)
	result.Data.Registration = &registration
	if registration.Outcome.OK() {
		result.Score += registrationWeight
	}

	// 3. Account discovery.
	discovery := e.accounts.Discover(ctx, lead.Email)
	result.Data.Accounts = &discovery
	if discovery.Outcome.OK() {
		result.Score += accountCredit(len(discovery.Accounts))
	}

	// 4. Social presence.
	social := e.social.Lookup(ctx, lead.Email)
	result.Data.Social = &social
	if social.Outcome.OK() && len(social.Found) > 0 {
		result.Score += socialWeight
	}

	result.Score = clampScore(result.Score)
	result.Status = model.ResultStatusCompleted
	result.ProcessingTime = time.Since(start)

	log.Debug("enrich: lead complete",
		zap.Int("score", result.Score),
		zap.Duration("took", result.ProcessingTime),
	)

	return result
}

// accountCredit awards accountPointsEach per confirmed account up to the cap.
func accountCredit(found int) int {
	credit := found * accountPointsEach
	if credit > accountWeightCap {
		return accountWeightCap
	}
	return credit
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
