package model

import "time"

// OutcomeStatus distinguishes how a probe finished. The enricher needs to
// tell "ran and found nothing" apart from "could not run" and "crashed",
// because only some of these award partial credit.
type OutcomeStatus string

const (
	OutcomeSuccess     OutcomeStatus = "success"
	OutcomeMalformed   OutcomeStatus = "malformed_input"
	OutcomeUnavailable OutcomeStatus = "unavailable"
	OutcomeTimeout     OutcomeStatus = "timeout"
	OutcomeError       OutcomeStatus = "error"
)

// Outcome records how a single probe finished. Detail carries the
// unavailability reason or error message when the probe did not succeed.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
}

// OK reports whether the probe ran to completion.
func (o Outcome) OK() bool { return o.Status == OutcomeSuccess }

// Succeeded returns a success outcome.
func Succeeded() Outcome { return Outcome{Status: OutcomeSuccess} }

// Malformed returns an outcome for input the probe rejected before doing
// any work.
func Malformed(reason string) Outcome {
	return Outcome{Status: OutcomeMalformed, Detail: reason}
}

// Unavailable returns an outcome for a probe whose resource could not be
// reached or is not installed.
func Unavailable(reason string) Outcome {
	return Outcome{Status: OutcomeUnavailable, Detail: reason}
}

// TimedOut returns an outcome for a probe that exceeded its deadline.
func TimedOut(detail string) Outcome {
	return Outcome{Status: OutcomeTimeout, Detail: detail}
}

// Errored returns an outcome for a probe that failed unexpectedly.
func Errored(msg string) Outcome {
	return Outcome{Status: OutcomeError, Detail: msg}
}

// EmailCheck is the result of syntax validation plus MX lookup.
type EmailCheck struct {
	Outcome Outcome  `json:"outcome"`
	Valid   bool     `json:"valid"`
	MXHosts []string `json:"mx_hosts,omitempty"`
}

// MailRecords holds the domain's mail-related DNS records, with TXT
// entries classified into SPF, DMARC and DKIM buckets.
type MailRecords struct {
	Outcome Outcome  `json:"outcome"`
	MX      []string `json:"mx,omitempty"`
	SPF     []string `json:"spf,omitempty"`
	DMARC   []string `json:"dmarc,omitempty"`
	DKIM    []string `json:"dkim,omitempty"`
}

// Registration holds domain registration metadata. Absent fields are
// rendered as "Unknown" rather than failing the probe.
type Registration struct {
	Outcome        Outcome `json:"outcome"`
	Registrar      string  `json:"registrar,omitempty"`
	CreationDate   string  `json:"creation_date,omitempty"`
	ExpirationDate string  `json:"expiration_date,omitempty"`
	Organization   string  `json:"organization,omitempty"`
}

// AccountDiscovery lists external accounts confirmed for the email.
type AccountDiscovery struct {
	Outcome  Outcome  `json:"outcome"`
	Accounts []string `json:"accounts,omitempty"`
}

// SocialPresence maps platform name to profile URL for each hit. Platforms
// whose check failed (timeout, connection refused) are listed separately
// and never counted as hits.
type SocialPresence struct {
	Outcome      Outcome           `json:"outcome"`
	Found        map[string]string `json:"found,omitempty"`
	FailedChecks []string          `json:"failed_checks,omitempty"`
}

// EnrichmentData holds one typed slot per probe kind so score composition
// is exhaustive instead of keying into an open-ended map. A nil slot means
// the probe was never attempted.
type EnrichmentData struct {
	Email        *EmailCheck       `json:"email,omitempty"`
	MailRecords  *MailRecords      `json:"mail_records,omitempty"`
	Registration *Registration     `json:"registration,omitempty"`
	Accounts     *AccountDiscovery `json:"accounts,omitempty"`
	Social       *SocialPresence   `json:"social,omitempty"`
}

// ResultStatus represents the state of one lead's enrichment.
type ResultStatus string

const (
	ResultStatusProcessing ResultStatus = "processing"
	ResultStatusCompleted  ResultStatus = "completed"
	ResultStatusError      ResultStatus = "error"
)

// EnrichmentResult is the per-lead output of the enrichment pipeline.
// Score stays within [0,100]; probe failures degrade their own
// contribution to zero without flipping Status to error.
type EnrichmentResult struct {
	LeadID         int64          `json:"lead_id"`
	Email          string         `json:"email"`
	Company        string         `json:"company,omitempty"`
	Country        string         `json:"country,omitempty"`
	Data           EnrichmentData `json:"enrichment_data"`
	Score          int            `json:"score"`
	Status         ResultStatus   `json:"status"`
	Error          string         `json:"error,omitempty"`
	ProcessingTime time.Duration  `json:"processing_time"`
	Timestamp      time.Time      `json:"timestamp"`
}
