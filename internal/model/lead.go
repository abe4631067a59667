package model

import "strings"

// Lead is a contact record queued for enrichment. Leads are read-only once
// handed to the enricher; nothing in the pipeline mutates them.
type Lead struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Country   string `json:"country"`
	Source    string `json:"source"`
	Industry  string `json:"industry"`
}

// SplitEmail splits an address into local part and domain. ok is false
// unless the address contains exactly one "@" with non-empty sides.
func SplitEmail(email string) (local, domain string, ok bool) {
	if strings.Count(email, "@") != 1 {
		return "", "", false
	}
	local, domain, _ = strings.Cut(email, "@")
	if local == "" || domain == "" {
		return "", "", false
	}
	return local, domain, true
}

// Domain returns the domain portion of the lead's email, or "" when the
// address is malformed.
func (l Lead) Domain() string {
	_, domain, _ := SplitEmail(l.Email)
	return domain
}
