package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/osint-enrich/internal/model"
)

const unknownField = "Unknown"

// RegistrationProbe looks up domain registration metadata through the
// public RDAP service.
type RegistrationProbe struct {
	baseURL string
	client  *http.Client
}

// NewRegistrationProbe creates a probe against the given RDAP base URL
// (e.g. https://rdap.org) with a per-lookup timeout.
func NewRegistrationProbe(baseURL string, timeout time.Duration) *RegistrationProbe {
	return &RegistrationProbe{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type rdapResponse struct {
	Events   []rdapEvent  `json:"events"`
	Entities []rdapEntity `json:"entities"`
}

type rdapEvent struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

type rdapEntity struct {
	Roles      []string `json:"roles"`
	VCardArray []any    `json:"vcardArray"`
}

// Lookup fetches registration metadata for the domain. Absent fields come
// back as "Unknown"; transport or decode failures fail closed into the
// outcome and award no credit.
func (p *RegistrationProbe) Lookup(ctx context.Context, domain string) model.Registration {
	reg := model.Registration{
		Registrar:      unknownField,
		CreationDate:   unknownField,
		ExpirationDate: unknownField,
		Organization:   unknownField,
	}

	endpoint := fmt.Sprintf("%s/domain/%s", p.baseURL, url.PathEscape(domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		reg.Outcome = model.Errored(err.Error())
		return reg
	}
	req.Header.Set("Accept", "application/rdap+json, application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		zap.L().Debug("registration probe: request failed",
			zap.String("domain", domain),
			zap.Error(err),
		)
		reg.Outcome = outcomeFromErr(err)
		return reg
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		reg.Outcome = model.Unavailable(fmt.Sprintf("registration lookup failed: HTTP %d", resp.StatusCode))
		return reg
	}

	var payload rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		reg.Outcome = model.Errored("decode registration response: " + err.Error())
		return reg
	}

	for _, ev := range payload.Events {
		switch ev.Action {
		case "registration":
			reg.CreationDate = orUnknown(ev.Date)
		case "expiration":
			reg.ExpirationDate = orUnknown(ev.Date)
		}
	}

	for _, ent := range payload.Entities {
		for _, role := range ent.Roles {
			switch role {
			case "registrar":
				if name := vcardText(ent.VCardArray, "fn"); name != "" {
					reg.Registrar = name
				}
			case "registrant":
				if org := vcardText(ent.VCardArray, "org"); org != "" {
					reg.Organization = org
				} else if name := vcardText(ent.VCardArray, "fn"); name != "" {
					reg.Organization = name
				}
			}
		}
	}

	reg.Outcome = model.Succeeded()
	return reg
}

func orUnknown(s string) string {
	if s == "" {
		return unknownField
	}
	return s
}

// vcardText extracts the text value of a named property from a jCard
// array: ["vcard", [[name, params, type, value], ...]].
func vcardText(vcard []any, name string) string {
	if len(vcard) < 2 {
		return ""
	}
	props, ok := vcard[1].([]any)
	if !ok {
		return ""
	}
	for _, raw := range props {
		prop, ok := raw.([]any)
		if !ok || len(prop) < 4 {
			continue
		}
		propName, ok := prop[0].(string)
		if !ok || propName != name {
			continue
		}
		if val, ok := prop[3].(string); ok && val != "" {
			return val
		}
	}
	return ""
}
