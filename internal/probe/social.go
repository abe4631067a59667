package probe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/osint-enrich/internal/model"
)

// Platform is one social platform to probe. URL is a template with a
// single %s for the candidate username.
type Platform struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DefaultPlatforms returns the built-in platform list.
func DefaultPlatforms() []Platform {
	return []Platform{
		{Name: "Twitter", URL: "https://twitter.com/%s"},
		{Name: "GitHub", URL: "https://github.com/%s"},
		{Name: "Instagram", URL: "https://www.instagram.com/%s"},
		{Name: "Facebook", URL: "https://www.facebook.com/%s"},
		{Name: "LinkedIn", URL: "https://www.linkedin.com/in/%s"},
		{Name: "YouTube", URL: "https://www.youtube.com/%s"},
		{Name: "Reddit", URL: "https://www.reddit.com/user/%s"},
		{Name: "TikTok", URL: "https://www.tiktok.com/@%s"},
		{Name: "Pinterest", URL: "https://www.pinterest.com/%s"},
		{Name: "Medium", URL: "https://medium.com/@%s"},
		{Name: "SoundCloud", URL: "https://soundcloud.com/%s"},
		{Name: "Twitch", URL: "https://www.twitch.tv/%s"},
		{Name: "Dribbble", URL: "https://dribbble.com/%s"},
		{Name: "Behance", URL: "https://www.behance.net/%s"},
		{Name: "Kaggle", URL: "https://www.kaggle.com/%s"},
		{Name: "Strava", URL: "https://www.strava.com/athletes/%s"},
	}
}

// LoadPlatforms reads a platform list from a YAML file.
func LoadPlatforms(path string) ([]Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "social: read platforms file %s", path)
	}
	var platforms []Platform
	if err := yaml.Unmarshal(data, &platforms); err != nil {
		return nil, eris.Wrapf(err, "social: parse platforms file %s", path)
	}
	if len(platforms) == 0 {
		return nil, eris.Errorf("social: platforms file %s is empty", path)
	}
	return platforms, nil
}

// SocialProbe checks platform profile URLs for existence.
type SocialProbe struct {
	platforms []Platform
	client    *http.Client
	limiter   *rate.Limiter
}

// NewSocialProbe creates a SocialProbe with a per-platform timeout and an
// outbound request rate cap.
func NewSocialProbe(platforms []Platform, timeout time.Duration, ratePerSec float64) *SocialProbe {
	if len(platforms) == 0 {
		platforms = DefaultPlatforms()
	}
	if ratePerSec <= 0 {
		ratePerSec = 10
	}
	return &SocialProbe{
		platforms: platforms,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// Lookup derives a candidate username from the email's local part and
// checks each platform. Per-platform failures are excluded from the found
// set silently; the probe as a whole succeeds as long as it ran.
func (p *SocialProbe) Lookup(ctx context.Context, email string) model.SocialPresence {
	local, _, ok := model.SplitEmail(email)
	if !ok {
		return model.SocialPresence{Outcome: model.Unavailable("no username derivable from email")}
	}
	username := Username(local)
	if username == "" {
		return model.SocialPresence{Outcome: model.Unavailable("no username derivable from email")}
	}

	found := make(map[string]string)
	var failed []string

	for _, platform := range p.platforms {
		if err := p.limiter.Wait(ctx); err != nil {
			return model.SocialPresence{Outcome: outcomeFromErr(err), Found: found, FailedChecks: failed}
		}

		profileURL := fmt.Sprintf(platform.URL, username)
		exists, err := p.check(ctx, profileURL)
		if err != nil {
			failed = append(failed, platform.Name)
			continue
		}
		if exists {
			found[platform.Name] = profileURL
			zap.L().Debug("social probe: account found",
				zap.String("platform", platform.Name),
				zap.String("username", username),
			)
		}
	}

	return model.SocialPresence{Outcome: model.Succeeded(), Found: found, FailedChecks: failed}
}

func (p *SocialProbe) check(ctx context.Context, profileURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode == http.StatusOK, nil
}

var usernameStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Username normalizes an email local part into a platform username
// candidate: diacritics stripped, lowercased, restricted to the
// characters platforms commonly allow.
func Username(local string) string {
	stripped, _, err := transform.String(usernameStripper, local)
	if err != nil {
		stripped = local
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
