package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osint-enrich/internal/config"
	"github.com/sells-group/osint-enrich/internal/enrich"
	"github.com/sells-group/osint-enrich/internal/probe"
	"github.com/sells-group/osint-enrich/internal/store"
)

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// buildEnricher assembles the five probes behind one orchestrator. The
// account tool path is resolved once here; a missing binary degrades
// that probe, it never fails startup.
func buildEnricher(c *config.Config) *enrich.Enricher {
	resolver := probe.NewResolver(c.Probes.DNSTimeout())

	toolPath, err := probe.ResolveTool(c.Probes.AccountToolPath, c.Probes.AccountToolPaths)
	if err != nil {
		zap.L().Warn("account-discovery tool not found, probe disabled", zap.Error(err))
		toolPath = ""
	}

	platforms := probe.DefaultPlatforms()
	if c.Probes.PlatformsFile != "" {
		loaded, err := probe.LoadPlatforms(c.Probes.PlatformsFile)
		if err != nil {
			zap.L().Warn("platforms file not loaded, using built-in list",
				zap.String("path", c.Probes.PlatformsFile),
				zap.Error(err),
			)
		} else {
			platforms = loaded
		}
	}

	return enrich.NewEnricher(
		probe.NewEmailProbe(resolver),
		probe.NewMailProbe(resolver),
		probe.NewRegistrationProbe(c.Probes.RDAPBaseURL, c.Probes.RDAPTimeout()),
		probe.NewAccountProbe(toolPath, c.Probes.AccountTimeout(), probe.NewExecRunner()),
		probe.NewSocialProbe(platforms, c.Probes.SocialTimeout(), c.Probes.SocialRatePerSec),
	)
}
