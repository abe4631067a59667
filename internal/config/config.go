package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Probes     ProbesConfig     `yaml:"probes" mapstructure:"probes"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProcessingConfig configures the batch runner.
type ProcessingConfig struct {
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers"`
	BatchSize  int `yaml:"batch_size" mapstructure:"batch_size"`
}

// ProbesConfig configures the external probe collaborators.
type ProbesConfig struct {
	DNSTimeoutSecs     int      `yaml:"dns_timeout_secs" mapstructure:"dns_timeout_secs"`
	RDAPBaseURL        string   `yaml:"rdap_base_url" mapstructure:"rdap_base_url"`
	RDAPTimeoutSecs    int      `yaml:"rdap_timeout_secs" mapstructure:"rdap_timeout_secs"`
	AccountToolPath    string   `yaml:"account_tool_path" mapstructure:"account_tool_path"`
	AccountToolPaths   []string `yaml:"account_tool_paths" mapstructure:"account_tool_paths"`
	AccountTimeoutSecs int      `yaml:"account_timeout_secs" mapstructure:"account_timeout_secs"`
	SocialTimeoutSecs  int      `yaml:"social_timeout_secs" mapstructure:"social_timeout_secs"`
	SocialRatePerSec   float64  `yaml:"social_rate_per_sec" mapstructure:"social_rate_per_sec"`
	PlatformsFile      string   `yaml:"platforms_file" mapstructure:"platforms_file"`
}

// DNSTimeout returns the resolver timeout as a duration.
func (p ProbesConfig) DNSTimeout() time.Duration {
	return time.Duration(p.DNSTimeoutSecs) * time.Second
}

// RDAPTimeout returns the registration-lookup timeout as a duration.
func (p ProbesConfig) RDAPTimeout() time.Duration {
	return time.Duration(p.RDAPTimeoutSecs) * time.Second
}

// AccountTimeout returns the account-discovery executable timeout as a duration.
func (p ProbesConfig) AccountTimeout() time.Duration {
	return time.Duration(p.AccountTimeoutSecs) * time.Second
}

// SocialTimeout returns the per-platform social check timeout as a duration.
func (p ProbesConfig) SocialTimeout() time.Duration {
	return time.Duration(p.SocialTimeoutSecs) * time.Second
}

// ReportConfig configures report artifact output.
type ReportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the job control server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OSINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "osint-enrich.db")
	v.SetDefault("processing.max_workers", 80)
	v.SetDefault("processing.batch_size", 1000)
	v.SetDefault("probes.dns_timeout_secs", 5)
	v.SetDefault("probes.rdap_base_url", "https://rdap.org")
	v.SetDefault("probes.rdap_timeout_secs", 10)
	v.SetDefault("probes.account_tool_paths", []string{"holehe", "/usr/bin/holehe", "/usr/local/bin/holehe", "/app/venv/bin/holehe"})
	v.SetDefault("probes.account_timeout_secs", 30)
	v.SetDefault("probes.social_timeout_secs", 5)
	v.SetDefault("probes.social_rate_per_sec", 10.0)
	v.SetDefault("report.dir", ".")
	v.SetDefault("server.port", 8002)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate rejects configurations that cannot schedule any work.
func (c *Config) Validate() error {
	if c.Processing.MaxWorkers <= 0 {
		return eris.New("config: processing.max_workers must be positive")
	}
	if c.Processing.BatchSize <= 0 {
		return eris.New("config: processing.batch_size must be positive")
	}
	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
