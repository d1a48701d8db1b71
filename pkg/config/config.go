// Package config loads run configuration from flags, REDISTRIBUTE_* env vars and an optional file
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luxfi/redistribute/pkg/db"
)

// Keys double as flag names
const (
	KeyConfig           = "config"
	KeyEndpoint         = "endpoint"
	KeyIssuer           = "issuer"
	KeyTaxon            = "taxon"
	KeyPageSize         = "page-size"
	KeyRequestDelay     = "request-delay"
	KeyRequestTimeout   = "request-timeout"
	KeySource           = "source"
	KeyIneligible       = "ineligible"
	KeyExpectedPoolSize = "expected-pool-size"
	KeyOutput           = "output"
	KeyOutputCSV        = "output-csv"
	KeyStore            = "store"
	KeySeed             = "seed"
	KeyTop              = "top"
	KeyLogLevel         = "log-level"
	KeyPostgresURL      = "postgres-url"
)

// EnvPrefix is prepended to every environment variable
const EnvPrefix = "REDISTRIBUTE"

var (
	DefaultEndpoint       = "https://s2-clio.ripple.com"
	DefaultIssuer         = "rEzbi191M5AjrucxXKZWbR5QeyfpbedBcV"
	DefaultTaxon          = uint32(1)
	DefaultPageSize       = 500
	DefaultRequestDelay   = 200 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
	DefaultSources        = []string{"rESvnQrpWVho8kEiHEVKXMBoiUzdkYVtDL"}
	DefaultIneligible     = []string{"r3idziPApkZBJmnGq2LtvP5Skrti9uDaCx"}
	DefaultOutput         = "nft_redistribution_results.json"
	DefaultStore          = db.BackendPebble
	DefaultTop            = 10
	DefaultLogLevel       = "info"
)

// envReplacer maps flag-style keys like `page-size` to PAGE_SIZE
var envReplacer = strings.NewReplacer("-", "_", ".", "_")

// Config holds everything fixed at invocation
type Config struct {
	Endpoint         string        `json:"endpoint"`
	Issuer           string        `json:"issuer"`
	Taxon            uint32        `json:"taxon"`
	PageSize         int           `json:"pageSize"`
	RequestDelay     time.Duration `json:"requestDelay"`
	RequestTimeout   time.Duration `json:"requestTimeout"`
	Sources          []string      `json:"sourceAccounts"`
	Ineligible       []string      `json:"ineligibleAccounts"`
	ExpectedPoolSize int           `json:"expectedPoolSize,omitempty"`
	Output           string        `json:"output"`
	OutputCSV        string        `json:"outputCsv,omitempty"`
	Store            string        `json:"store"`
	Seed             uint64        `json:"seed"`
	Top              int           `json:"top"`
	LogLevel         string        `json:"logLevel"`
	PostgresURL      string        `json:"postgresUrl,omitempty"`
}

func (c *Config) String() string {
	clone := *c
	if clone.PostgresURL != "" {
		if u, err := url.Parse(clone.PostgresURL); err == nil {
			clone.PostgresURL = u.Redacted()
		} else {
			clone.PostgresURL = "••••••"
		}
	}
	b, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(b)
}

// RegisterCollectFlags adds the flags shared by every command that talks to the ledger
func RegisterCollectFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "Optional config file (yaml, json or toml)")
	fs.String(KeyEndpoint, DefaultEndpoint, "Clio JSON-RPC endpoint")
	fs.String(KeyIssuer, DefaultIssuer, "NFT issuer account")
	fs.Uint32(KeyTaxon, DefaultTaxon, "NFT taxon")
	fs.Int(KeyPageSize, DefaultPageSize, "NFTs requested per page")
	fs.Duration(KeyRequestDelay, DefaultRequestDelay, "Delay between page requests")
	fs.Duration(KeyRequestTimeout, DefaultRequestTimeout, "HTTP timeout per page request")
	fs.String(KeyStore, DefaultStore, "In-memory record store backend (pebble, leveldb)")
	fs.Int(KeyTop, DefaultTop, "Number of top holders to print")
	fs.String(KeyLogLevel, DefaultLogLevel, "Log level (trace, debug, info, warn, error)")
}

// RegisterFlags adds every flag used by the run command
func RegisterFlags(fs *pflag.FlagSet) {
	RegisterCollectFlags(fs)
	fs.StringSlice(KeySource, DefaultSources, "Accounts whose NFTs form the redistribution pool")
	fs.StringSlice(KeyIneligible, DefaultIneligible, "Accounts excluded from receiving a share")
	fs.Int(KeyExpectedPoolSize, 0, "Expected pool size for a sanity warning (0 disables)")
	fs.String(KeyOutput, DefaultOutput, "Report JSON path")
	fs.String(KeyOutputCSV, "", "Optional holders CSV path")
	fs.Uint64(KeySeed, 0, "Shuffle seed (0 picks a random seed)")
	fs.String(KeyPostgresURL, "", "Optional postgres URL to also store the report")
}

// NewViper returns a viper instance reading env vars and the given flags
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return v, nil
}

// Load builds and validates a Config
func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Endpoint:         v.GetString(KeyEndpoint),
		Issuer:           v.GetString(KeyIssuer),
		Taxon:            v.GetUint32(KeyTaxon),
		PageSize:         v.GetInt(KeyPageSize),
		RequestDelay:     v.GetDuration(KeyRequestDelay),
		RequestTimeout:   v.GetDuration(KeyRequestTimeout),
		Sources:          splitList(v.GetStringSlice(KeySource)),
		Ineligible:       splitList(v.GetStringSlice(KeyIneligible)),
		ExpectedPoolSize: v.GetInt(KeyExpectedPoolSize),
		Output:           v.GetString(KeyOutput),
		OutputCSV:        v.GetString(KeyOutputCSV),
		Store:            v.GetString(KeyStore),
		Seed:             v.GetUint64(KeySeed),
		Top:              v.GetInt(KeyTop),
		LogLevel:         v.GetString(KeyLogLevel),
		PostgresURL:      v.GetString(KeyPostgresURL),
	}

	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64() | 1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a run
func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("issuer is required"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page-size must be positive, got %d", c.PageSize))
	}
	if c.RequestDelay < 0 {
		errs = append(errs, fmt.Errorf("request-delay must not be negative, got %s", c.RequestDelay))
	}
	if c.ExpectedPoolSize < 0 {
		errs = append(errs, fmt.Errorf("expected-pool-size must not be negative, got %d", c.ExpectedPoolSize))
	}
	if c.Top < 0 {
		errs = append(errs, fmt.Errorf("top must not be negative, got %d", c.Top))
	}
	if !db.Supported(c.Store) {
		errs = append(errs, fmt.Errorf("unsupported store %q", c.Store))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// splitList flattens comma separated entries and drops blanks and duplicates
func splitList(values []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
