// Package config loads server configuration from built-in defaults, an
// optional YAML file, environment variables and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "HYDROPAL_"

// Config holds the configuration values for the server.
type Config struct {
	// Address is the server's listening address (ip:port).
	Address string `koanf:"address"`
	// DatabaseDSN is the Postgres connection string.
	DatabaseDSN string `koanf:"database_dsn"`

	// JWTSecret signs and verifies bearer tokens.
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	// BcryptCost is the password hashing cost.
	BcryptCost int `koanf:"bcrypt_cost"`

	// Timezone is the IANA zone in which days and months are counted.
	Timezone string `koanf:"timezone"`
	// Environment is "development" or "production". Error details are only
	// exposed outside production.
	Environment string `koanf:"environment"`
	// FrontendURL is the only origin allowed by CORS.
	FrontendURL string `koanf:"frontend_url"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `koanf:"tls_cert"`
	TLSKey  string `koanf:"tls_key"`

	LogLevel string `koanf:"log_level"`
	// RateLimit is the number of requests per minute and client IP accepted
	// on the register and login routes. Zero disables limiting.
	RateLimit int `koanf:"rate_limit"`

	// Retention is the age after which entries are deleted. Zero keeps
	// entries forever.
	Retention       time.Duration `koanf:"retention"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Address:         "localhost:8080",
		TokenTTL:        30 * 24 * time.Hour,
		BcryptCost:      10,
		Timezone:        "UTC",
		Environment:     "development",
		FrontendURL:     "http://localhost:3000",
		LogLevel:        "info",
		RateLimit:       20,
		CleanupInterval: time.Hour,
		ShutdownTimeout: 10 * time.Second,
	}
}

// legacyEnv maps unprefixed variable names kept for existing deployments.
var legacyEnv = map[string]string{
	"JWT_SECRET":   "jwt_secret",
	"NODE_ENV":     "environment",
	"FRONTEND_URL": "frontend_url",
	"DATABASE_DSN": "database_dsn",
}

// Load builds a Config from args (without the program name) and the
// process environment. Precedence, lowest first: defaults, YAML file given
// by -c/-config or CONFIG, legacy variables, HYDROPAL_* variables, flags
// set in args, SERVER_ADDRESS.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("hydropal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var address, dsn, configPath string
	fs.StringVar(&address, "a", "", "run on ip:port server")
	fs.StringVar(&dsn, "d", "", "db address")
	fs.StringVar(&configPath, "config", "", "path to config file")
	fs.StringVar(&configPath, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(key string) string {
		return legacyEnv[key]
	}), nil); err != nil {
		return nil, fmt.Errorf("load legacy environment: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var setErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			setErr = errors.Join(setErr, k.Set("address", address))
		case "d":
			setErr = errors.Join(setErr, k.Set("database_dsn", dsn))
		}
	})
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		setErr = errors.Join(setErr, k.Set("address", addr))
	}
	if setErr != nil {
		return nil, fmt.Errorf("apply overrides: %w", setErr)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database_dsn is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, errors.New("tls_cert and tls_key must be set together"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit must not be negative"))
	}
	if c.Retention < 0 {
		errs = append(errs, errors.New("retention must not be negative"))
	}
	if c.Retention > 0 && c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("cleanup_interval must be positive when retention is set"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone. "Local" is refused so results never depend
// on the host's zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return nil, fmt.Errorf("timezone %q must be an IANA zone name", c.Timezone)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// TLSEnabled reports whether HTTPS should be served.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
