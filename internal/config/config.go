// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Accounts  AccountsConfig  `koanf:"accounts"`
	Query     QueryConfig     `koanf:"query"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	// PublicURL prefixes the links served by /api/help. Empty keeps them
	// relative to the request host.
	PublicURL string `koanf:"public_url"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig selects one of the two store adapters. URL is a file path
// (or file: DSN) for sqlite and a connection string for postgres.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	Migrate         bool          `koanf:"migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

type JWTConfig struct {
	Enabled           bool          `koanf:"enabled"`
	GenerateKeys      bool          `koanf:"generate_keys"`
	PrivateKeyPath    string        `koanf:"private_key_path"`
	PublicKeyPath     string        `koanf:"public_key_path"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// AccountsConfig holds the account policy. AdminEmail is the distinguished
// administrator address; AdminPassword, when set, seeds that account at
// start-up.
type AccountsConfig struct {
	AdminEmail        string `koanf:"admin_email"`
	AdminName         string `koanf:"admin_name"`
	AdminPassword     string `koanf:"admin_password"`
	MinPasswordLength int    `koanf:"min_password_length"`
}

type QueryConfig struct {
	MaxRows int           `koanf:"max_rows"`
	Timeout time.Duration `koanf:"timeout"`
}

// Load reads defaults, then the optional YAML file, then the environment.
// Later sources win.
func Load(configPath string) (*Config, error) {
	return load(configPath)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.normalize()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Accounts.AdminEmail = strings.ToLower(strings.TrimSpace(c.Accounts.AdminEmail))
}

var defaults = map[string]any{
	"app.name":        "MedAssist API",
	"app.version":     "1.0.0",
	"app.environment": "development",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     "30s",
	"server.write_timeout":    "30s",
	"server.idle_timeout":     "120s",
	"server.shutdown_timeout": "15s",

	"database.driver":             DriverSQLite,
	"database.url":                "medassist.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "1h",
	"database.conn_max_idle_time": "30m",
	"database.migrate":            true,

	"redis.pool_size":      10,
	"redis.min_idle_conns": 5,

	"jwt.enabled":             false,
	"jwt.generate_keys":       false,
	"jwt.access_token_expire": "12h",
	"jwt.issuer":              "medassist",
	"jwt.audience":            "medassist-api",
	"jwt.private_key_path":    "keys/private.pem",
	"jwt.public_key_path":     "keys/public.pem",

	"rate_limit.requests": 300,
	"rate_limit.window":   "1m",
	"rate_limit.burst":    50,

	"cors.allowed_origins": []string{"*"},
	"cors.allowed_methods":   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Content-Type", "Authorization", "X-Request-ID"},
	"cors.allow_credentials": false,
	"cors.max_age":           300,

	"log.level":  "info",
	"log.format": "json",

	"otel.enabled":      false,
	"otel.insecure":     true,
	"otel.sample_rate":  0.1,
	"otel.service_name": "medassist",

	"metrics.enabled": true,
	"metrics.path":    "/metrics",

	"accounts.admin_email":         "caruntu.emanuel@gmail.com",
	"accounts.admin_name":          "Admin",
	"accounts.min_password_length": 6,

	"query.max_rows": 5000,
	"query.timeout":  "10s",
}

var envKeyMap = map[string]string{
	"DATABASE_DRIVER":             "database.driver",
	"DATABASE_URL":                "database.url",
	"DATABASE_MIGRATE":            "database.migrate",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"PUBLIC_BASE_URL":             "app.public_url",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_ENABLED":                 "jwt.enabled",
	"JWT_GENERATE_KEYS":           "jwt.generate_keys",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"METRICS_ENABLED":             "metrics.enabled",
	"ADMIN_EMAIL":                 "accounts.admin_email",
	"ADMIN_NAME":                  "accounts.admin_name",
	"ADMIN_PASSWORD":              "accounts.admin_password",
	"QUERY_MAX_ROWS":              "query.max_rows",
	"QUERY_TIMEOUT":               "query.timeout",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func (c *Config) validate() error {
	errs := []error{
		c.Database.validate(),
		c.Accounts.validate(),
		c.JWT.validate(c.IsProduction()),
		c.CORS.validate(),
		c.Server.validate(),
		c.RateLimit.validate(),
	}

	if c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure {
		errs = append(errs, errors.New("OTEL_INSECURE must be false in production"))
	}
	if c.Query.MaxRows <= 0 {
		errs = append(errs, errors.New("query.max_rows must be positive"))
	}

	return errors.Join(errs...)
}

func (d DatabaseConfig) validate() error {
	if d.Driver != DriverSQLite && d.Driver != DriverPostgres {
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q",
			DriverSQLite, DriverPostgres, d.Driver)
	}
	if d.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func (a AccountsConfig) validate() error {
	if a.AdminEmail == "" {
		return errors.New("ADMIN_EMAIL is required")
	}
	if _, err := mail.ParseAddress(a.AdminEmail); err != nil {
		return fmt.Errorf("ADMIN_EMAIL is not a valid address: %w", err)
	}
	if a.MinPasswordLength < 1 {
		return errors.New("accounts.min_password_length must be positive")
	}
	return nil
}

func (j JWTConfig) validate(production bool) error {
	switch {
	case !j.Enabled:
		return nil
	case j.PrivateKeyPath == "" || j.PublicKeyPath == "":
		return errors.New("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH are required")
	case production && j.GenerateKeys:
		return errors.New("JWT_GENERATE_KEYS must be false in production")
	}
	return nil
}

func (c CORSConfig) validate() error {
	if c.AllowCredentials && slices.Contains(c.AllowedOrigins, "*") {
		return errors.New("CORS wildcard '*' cannot be used with AllowCredentials")
	}
	return nil
}

func (r RateLimitConfig) validate() error {
	if r.Requests <= 0 || r.Window <= 0 {
		return errors.New("rate_limit.requests and rate_limit.window must be positive")
	}
	return nil
}

func (s ServerConfig) validate() error {
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 {
		return errors.New("server read and write timeouts must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
