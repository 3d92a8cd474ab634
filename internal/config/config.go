// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration of the dealer-auth service.
// It is populated by merging an optional .env file, environment variables,
// command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix  — prefix applied to nested env lookups (caarlos0/env).
//   - env        — environment variable name for scalar fields.
//   - envDefault — value used when the variable is unset.
type StructuredConfig struct {
	// App holds process-level settings: name, version and log level.
	App App `envPrefix:"APP_"`

	// Auth holds the token, lockout and rate-limit parameters of the auth core.
	Auth Auth `envPrefix:"AUTH_"`

	// Storage holds persistence settings. An empty DSN selects the in-memory
	// stores.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds HTTP/gRPC addresses, timeouts, CORS and API throttling.
	Server Server `envPrefix:"SERVER_"`

	// Workers holds housekeeping settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file merged
	// on top of env and flags.
	JSONFilePath string `env:"CONFIG"`

	// EnvFilePath is the optional path to a .env file loaded before the
	// environment is parsed.
	EnvFilePath string `env:"ENV_FILE"`
}

// App holds process-level settings.
type App struct {
	Name     string `env:"NAME" envDefault:"dealer-auth"`
	Version  string `env:"VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"`
}

// Auth holds the parameters of the authentication core.
type Auth struct {
	// TokenSecret signs access and refresh tokens. Either base64-encoded key
	// bytes or an arbitrary passphrase.
	TokenSecret string `env:"TOKEN_SECRET"`

	// TokenIssuer is the "iss" claim of every issued token.
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"dealer-auth"`

	AccessTokenTTL       time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL      time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	ResetTokenTTL        time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`

	// BlacklistTTL is how long an access token stays denied after logout.
	BlacklistTTL time.Duration `env:"BLACKLIST_TTL" envDefault:"15m"`

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"15m"`

	MaxFailedAttempts int           `env:"MAX_FAILED_ATTEMPTS" envDefault:"5"`
	LockoutDuration   time.Duration `env:"LOCKOUT_DURATION" envDefault:"15m"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// Storage groups the configuration of all storage backends.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds the relational database connection settings.
type DB struct {
	DSN             string        `env:"DATABASE_URI"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"4"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

// InMemory reports whether no database is configured.
func (d DB) InMemory() bool {
	return d.DSN == ""
}

// Server holds network settings of the HTTP and gRPC servers.
type Server struct {
	HTTPAddress    string        `env:"ADDRESS" envDefault:":8080"`
	GRPCAddress    string        `env:"GRPC_ADDRESS"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// TrustedProxies lists proxy addresses or CIDR prefixes whose
	// X-Forwarded-For / X-Real-IP headers are honoured. Requests from any
	// other peer are identified by their socket address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// APIRate and APIBurst throttle all API requests per client IP
	// (token bucket). A zero rate disables throttling.
	APIRate  float64 `env:"API_RATE" envDefault:"20"`
	APIBurst int     `env:"API_BURST" envDefault:"40"`
}

// Workers holds configuration of background housekeeping.
type Workers struct {
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`

	// ClientIdleTimeout is how long API throttling state of a silent client
	// is kept.
	ClientIdleTimeout time.Duration `env:"CLIENT_IDLE_TIMEOUT" envDefault:"10m"`
}

// GetStructuredConfig builds the service configuration from the default
// sources using the process arguments.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDotEnv().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		build()
}
