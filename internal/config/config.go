package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Access and refresh tokens are signed with two
// separate secrets so that a leaked access-token secret cannot be used to
// forge refresh tokens.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	AccessSecret   string // secret used to sign access tokens
	RefreshSecret  string // secret used to sign refresh tokens
	AccessTTLMin   int    // access token time‑to‑live in minutes
	RefreshTTLDays int    // refresh token time‑to‑live in days
	CodeTTLMin     int    // SMS verification code time‑to‑live in minutes
	CodesPerHour   int    // max verification codes issued per phone per hour
	BcryptCost     int    // bcrypt cost for password hashing
	AuthBypass     bool   // dev-only: skip credential checks and inject a fixed admin
	SMSBaseURL     string // SMS provider endpoint (empty selects the log dispatcher)
	SMSAccount     string // SMS provider account id
	SMSPassword    string // SMS provider password
	SMSSender      string // SMS sender id
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  AUTH_BYPASS is a
// security-sensitive switch: it disables the session gate entirely, so it is
// refused outright when APP_ENV=prod rather than silently ignored.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),                    // environment (dev/test/prod)
		Port:           must("APP_PORT"),                   // port to bind the HTTP server
		DBUser:         must("DB_USER"),                    // database user
		DBPass:         os.Getenv("DB_PASS"),               // database password (empty allowed)
		DBHost:         must("DB_HOST"),                    // database host
		DBPort:         must("DB_PORT"),                    // database port
		DBName:         must("DB_NAME"),                    // database name
		AccessSecret:   must("ACCESS_TOKEN_SECRET"),        // access token signing secret
		RefreshSecret:  must("REFRESH_TOKEN_SECRET"),       // refresh token signing secret
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),    // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),  // TTL for refresh tokens in days
		CodeTTLMin:     intOr("SMS_CODE_TTL_MIN", 2),       // TTL for verification codes in minutes
		CodesPerHour:   intOr("SMS_CODES_PER_HOUR", 10),    // per-phone hourly issuance cap
		BcryptCost:     mustInt("BCRYPT_COST"),             // bcrypt cost factor
		AuthBypass:     os.Getenv("AUTH_BYPASS") == "true", // dev bypass flag
		SMSBaseURL:     os.Getenv("SMS_BASE_URL"),          // provider endpoint
		SMSAccount:     os.Getenv("SMS_ACCOUNT"),           // provider account
		SMSPassword:    os.Getenv("SMS_PASSWORD"),          // provider password
		SMSSender:      os.Getenv("SMS_SENDER"),            // provider sender id
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		log.Fatalf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if cfg.AuthBypass && cfg.Env == "prod" {
		log.Fatalf("AUTH_BYPASS is not allowed when APP_ENV=prod")
	}
	return cfg
}

// IsDev reports whether the service runs in development mode.  Development
// mode skips the send-code issuance cap and includes internal error details
// in 500 responses.
func (c Config) IsDev() bool { return c.Env == "dev" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer environment variable, falling back to the
// given default when unset.  A malformed value is still fatal.
func intOr(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
