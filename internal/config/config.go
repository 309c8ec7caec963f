package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for the
// hold lifecycle knobs.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	JWTSecret     string        // secret shared with the identity provider
	HoldTTL       time.Duration // default provisional hold lifetime
	SweepInterval time.Duration // background expiry sweep cadence
	PublishEvents bool          // whether to emit booking events to the broker
	PaySuccess    float64       // simulated gateway success rate, 0..1
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Lifecycle knobs
// have sensible defaults so a dev environment only needs the database
// and JWT settings.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		HoldTTL:       optDuration("HOLD_TTL", 10*time.Minute),
		SweepInterval: optDuration("HOLD_SWEEP_INTERVAL", 30*time.Second),
		PublishEvents: optBool("PUBLISH_EVENTS", true),
		PaySuccess:    optFloat("PAYMENT_SUCCESS_RATE", 1.0),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// optDuration parses an optional duration variable ("90s", "10m").
// Invalid values are fatal so a typo never silently changes the hold
// lifetime.
func optDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}

// optString returns the value of an optional variable, or def when unset.
func optString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// optInt parses an optional integer variable.
func optInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid integer for %s: %q", key, s)
	}
	return n
}

// optBool parses an optional boolean variable.
func optBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool for %s: %q", key, s)
	}
	return b
}

// optFloat parses an optional float variable.
func optFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("invalid float for %s: %q", key, s)
	}
	return f
}
