package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration for the booking service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	CommitRetries   int
	ShutdownTimeout time.Duration
}

// Load parses configuration from the current process environment, applying
// defaults for optional fields and accumulating every invalid entry into a
// single error so operators see the full picture at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:booking.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		CommitRetries:   3,
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 3)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if retriesValue := strings.TrimSpace(os.Getenv("BOOKING_COMMIT_RETRIES")); retriesValue != "" {
		retries, err := strconv.Atoi(retriesValue)
		if err != nil || retries < 0 {
			invalid = append(invalid, "BOOKING_COMMIT_RETRIES")
		} else {
			cfg.CommitRetries = retries
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("BOOKING_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "BOOKING_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
