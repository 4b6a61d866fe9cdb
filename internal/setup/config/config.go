package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v0.1.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentAPIVersion    = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	API    APIConfig
}

// CommonConfig contains configuration shared between the API server and tools.
type CommonConfig struct {
	// Version of the common config.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	Telemetry  Telemetry  `koanf:"telemetry"`
}

// APIConfig contains REST server specific configuration.
type APIConfig struct {
	// Version of the api config.
	Version      int          `koanf:"version"`
	Server       Server       `koanf:"server"`
	Auth         Auth         `koanf:"auth"`
	Notification Notification `koanf:"notification"`
	Badges       Badges       `koanf:"badges"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log files to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
	// Mirror logs to stdout.
	Console bool `koanf:"console"`
	// Enable pprof debugging.
	EnablePprof bool `koanf:"enable_pprof"`
	// pprof server port.
	PprofPort int `koanf:"pprof_port"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database host.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database user.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Disable TLS.
	Insecure bool `koanf:"insecure"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Maximum connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Maximum idle time in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis host.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
	// Disable client-side caching.
	DisableCache bool `koanf:"disable_cache"`
}

// Telemetry contains tracing configuration.
type Telemetry struct {
	// Uptrace DSN. Tracing is disabled when empty.
	UptraceDSN string `koanf:"uptrace_dsn"`
	// Service name reported with spans.
	ServiceName string `koanf:"service_name"`
	// Deployment environment reported with spans.
	Environment string `koanf:"environment"`
}

// Server contains HTTP server configuration.
type Server struct {
	// Listen address.
	Host string `koanf:"host"`
	// Listen port.
	Port int `koanf:"port"`
	// Read timeout in seconds.
	ReadTimeout int `koanf:"read_timeout"`
	// Write timeout in seconds. Event streams are exempt.
	WriteTimeout int `koanf:"write_timeout"`
	// Shutdown grace period in seconds.
	ShutdownTimeout int `koanf:"shutdown_timeout"`
}

// Auth contains bearer token validation settings.
type Auth struct {
	// HMAC secret for HS256 tokens.
	JWTSecret string `koanf:"jwt_secret"`
	// Expected token issuer. Any issuer is accepted when empty.
	Issuer string `koanf:"issuer"`
}

// Notification contains dispatcher configuration.
type Notification struct {
	// Queue capacity before new items are dropped.
	QueueSize int `koanf:"queue_size"`
	// Maximum items handled per tick.
	BatchSize int `koanf:"batch_size"`
	// Dispatcher tick in milliseconds.
	TickIntervalMS int `koanf:"tick_interval_ms"`
	// Minimum minutes between reputation-changed notifications to one user.
	ReputationThrottleMinutes int `koanf:"reputation_throttle_minutes"`
	// Fan realtime messages out through Redis pub/sub.
	RedisFanout bool `koanf:"redis_fanout"`
}

// TickInterval returns the dispatcher tick as a duration.
func (n Notification) TickInterval() time.Duration {
	return time.Duration(n.TickIntervalMS) * time.Millisecond
}

// ReputationThrottle returns the throttle window as a duration.
func (n Notification) ReputationThrottle() time.Duration {
	return time.Duration(n.ReputationThrottleMinutes) * time.Minute
}

// Badges contains badge progress configuration.
type Badges struct {
	// Default number of unearned badges returned by progress queries.
	ProgressCount int `koanf:"progress_count"`
}

// SearchPaths lists the directories searched for config files, in order.
func SearchPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return []string{
		".agora",
		filepath.Join(homeDir, ".agora", "config"),
		"/etc/agora/config",
		"/app/config",
		"config",
		".",
	}, nil
}

// LoadConfig loads the configuration from the default search paths.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	paths, err := SearchPaths()
	if err != nil {
		return nil, "", err
	}
	return LoadFrom(paths...)
}

// LoadFrom loads common.toml and api.toml, taking each from the first
// path that has it.
func LoadFrom(paths ...string) (*Config, string, error) {
	var (
		config         Config
		usedConfigPath string
	)

	files := []struct {
		name   string
		target any
	}{
		{"common", &config.Common},
		{"api", &config.API},
	}

	for _, f := range files {
		path, err := loadFile(paths, f.name, f.target)
		if err != nil {
			return nil, "", err
		}

		if usedConfigPath == "" {
			usedConfigPath = path
		}
	}

	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("api", config.API.Version, CurrentAPIVersion); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// loadFile unmarshals the first <name>.toml found into target and returns
// the directory it came from.
func loadFile(paths []string, name string, target any) (string, error) {
	for _, path := range paths {
		k := koanf.New(".")

		configPath := filepath.Join(path, name+".toml")
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			continue
		}

		if err := k.Unmarshal("", target); err != nil {
			return "", fmt.Errorf("error unmarshaling %s: %w", configPath, err)
		}

		return path, nil
	}

	return "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, name)
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/agorahq/agora/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
