// Package config loads the gantryd server configuration from a TOML
// file. Every field has a default, so an empty or missing file yields a
// runnable configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFileName is the config file gantryd looks for when no
// path is given.
const DefaultConfigFileName = "gantry.toml"

// Duration wraps time.Duration so TOML values like "90s" parse directly.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the full gantryd server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Worker   WorkerConfig   `toml:"worker"`
	Solver   SolverConfig   `toml:"solver"`
	Credits  CreditsConfig  `toml:"credits"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// WorkerConfig tunes the queue worker pool.
type WorkerConfig struct {
	Count        int      `toml:"count"`
	PollInterval Duration `toml:"poll_interval"`
	Visibility   Duration `toml:"visibility"`
	MaxRetries   int      `toml:"max_retries"`
}

// SolverConfig tunes the optimization strategy layer.
type SolverConfig struct {
	// Endpoint of the remote solver. Empty disables the solver entirely
	// and every job takes the classical fallback.
	Endpoint string `toml:"endpoint"`

	// Budget bounds one optimization attempt before falling back.
	Budget Duration `toml:"budget"`

	// PollInterval and PollCeiling tune the remote result monitor.
	PollInterval Duration `toml:"poll_interval"`
	PollCeiling  Duration `toml:"poll_ceiling"`
}

// CreditsConfig tunes the credit ledger.
type CreditsConfig struct {
	JobCost      int64 `toml:"job_cost"`
	InitialGrant int64 `toml:"initial_grant"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7433,
		},
		Database: DatabaseConfig{
			Path: "gantry.db",
		},
		Worker: WorkerConfig{
			Count:        2,
			PollInterval: Duration{time.Second},
			Visibility:   Duration{5 * time.Minute},
			MaxRetries:   5,
		},
		Solver: SolverConfig{
			Budget:       Duration{2 * time.Minute},
			PollInterval: Duration{5 * time.Second},
			PollCeiling:  Duration{time.Hour},
		},
		Credits: CreditsConfig{
			JobCost:      10,
			InitialGrant: 100,
		},
	}
}

// Load reads the config file at path, layering it over the defaults.
// A missing file is not an error: the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the runtime cannot work with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Worker.Count)
	}
	if c.Worker.PollInterval.Duration <= 0 {
		return fmt.Errorf("worker poll interval must be positive")
	}
	if c.Worker.Visibility.Duration <= 0 {
		return fmt.Errorf("worker visibility window must be positive")
	}
	if c.Solver.Budget.Duration <= 0 {
		return fmt.Errorf("solver budget must be positive")
	}
	if c.Worker.Visibility.Duration <= c.Solver.Budget.Duration {
		// A solve that outlives the visibility window gets redelivered to a
		// second worker while the first is still processing it.
		return fmt.Errorf("worker visibility window (%v) must exceed the solver budget (%v)",
			c.Worker.Visibility.Duration, c.Solver.Budget.Duration)
	}
	if c.Credits.JobCost < 0 {
		return fmt.Errorf("job cost must not be negative")
	}
	if c.Credits.InitialGrant < 0 {
		return fmt.Errorf("initial grant must not be negative")
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
