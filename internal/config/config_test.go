package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gantry.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7433 {
		t.Errorf("expected default port 7433, got %d", cfg.Server.Port)
	}
	if cfg.Worker.Count != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Worker.Count)
	}
	// The visibility window must outlive a full solve attempt, or a slow
	// solve would be redelivered to a second worker mid-processing.
	if cfg.Worker.Visibility.Duration <= cfg.Solver.Budget.Duration {
		t.Errorf("default visibility %v not above solver budget %v",
			cfg.Worker.Visibility.Duration, cfg.Solver.Budget.Duration)
	}
	if cfg.Credits.InitialGrant != 100 {
		t.Errorf("expected initial grant 100, got %d", cfg.Credits.InitialGrant)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9000

[database]
path = "/tmp/test.db"

[worker]
count = 4
poll_interval = "250ms"
visibility = "90s"

[solver]
endpoint = "http://solver.local:8080"
budget = "30s"

[credits]
job_cost = 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected default host retained, got %s", cfg.Server.Host)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("expected database path override, got %s", cfg.Database.Path)
	}
	if cfg.Worker.Count != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Worker.Count)
	}
	if cfg.Worker.PollInterval.Duration != 250*time.Millisecond {
		t.Errorf("expected poll interval 250ms, got %v", cfg.Worker.PollInterval.Duration)
	}
	if cfg.Worker.Visibility.Duration != 90*time.Second {
		t.Errorf("expected visibility 90s, got %v", cfg.Worker.Visibility.Duration)
	}
	if cfg.Solver.Endpoint != "http://solver.local:8080" {
		t.Errorf("expected solver endpoint, got %s", cfg.Solver.Endpoint)
	}
	if cfg.Solver.Budget.Duration != 30*time.Second {
		t.Errorf("expected budget 30s, got %v", cfg.Solver.Budget.Duration)
	}
	if cfg.Credits.JobCost != 25 {
		t.Errorf("expected job cost 25, got %d", cfg.Credits.JobCost)
	}
	if cfg.Credits.InitialGrant != 100 {
		t.Errorf("expected default grant retained, got %d", cfg.Credits.InitialGrant)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "[server]\nport = 0\n"},
		{"zero workers", "[worker]\ncount = 0\n"},
		{"empty db path", "[database]\npath = \"\"\n"},
		{"negative job cost", "[credits]\njob_cost = -1\n"},
		{"bad duration", "[worker]\npoll_interval = \"soon\"\n"},
		{"visibility within budget", "[worker]\nvisibility = \"30s\"\n\n[solver]\nbudget = \"30s\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	if got := cfg.Addr(); got != "127.0.0.1:7433" {
		t.Errorf("expected 127.0.0.1:7433, got %s", got)
	}
}
