package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  path: "/var/lib/nextrep/nextrep.db"
auth:
  api_key: "test-key-123"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "/var/lib/nextrep/nextrep.db" {
		t.Errorf("database.path = %q, want %q", cfg.Database.Path, "/var/lib/nextrep/nextrep.db")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
}

// TestEnvOverride verifies that NEXTREP_ env vars take precedence over YAML values.
// This ensures production deployments can override config via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("NEXTREP_SERVER_PORT", "9999")
	t.Setenv("NEXTREP_DB_PATH", "/tmp/override.db")
	t.Setenv("NEXTREP_AUTH_API_KEY", "env-key")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("database.path = %q, want %q", cfg.Database.Path, "/tmp/override.db")
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "env-key")
	}
	// Unchanged fields should keep YAML values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
}

// TestValidationMissingPort verifies that a config with no port and no
// tailscale listener is rejected.
func TestValidationMissingPort(t *testing.T) {
	yaml := `
server:
  host: "0.0.0.0"
database:
  path: "/tmp/nextrep.db"
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for missing port")
	}
}

// TestValidationMissingDatabasePath verifies that a missing database path is rejected.
func TestValidationMissingDatabasePath(t *testing.T) {
	yaml := `
server:
  port: 8080
database: {}
`
	_, err := Load(writeTemp(t, yaml))
	if err == nil {
		t.Fatal("expected validation error for missing database path")
	}
}

// TestValidationTailscaleHostname verifies that enabling tailscale requires a
// hostname, and that a tailscale listener satisfies the port requirement.
func TestValidationTailscaleHostname(t *testing.T) {
	missing := `
database:
  path: "/tmp/nextrep.db"
tailscale:
  enabled: true
`
	if _, err := Load(writeTemp(t, missing)); err == nil {
		t.Fatal("expected validation error for missing tailscale hostname")
	}

	valid := `
database:
  path: "/tmp/nextrep.db"
tailscale:
  enabled: true
  hostname: "nextrep"
`
	if _, err := Load(writeTemp(t, valid)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestLoadMissingFile verifies that a missing config file returns a clear error.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
