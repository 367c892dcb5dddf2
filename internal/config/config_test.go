package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key-123"
timer:
  rest_seconds: 120
sync:
  template_debounce_ms: 500
snapshot:
  dir: "/var/lib/liftlog"
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
	if cfg.Database.Name != "liftlog" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "liftlog")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if cfg.Timer.RestSeconds != 120 {
		t.Errorf("timer.rest_seconds = %d, want 120", cfg.Timer.RestSeconds)
	}
	if cfg.Sync.TemplateDebounceMS != 500 {
		t.Errorf("sync.template_debounce_ms = %d, want 500", cfg.Sync.TemplateDebounceMS)
	}
	if cfg.Snapshot.Dir != "/var/lib/liftlog" {
		t.Errorf("snapshot.dir = %q", cfg.Snapshot.Dir)
	}
}

// TestEnvOverride verifies that LIFTLOG_ env vars take precedence over YAML values.
// This ensures production deployments can override config via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("LIFTLOG_DB_HOST", "override-host")
	t.Setenv("LIFTLOG_DB_PORT", "9999")
	t.Setenv("LIFTLOG_AUTH_API_KEY", "env-key")
	t.Setenv("LIFTLOG_TIMER_REST_SECONDS", "60")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "env-key")
	}
	if cfg.Timer.RestSeconds != 60 {
		t.Errorf("timer.rest_seconds = %d, want 60", cfg.Timer.RestSeconds)
	}
}

// TestDefaults verifies that timer and sync settings get sensible defaults
// when the YAML omits them.
func TestDefaults(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
auth:
  api_key: "k"
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timer.RestSeconds != 90 {
		t.Errorf("timer.rest_seconds default = %d, want 90", cfg.Timer.RestSeconds)
	}
	if cfg.Sync.TemplateDebounceMS != 1000 {
		t.Errorf("sync.template_debounce_ms default = %d, want 1000", cfg.Sync.TemplateDebounceMS)
	}
}

// TestValidationErrors verifies that required fields are enforced.
func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing server port",
			yaml: `
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
auth:
  api_key: "k"
`,
			wantErr: "server.port",
		},
		{
			name: "missing database host",
			yaml: `
server:
  port: 8080
database:
  port: 5432
  name: "liftlog"
  user: "liftlog"
auth:
  api_key: "k"
`,
			wantErr: "database.host",
		},
		{
			name: "missing api key",
			yaml: `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
`,
			wantErr: "auth.api_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

// TestLoadMissingFile verifies the error on a nonexistent config path.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestDSN verifies the PostgreSQL connection string format, including the
// sslmode fallback.
func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db.internal", Port: 5432, Name: "liftlog",
		User: "app", Password: "pw", SSLMode: "require",
	}
	want := "postgres://app:pw@db.internal:5432/liftlog?sslmode=require"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	db.SSLMode = ""
	if got := db.DSN(); !strings.HasSuffix(got, "sslmode=disable") {
		t.Errorf("DSN() = %q, want sslmode=disable fallback", got)
	}
}
