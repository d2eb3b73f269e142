package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
tidepool:
  username: "someone@example.com"
  password: "hunter2"
nightscout:
  base_url: "https://cgm.example.com"
  api_secret: "secret-token"
sync:
  target_low: 85
  entered_by: "Pump"
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

// TestLoadValid verifies that a well-formed YAML config loads with all fields
// populated and defaults applied.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tidepool.BaseURL != "https://api.tidepool.org" {
		t.Errorf("tidepool.base_url = %q, want default", cfg.Tidepool.BaseURL)
	}
	if cfg.Tidepool.Username != "someone@example.com" {
		t.Errorf("tidepool.username = %q, want someone@example.com", cfg.Tidepool.Username)
	}
	if cfg.Nightscout.BaseURL != "https://cgm.example.com" {
		t.Errorf("nightscout.base_url = %q", cfg.Nightscout.BaseURL)
	}
	if cfg.Sync.TargetLow != 85 {
		t.Errorf("sync.target_low = %v, want 85", cfg.Sync.TargetLow)
	}
	if cfg.Sync.EnteredBy != "Pump" {
		t.Errorf("sync.entered_by = %q, want Pump", cfg.Sync.EnteredBy)
	}
	if cfg.Sync.Device != "Tidepool" {
		t.Errorf("sync.device = %q, want default Tidepool", cfg.Sync.Device)
	}
}

// TestEnvOverride verifies that TIDESYNC_ env vars take precedence over YAML
// values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("TIDESYNC_NIGHTSCOUT_BASE_URL", "https://other.example.com")
	t.Setenv("TIDESYNC_SYNC_TARGET_LOW", "72")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Nightscout.BaseURL != "https://other.example.com" {
		t.Errorf("nightscout.base_url = %q, want env override", cfg.Nightscout.BaseURL)
	}
	if cfg.Sync.TargetLow != 72 {
		t.Errorf("sync.target_low = %v, want 72", cfg.Sync.TargetLow)
	}
}

// TestDefaults verifies target_low and the attribution labels default when
// omitted.
func TestDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
tidepool:
  username: "u"
  password: "p"
nightscout:
  base_url: "https://cgm.example.com"
  api_secret: "s"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Sync.TargetLow != 80 {
		t.Errorf("sync.target_low = %v, want default 80", cfg.Sync.TargetLow)
	}
	if cfg.Sync.EnteredBy != "Tidepool" || cfg.Sync.Device != "Tidepool" {
		t.Errorf("labels = (%q, %q), want (Tidepool, Tidepool)", cfg.Sync.EnteredBy, cfg.Sync.Device)
	}
}

// TestValidation verifies missing required fields are rejected.
func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing username", `
tidepool:
  password: "p"
nightscout:
  base_url: "https://x"
  api_secret: "s"
`},
		{"missing api secret", `
tidepool:
  username: "u"
  password: "p"
nightscout:
  base_url: "https://x"
`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, c.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestLoadMissingFile verifies a useful error for a nonexistent path.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
