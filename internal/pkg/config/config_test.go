package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Odds.NavigationTimeout != 10*time.Second {
		t.Errorf("Odds.NavigationTimeout = %v, want 10s", cfg.Odds.NavigationTimeout)
	}
	if cfg.Odds.SelectorTimeout != 5*time.Second {
		t.Errorf("Odds.SelectorTimeout = %v, want 5s", cfg.Odds.SelectorTimeout)
	}
	if cfg.Odds.MaxRows != 100 {
		t.Errorf("Odds.MaxRows = %d, want 100", cfg.Odds.MaxRows)
	}
	if cfg.Schedule.Open != "08:00" || cfg.Schedule.Close != "23:30" {
		t.Errorf("Schedule = %s-%s, want 08:00-23:30", cfg.Schedule.Open, cfg.Schedule.Close)
	}
	want := []string{"image", "stylesheet", "font"}
	if strings.Join(cfg.Browser.BlockedResources, ",") != strings.Join(want, ",") {
		t.Errorf("Browser.BlockedResources = %v, want %v", cfg.Browser.BlockedResources, want)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9100
odds:
  navigation_timeout: 3s
  max_rows: 20
schedule:
  timezone: Asia/Tokyo
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Odds.NavigationTimeout != 3*time.Second {
		t.Errorf("Odds.NavigationTimeout = %v, want 3s", cfg.Odds.NavigationTimeout)
	}
	if cfg.Odds.MaxRows != 20 {
		t.Errorf("Odds.MaxRows = %d, want 20", cfg.Odds.MaxRows)
	}
	// untouched keys keep their defaults
	if cfg.Odds.OddsType != "odds3tan" {
		t.Errorf("Odds.OddsType = %q, want odds3tan", cfg.Odds.OddsType)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "Asia/Tokyo" {
		t.Errorf("Location() = %s, want Asia/Tokyo", loc)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ODDS_SERVER_PORT", "9200")
	t.Setenv("ODDS_BROWSER_MAX_PAGES", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want 9200", cfg.Server.Port)
	}
	if cfg.Browser.MaxPages != 2 {
		t.Errorf("Browser.MaxPages = %d, want 2", cfg.Browser.MaxPages)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"zero pages", func(c *Config) { c.Browser.MaxPages = 0 }, "browser.max_pages"},
		{"bad open", func(c *Config) { c.Schedule.Open = "8am" }, "schedule.open"},
		{"bad close", func(c *Config) { c.Schedule.Close = "25:99" }, "schedule.close"},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, "schedule.timezone"},
		{"zero timeout", func(c *Config) { c.Odds.SelectorTimeout = 0 }, "timeouts"},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
