package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  root: http://backend:3000/api/v1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Poll.Interval != 5*time.Second {
		t.Fatalf("expected default poll interval 5s, got %s", cfg.Poll.Interval)
	}
	if cfg.API.Root != "http://backend:3000/api/v1" {
		t.Fatalf("unexpected api root %s", cfg.API.Root)
	}
	if len(cfg.Dashboard.Containers) != 6 || cfg.Dashboard.SeriesContainer != 5 {
		t.Fatalf("unexpected dashboard defaults %+v", cfg.Dashboard)
	}
	if cfg.Dashboard.SeriesWindow != 10*time.Minute {
		t.Fatalf("expected 10m series window, got %s", cfg.Dashboard.SeriesWindow)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %s", cfg.Location())
	}
}

func TestLoadReadsFileValues(t *testing.T) {
	path := writeConfig(t, `
api:
  root: https://blocc.example.com/api/v1
poll:
  interval: 2s
dashboard:
  containers: [2, 4]
  series_container: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Poll.Interval != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %s", cfg.Poll.Interval)
	}
	if len(cfg.Dashboard.Containers) != 2 || cfg.Dashboard.Containers[1] != 4 {
		t.Fatalf("unexpected containers %v", cfg.Dashboard.Containers)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("BLOCC_POLL_INTERVAL", "750ms")
	path := writeConfig(t, "app:\n  name: test\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Poll.Interval != 750*time.Millisecond {
		t.Fatalf("expected env override 750ms, got %s", cfg.Poll.Interval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "relative api root", data: "api:\n  root: /api/v1\n", wantErr: "api.root"},
		{name: "zero interval", data: "poll:\n  interval: 0s\n", wantErr: "poll.interval"},
		{name: "negative container", data: "dashboard:\n  containers: [1, -2]\n", wantErr: "dashboard.containers"},
		{name: "duplicate container", data: "dashboard:\n  containers: [3, 3]\n", wantErr: "twice"},
		{name: "bad timezone", data: "dashboard:\n  timezone: Mars/Olympus\n", wantErr: "dashboard.timezone"},
		{name: "telegram without token", data: "alerting:\n  telegram:\n    enabled: true\n", wantErr: "bot_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.data))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolveMaxPoints(t *testing.T) {
	cfg := &Config{Export: ExportConfig{MaxDataPoints: 100}}
	if cfg.ResolveMaxPoints(0) != 100 || cfg.ResolveMaxPoints(7) != 7 {
		t.Fatal("unexpected max points resolution")
	}
}
