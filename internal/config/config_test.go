package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const validConfig = `
azimuth:
  dir_pin: 17
  pwm_pin: 18
  sensor_channel: 0
  fwd_limit_pin: 22
  rev_limit_pin: 23

elevation:
  dir_pin: 27
  pwm_pin: 13
  sensor_channel: 1
  fwd_limit_pin: 24
  rev_limit_pin: 25

network:
  event_addr: "192.168.1.178:8889"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Azimuth.SpanDeg != 360 {
		t.Errorf("azimuth span = %d, want 360", cfg.Azimuth.SpanDeg)
	}
	if cfg.Elevation.SpanDeg != 90 {
		t.Errorf("elevation span = %d, want 90", cfg.Elevation.SpanDeg)
	}
	if cfg.Azimuth.SpeedPct != 30 {
		t.Errorf("azimuth speed = %d, want 30", cfg.Azimuth.SpeedPct)
	}
	if cfg.Elevation.SpeedPct != 20 {
		t.Errorf("elevation speed = %d, want 20", cfg.Elevation.SpeedPct)
	}
	if cfg.Network.RequestAddr != ":8888" {
		t.Errorf("request addr = %q, want :8888", cfg.Network.RequestAddr)
	}
	if cfg.Defaults.DeadbandDeg != 2 {
		t.Errorf("deadband = %d, want 2", cfg.Defaults.DeadbandDeg)
	}
	if cfg.Tick() != 25*time.Millisecond {
		t.Errorf("tick = %v, want 25ms", cfg.Tick())
	}
	if cfg.CalTimeout() != 30*time.Second {
		t.Errorf("cal timeout = %v, want 30s", cfg.CalTimeout())
	}
}

func TestLoad_TickBudgets(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig+`
defaults:
  tick_ms: 50
  move_timeout_s: 10
  cal_timeout_s: 20
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.MoveTicks(); got != 200 {
		t.Errorf("MoveTicks = %d, want 200", got)
	}
	if got := cfg.CalTicks(); got != 400 {
		t.Errorf("CalTicks = %d, want 400", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	for _, test := range []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing event addr",
			content: strings.Replace(validConfig, "event_addr", "other", 1),
			wantErr: "event_addr",
		},
		{
			name:    "missing pins",
			content: strings.Replace(validConfig, "dir_pin: 17", "dir_pin: 0", 1),
			wantErr: "dir_pin",
		},
		{
			name:    "bad sensor channel",
			content: strings.Replace(validConfig, "sensor_channel: 0", "sensor_channel: 9", 1),
			wantErr: "sensor_channel",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error %q does not mention %q", err, test.wantErr)
			}
		})
	}
}

func TestLoad_SpanAndSpeedValidation(t *testing.T) {
	content := strings.Replace(validConfig, "dir_pin: 17", "dir_pin: 17\n  span_deg: 400", 1)
	if _, err := Load(writeConfig(t, content)); err == nil {
		t.Error("span_deg 400 should be rejected")
	}

	content = strings.Replace(validConfig, "dir_pin: 17", "dir_pin: 17\n  speed_pct: 150", 1)
	if _, err := Load(writeConfig(t, content)); err == nil {
		t.Error("speed_pct 150 should be rejected")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
