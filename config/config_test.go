package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  address: "127.0.0.1"
  port: 8080
database:
  path: "/tmp/test.db"
energy_price:
  area: "SE3"
  surcharge_ore: 6.25
  publication_hour: 13
  retry_interval_minutes: 15
  normal_interval_hours: 2
  timezone: "Europe/Stockholm"
logging:
  console_level: "DEBUG"
`)

	cnfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	t.Run("Api", func(t *testing.T) {
		if cnfg.Api.Address != "127.0.0.1" {
			t.Errorf("expected address 127.0.0.1, got %s", cnfg.Api.Address)
		}
		if cnfg.Api.Port != 8080 {
			t.Errorf("expected port 8080, got %d", cnfg.Api.Port)
		}
	})

	t.Run("EnergyPrice", func(t *testing.T) {
		if cnfg.EnergyPrice.Area != "SE3" {
			t.Errorf("expected area SE3, got %s", cnfg.EnergyPrice.Area)
		}
		if got := cnfg.EnergyPrice.GetSurchargeOre(); got != 6.25 {
			t.Errorf("expected surcharge 6.25, got %f", got)
		}
		if got := cnfg.EnergyPrice.GetPublicationHour(); got != 13 {
			t.Errorf("expected publication hour 13, got %d", got)
		}
		if got := cnfg.EnergyPrice.GetRetryInterval(); got != 15*time.Minute {
			t.Errorf("expected retry interval 15m, got %v", got)
		}
		if got := cnfg.EnergyPrice.GetNormalInterval(); got != 2*time.Hour {
			t.Errorf("expected normal interval 2h, got %v", got)
		}
		loc, err := cnfg.EnergyPrice.GetLocation()
		if err != nil {
			t.Fatalf("GetLocation() unexpected error: %v", err)
		}
		if loc.String() != "Europe/Stockholm" {
			t.Errorf("expected Europe/Stockholm, got %s", loc)
		}
	})

	t.Run("Mqtt disabled by default", func(t *testing.T) {
		if cnfg.Mqtt.Enabled() {
			t.Error("expected MQTT to be disabled without a host")
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/test.db"
energy_price:
  area: "SE4"
`)

	cnfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if got := cnfg.EnergyPrice.GetPublicationHour(); got != 14 {
		t.Errorf("expected default publication hour 14, got %d", got)
	}
	if got := cnfg.EnergyPrice.GetRetryInterval(); got != 30*time.Minute {
		t.Errorf("expected default retry interval 30m, got %v", got)
	}
	if got := cnfg.EnergyPrice.GetNormalInterval(); got != time.Hour {
		t.Errorf("expected default normal interval 1h, got %v", got)
	}
	if got := cnfg.EnergyPrice.GetRetentionDays(); got != 2 {
		t.Errorf("expected default retention 2 days, got %d", got)
	}
	if got := cnfg.EnergyPrice.GetSurchargeOre(); got != 0 {
		t.Errorf("expected default surcharge 0, got %f", got)
	}
	if got := cnfg.Logging.GetDbMaxEntries(); got != 10000 {
		t.Errorf("expected default db max entries 10000, got %d", got)
	}
}

func TestLoadConfigDefaultsAreaToSE4(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/test.db"
`)

	cnfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() with no area: %v", err)
	}
	if cnfg.EnergyPrice.Area != "SE4" {
		t.Errorf("expected default area SE4, got %q", cnfg.EnergyPrice.Area)
	}
}

func TestLoadConfigRejectsUnknownArea(t *testing.T) {
	path := writeConfig(t, `
energy_price:
  area: "NO1"
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported price area")
	}
}
