package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/tripcost/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("tripcost-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pricing.WalkSpeedKmh != 5 || cfg.Pricing.DriveSpeedKmh != 25 {
		t.Errorf("unexpected speeds %+v", cfg.Pricing)
	}
	if cfg.Pricing.FreeBookingMinutes != 15 {
		t.Errorf("expected 15 free minutes, got %v", cfg.Pricing.FreeBookingMinutes)
	}
	if cfg.Pricing.VAT != 1.21 {
		t.Errorf("expected VAT 1.21, got %v", cfg.Pricing.VAT)
	}
	if cfg.Telemetry.ServiceName != "tripcost-test" {
		t.Errorf("expected service name tripcost-test, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRIPCOST_PROVIDER_CITY_ID", "bilbao")
	t.Setenv("TRIPCOST_PRICING_VAT", "1.1")

	cfg, err := config.Load("tripcost-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider.CityID != "bilbao" {
		t.Errorf("expected city bilbao, got %s", cfg.Provider.CityID)
	}
	if cfg.Pricing.VAT != 1.1 {
		t.Errorf("expected VAT 1.1, got %v", cfg.Pricing.VAT)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "provider.base_url", "pricing.vat", "database.host", "valkey.addr"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "tripcost", SSLMode: "disable"}
	if got := d.DSN(); got != "postgres://u:p@db:5432/tripcost?sslmode=disable" {
		t.Errorf("unexpected dsn %s", got)
	}
}
