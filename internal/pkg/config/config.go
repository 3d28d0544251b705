package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	RequestTimeout int `mapstructure:"request_timeout"`
}

// ProviderConfig points at the car-sharing operator's public API.
type ProviderConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	CityID    string `mapstructure:"city_id"`
	GeozoneID string `mapstructure:"geozone_id"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

// PricingConfig holds the tunable constants of the estimation.
type PricingConfig struct {
	WalkSpeedKmh       float64 `mapstructure:"walk_speed_kmh"`
	DriveSpeedKmh      float64 `mapstructure:"drive_speed_kmh"`
	FreeBookingMinutes float64 `mapstructure:"free_booking_minutes"`
	VAT                float64 `mapstructure:"vat"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr             string `mapstructure:"addr"`
	TariffTTLSeconds int    `mapstructure:"tariff_ttl_seconds"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort    string `mapstructure:"host_port"`
	Namespace   string `mapstructure:"namespace"`
	TaskQueue   string `mapstructure:"task_queue"`
	RefreshCron string `mapstructure:"refresh_cron"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TRIPCOST_PROVIDER_CITY_ID → provider.city_id
	v.SetEnvPrefix("TRIPCOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.request_timeout", 15)
	v.SetDefault("provider.base_url", "https://poppy.red/api/v3")
	v.SetDefault("provider.city_id", "a88ea9d0-3d5e-4002-8bbf-775313a5973c")
	v.SetDefault("provider.geozone_id", "62c4bd62-881c-473e-8a6b-fbedfd276739")
	v.SetDefault("provider.timeout_ms", 5000)
	v.SetDefault("pricing.walk_speed_kmh", 5.0)
	v.SetDefault("pricing.drive_speed_kmh", 25.0)
	v.SetDefault("pricing.free_booking_minutes", 15.0)
	v.SetDefault("pricing.vat", 1.21)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tripcost")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "tripcost")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.tariff_ttl_seconds", 3600)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "tariff-refresh-queue")
	v.SetDefault("temporal.refresh_cron", "0 */6 * * *")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.Provider.BaseURL == "" {
		errs = append(errs, "provider.base_url is required")
	}
	if c.Provider.CityID == "" {
		errs = append(errs, "provider.city_id is required")
	}
	if c.Provider.GeozoneID == "" {
		errs = append(errs, "provider.geozone_id is required")
	}
	if c.Provider.TimeoutMs <= 0 {
		errs = append(errs, "provider.timeout_ms must be positive")
	}
	if c.Pricing.WalkSpeedKmh <= 0 {
		errs = append(errs, "pricing.walk_speed_kmh must be positive")
	}
	if c.Pricing.DriveSpeedKmh <= 0 {
		errs = append(errs, "pricing.drive_speed_kmh must be positive")
	}
	if c.Pricing.FreeBookingMinutes < 0 {
		errs = append(errs, "pricing.free_booking_minutes must not be negative")
	}
	if c.Pricing.VAT < 1 {
		errs = append(errs, fmt.Sprintf("pricing.vat is a multiplier and must be >= 1, got %g", c.Pricing.VAT))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
