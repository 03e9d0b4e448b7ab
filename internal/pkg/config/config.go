package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Cache     CacheConfig     `mapstructure:"cache"`
	ArcGIS    ArcGISConfig    `mapstructure:"arcgis"`
	Google    GoogleConfig    `mapstructure:"google"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
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

// CacheConfig selects the key-value backend shared by all resolvers.
// Backend is one of "valkey", "redis", "memory" or "none".
type CacheConfig struct {
	Backend      string `mapstructure:"backend"`
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	TTL          int    `mapstructure:"ttl"`
	SingleFlight bool   `mapstructure:"single_flight"`
	CellLevel    int    `mapstructure:"cell_level"`
}

type ArcGISConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Timeout  int    `mapstructure:"timeout"`
	FailOpen bool   `mapstructure:"fail_open"`
}

type GoogleConfig struct {
	APIKey     string `mapstructure:"api_key"`
	PlacesURL  string `mapstructure:"places_url"`
	GeocodeURL string `mapstructure:"geocode_url"`
	Language   string `mapstructure:"language"`
	Components string `mapstructure:"components"`
	Timeout    int    `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Cron      string `mapstructure:"cron"`
	Radius    int    `mapstructure:"radius"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from .env, an optional config file and
// environment variables, in increasing order of precedence.
func Load(service string) (*Config, error) {
	_ = godotenv.Load(".env") // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", []string{"http://localhost:8000", "http://127.0.0.1:8000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "supercivilian")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "supercivilian")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("cache.backend", "valkey")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 60*60)
	v.SetDefault("cache.single_flight", true)
	v.SetDefault("cache.cell_level", 0)
	v.SetDefault("arcgis.base_url", "https://services-eu1.arcgis.com/HE4WRthd9CIPj0R8/ArcGIS/rest/services/schrony_csv/FeatureServer/0/query")
	v.SetDefault("arcgis.timeout", 10)
	v.SetDefault("arcgis.fail_open", true)
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.places_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("google.geocode_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("google.language", "pl")
	v.SetDefault("google.components", "country:pl")
	v.SetDefault("google.timeout", 10)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "shelter-warmup")
	v.SetDefault("temporal.cron", "0 * * * *")
	v.SetDefault("temporal.radius", 30*1000)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SUPERCIVILIAN_CACHE_BACKEND → cache.backend
	v.SetEnvPrefix("SUPERCIVILIAN")
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
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	switch c.Cache.Backend {
	case "valkey", "redis":
		if c.Cache.Addr == "" {
			errs = append(errs, "cache.addr is required for backend "+c.Cache.Backend)
		}
	case "memory", "none":
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be valkey, redis, memory or none, got %q", c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, "cache.ttl must be positive")
	}
	if c.Cache.CellLevel < 0 || c.Cache.CellLevel > 30 {
		errs = append(errs, fmt.Sprintf("cache.cell_level must be 0-30, got %d", c.Cache.CellLevel))
	}
	if c.ArcGIS.BaseURL == "" {
		errs = append(errs, "arcgis.base_url is required")
	}
	if c.ArcGIS.Timeout <= 0 {
		errs = append(errs, "arcgis.timeout must be positive")
	}
	if c.Google.Timeout <= 0 {
		errs = append(errs, "google.timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
