// Package config provides application configuration loaded from environment
// variables and an optional config file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	App       AppConfig       `mapstructure:"app"`
	Search    SearchConfig    `mapstructure:"search"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Share     ShareConfig     `mapstructure:"share"`
	Quotation QuotationConfig `mapstructure:"quotation"`
	Shell     ShellConfig     `mapstructure:"shell"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
	CORSOrigins  string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds the connection settings. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Debug    bool   `mapstructure:"debug"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev         bool   `mapstructure:"dev"`
	Migrations  bool   `mapstructure:"migrations"`
	LogLevel    string `mapstructure:"log_level"`
	DataDir     string `mapstructure:"data_dir"`
	InstallPath string `mapstructure:"install_path"`
}

// SearchConfig points at the external product scraping service.
type SearchConfig struct {
	ServiceURL    string  `mapstructure:"service_url"`
	Timeout       int     `mapstructure:"timeout"`   // seconds
	CacheTTL      int     `mapstructure:"cache_ttl"` // seconds
	DebounceMS    int     `mapstructure:"debounce_ms"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// RedisConfig enables the shared search cache when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ShareConfig selects where shared documents are uploaded. Provider is "s3",
// "gcs" or empty for manual sharing.
type ShareConfig struct {
	Provider       string `mapstructure:"provider"`
	Bucket         string `mapstructure:"bucket"`
	Prefix         string `mapstructure:"prefix"`
	LinkTTL        int    `mapstructure:"link_ttl"` // minutes
	S3Region       string `mapstructure:"s3_region"`
	S3Endpoint     string `mapstructure:"s3_endpoint"`
	S3AccessKey    string `mapstructure:"s3_access_key"`
	S3SecretKey    string `mapstructure:"s3_secret_key"`
	GCSCredentials string `mapstructure:"gcs_credentials"`
}

// QuotationConfig holds document defaults.
type QuotationConfig struct {
	ValidityDays int     `mapstructure:"validity_days"`
	GSTRate      float64 `mapstructure:"gst_rate"`
	DiscountRate float64 `mapstructure:"discount_rate"`
}

// ShellConfig drives the desktop supervisor.
type ShellConfig struct {
	ServerBinary string `mapstructure:"server_binary"`
	ReadyTimeout int    `mapstructure:"ready_timeout"` // seconds
	PollInterval int    `mapstructure:"poll_interval"` // milliseconds
	StopTimeout  int    `mapstructure:"stop_timeout"`  // seconds
	UIURL        string `mapstructure:"ui_url"`
	OpenBrowser  bool   `mapstructure:"open_browser"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// SQLitePath resolves the database file relative to the data directory.
func (c *Config) SQLitePath() string {
	p := c.Database.Path
	if filepath.IsAbs(p) || c.App.DataDir == "" {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}

// Origins splits the comma separated CORS origin list.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (s SearchConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (s SearchConfig) CacheTTLDuration() time.Duration {
	return time.Duration(s.CacheTTL) * time.Second
}

func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

func (s ShareConfig) LinkTTLDuration() time.Duration {
	return time.Duration(s.LinkTTL) * time.Minute
}

// binding maps a config key to its environment variable and default.
type binding struct {
	key string
	env string
	def any
}

var bindings = []binding{
	{"server.port", "PORT", "5000"},
	{"server.read_timeout", "SERVER_READ_TIMEOUT", 15},
	{"server.write_timeout", "SERVER_WRITE_TIMEOUT", 60},
	{"server.idle_timeout", "SERVER_IDLE_TIMEOUT", 60},
	{"server.cors_origins", "CORS_ORIGINS", "http://localhost:5173"},

	{"database.driver", "DB_DRIVER", "sqlite"},
	{"database.path", "DB_PATH", "pcquote.db"},
	{"database.host", "DB_HOST", "localhost"},
	{"database.port", "DB_PORT", 5432},
	{"database.user", "DB_USER", "pcquote"},
	{"database.password", "DB_PASSWORD", "pcquote"},
	{"database.name", "DB_NAME", "pcquote"},
	{"database.sslmode", "DB_SSLMODE", "disable"},
	{"database.debug", "DB_DEBUG", false},

	{"app.dev", "DEV", false},
	{"app.migrations", "MIGRATIONS", false},
	{"app.log_level", "LOG_LEVEL", "info"},
	{"app.data_dir", "DATA_DIR", ""},
	{"app.install_path", "PCQUOTE_INSTALL_PATH", ""},

	{"search.service_url", "SEARCH_SERVICE_URL", "http://localhost:5001/api"},
	{"search.timeout", "SEARCH_TIMEOUT", 20},
	{"search.cache_ttl", "SEARCH_CACHE_TTL", 300},
	{"search.debounce_ms", "SEARCH_DEBOUNCE_MS", 300},
	{"search.rate_per_second", "SEARCH_RATE_PER_SECOND", 2.0},
	{"search.burst", "SEARCH_BURST", 4},

	{"redis.addr", "REDIS_ADDR", ""},
	{"redis.password", "REDIS_PASSWORD", ""},
	{"redis.db", "REDIS_DB", 0},

	{"share.provider", "SHARE_PROVIDER", ""},
	{"share.bucket", "SHARE_BUCKET", ""},
	{"share.prefix", "SHARE_PREFIX", "documents/"},
	{"share.link_ttl", "SHARE_LINK_TTL", 60 * 24},
	{"share.s3_region", "S3_REGION", "us-east-1"},
	{"share.s3_endpoint", "S3_ENDPOINT", ""},
	{"share.s3_access_key", "S3_ACCESS_KEY", ""},
	{"share.s3_secret_key", "S3_SECRET_KEY", ""},
	{"share.gcs_credentials", "GCS_CREDENTIALS_FILE", ""},

	{"quotation.validity_days", "QUOTATION_VALIDITY_DAYS", 30},
	{"quotation.gst_rate", "DEFAULT_GST_RATE", 18.0},
	{"quotation.discount_rate", "DEFAULT_DISCOUNT_RATE", 0.0},

	{"shell.server_binary", "SHELL_SERVER_BINARY", "pcquote-server"},
	{"shell.ready_timeout", "SHELL_READY_TIMEOUT", 30},
	{"shell.poll_interval", "SHELL_POLL_INTERVAL", 1000},
	{"shell.stop_timeout", "SHELL_STOP_TIMEOUT", 5},
	{"shell.ui_url", "SHELL_UI_URL", ""},
	{"shell.open_browser", "SHELL_OPEN_BROWSER", true},
}

// Load reads configuration from environment variables, falling back to the
// file named by CONFIG_FILE and then to defaults suited to a desktop install.
func Load() (*Config, error) {
	v := viper.New()
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.env, err)
		}
	}
	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return nil, err
	}
	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &c, nil
}
