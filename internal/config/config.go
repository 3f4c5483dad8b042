package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"coin-insights/internal/logging"
)

// Data source kinds.
const (
	SourceCSV        = "csv"
	SourcePostgres   = "postgres"
	SourceClickHouse = "clickhouse"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Data       DataConfig       `mapstructure:"data"`
	Database   DatabaseConfig   `mapstructure:"database"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Model      ModelConfig      `mapstructure:"model"`
	Server     ServerConfig     `mapstructure:"server"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Digest     DigestConfig     `mapstructure:"digest"`
	Export     ExportConfig     `mapstructure:"export"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DataConfig selects where price rows are read from.
type DataConfig struct {
	Source  string `mapstructure:"source"`
	CSVPath string `mapstructure:"csv_path"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Table           string        `mapstructure:"table"`
}

// ClickHouseConfig points at an analytical replica of the price table.
type ClickHouseConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// ModelConfig locates the intent classifier artifact and its training data.
type ModelConfig struct {
	Path             string `mapstructure:"path"`
	TrainingDataPath string `mapstructure:"training_data_path"`
	MaxFeatures      int    `mapstructure:"max_features"`
}

// ServerConfig governs the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// ChatConfig tunes the conversational path.
type ChatConfig struct {
	Seed        uint64 `mapstructure:"seed"`
	DefaultYear int    `mapstructure:"default_year"`
	WindowDays  int    `mapstructure:"window_days"`
}

// NotifyConfig routes chat replies and digests to external channels.
type NotifyConfig struct {
	Timeout  time.Duration  `mapstructure:"timeout"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram bot target.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// DigestConfig schedules the periodic market digest.
type DigestConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	AlignToBucket  bool          `mapstructure:"align_to_bucket"`
	StartupDelay   time.Duration `mapstructure:"startup_delay"`
	RunImmediately bool          `mapstructure:"run_immediately"`
	Year           int           `mapstructure:"year"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// MetricsConfig names the Prometheus namespace.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Load builds configuration from a .env file, the config file, environment and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("COININSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "coininsights")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("data.source", SourceCSV)
	v.SetDefault("data.csv_path", "data/crypto_prices.csv")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.table", "coin_prices")

	v.SetDefault("clickhouse.dsn", "")
	v.SetDefault("clickhouse.table", "coin_prices")

	v.SetDefault("model.path", "models/intent_classifier.gob")
	v.SetDefault("model.training_data_path", "data/training_data.json")
	v.SetDefault("model.max_features", 1000)

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit_rps", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)

	v.SetDefault("chat.seed", 42)
	v.SetDefault("chat.default_year", 0)
	v.SetDefault("chat.window_days", 7)

	v.SetDefault("notify.timeout", "10s")
	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", "")
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("digest.interval", "24h")
	v.SetDefault("digest.align_to_bucket", true)
	v.SetDefault("digest.startup_delay", "0s")
	v.SetDefault("digest.run_immediately", true)
	v.SetDefault("digest.year", 0)

	v.SetDefault("export.width", 1280)
	v.SetDefault("export.height", 720)

	v.SetDefault("metrics.namespace", "coininsights")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.CSVPath == "" {
			return fmt.Errorf("data.csv_path is required for the csv source")
		}
	case SourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres source")
		}
	case SourceClickHouse:
		if c.ClickHouse.DSN == "" {
			return fmt.Errorf("clickhouse.dsn is required for the clickhouse source")
		}
	default:
		return fmt.Errorf("data.source must be one of csv, postgres, clickhouse; got %q", c.Data.Source)
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if c.Chat.WindowDays <= 0 {
		return fmt.Errorf("chat.window_days must be greater than zero")
	}
	if c.Chat.DefaultYear < 0 || c.Digest.Year < 0 {
		return fmt.Errorf("default years cannot be negative")
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("server rate limits cannot be negative")
	}
	if c.Digest.Interval <= 0 {
		return fmt.Errorf("digest.interval must be greater than zero")
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		return fmt.Errorf("export.width and export.height must be greater than zero")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ResolveYear returns the CLI override when set, else the configured year (0 meaning latest).
func (c *Config) ResolveYear(override int) int {
	if override > 0 {
		return override
	}
	return c.Chat.DefaultYear
}
