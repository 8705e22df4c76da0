package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Data sources for stock, requisitions and warehouses
const (
	SourceCSV = "csv"
	SourceERP = "erp"
)

// Config represents the full server configuration surface.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Store   StoreConfig
	Data    DataConfig
	ERP     ERPConfig
	Refresh RefreshConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// LogConfig holds the log level.
type LogConfig struct {
	Level string
}

// StoreConfig selects where submitted transfers are persisted.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	MongoURI    string
	MongoDBName string
}

// DataConfig selects where stock, requisitions and warehouses come from.
type DataConfig struct {
	Source      string
	ScenarioDir string
}

// ERPConfig contains the upstream ERP REST API settings.
type ERPConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// RefreshConfig holds the stock snapshot refresh schedule.
type RefreshConfig struct {
	CronSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when the environment is set directly.
		_ = godotenv.Load()
	}

	timeout, err := time.ParseDuration(getenvWithDefault("ERP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ERP_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getenvWithDefault("APP_PORT", "8080"),
			CORSOrigins: splitList(getenvWithDefault("CORS_ORIGINS", "*")),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverSQLite)),
			SQLitePath:  getenvWithDefault("SQLITE_PATH", "transfers.db"),
			MongoURI:    os.Getenv("MONGODB_URI"),
			MongoDBName: getenvWithDefault("MONGODB_DB_NAME", "stocktransfer"),
		},
		Data: DataConfig{
			Source:      strings.ToLower(getenvWithDefault("DATA_SOURCE", SourceCSV)),
			ScenarioDir: getenvWithDefault("SCENARIO_DIR", "testdata/bakery"),
		},
		ERP: ERPConfig{
			BaseURL: os.Getenv("ERP_BASE_URL"),
			Token:   os.Getenv("ERP_TOKEN"),
			Timeout: timeout,
		},
		Refresh: RefreshConfig{
			CronSchedule: getenvWithDefault("SNAPSHOT_REFRESH_CRON", "*/5 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided for the sqlite store")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo store")
		}
		if c.Store.MongoDBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Data.Source {
	case SourceCSV:
		if c.Data.ScenarioDir == "" {
			return errors.New("SCENARIO_DIR must be provided for the csv data source")
		}
	case SourceERP:
		if c.ERP.BaseURL == "" {
			return errors.New("ERP_BASE_URL must be provided for the erp data source")
		}
		if c.ERP.Timeout <= 0 {
			return errors.New("ERP_TIMEOUT must be positive")
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.Data.Source)
	}

	if c.Refresh.CronSchedule == "" {
		return errors.New("SNAPSHOT_REFRESH_CRON must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
