// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Pipeline PipelineConfig
	Server   ServerConfig
	Upload   UploadConfig
	History  HistoryConfig
	Logging  LoggingConfig
}

// PipelineConfig holds conversion and filtering settings.
type PipelineConfig struct {
	// SampleSize is how many bytes are read to detect the delimiter (default: 1024)
	SampleSize int `env:"DETECT_SAMPLE_SIZE" default:"1024"`

	// PriceSourceColumn is the raw price column (default: search_price)
	PriceSourceColumn string `env:"PRICE_SOURCE_COLUMN" default:"search_price"`

	// PriceColumn is the derived numeric price column (default: price_edited)
	PriceColumn string `env:"PRICE_COLUMN" default:"price_edited"`

	// KnitColumns are checked for knit references, in order
	KnitColumns []string `env:"KNIT_COLUMNS" default:"description,product_name,merchant_category,merchant_product_category_path,custom_5,merchant_product_second_category,merchant_product_third_category"`

	// JumperColumns are checked for jumper references, in order
	JumperColumns []string `env:"JUMPER_COLUMNS" default:"product_name,custom_5,merchant_product_category_path,merchant_product_second_category,merchant_product_third_category"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// UploadConfig holds settings for feeds posted to the HTTP API.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel pipeline runs (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// HistoryConfig holds run history storage settings.
type HistoryConfig struct {
	// Driver is the store backend: none, postgres or sqlite (default: none)
	Driver string `env:"HISTORY_DRIVER" default:"none"`

	// URL is the PostgreSQL connection string or the SQLite file path.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of PostgreSQL connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of PostgreSQL connections (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// RecentLimit is how many runs the API and dashboard list (default: 50)
	RecentLimit int `env:"HISTORY_RECENT_LIMIT" default:"50"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
