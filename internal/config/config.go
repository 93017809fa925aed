package config

import "time"

// Config holds server configuration values.
type Config struct {
	// ListenAddr is the TCP address of the framed chat protocol port.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// HTTPAddr serves the REST API and the WebSocket ingress.
	HTTPAddr          string        `mapstructure:"http_addr" yaml:"http_addr"`
	RoomName          string        `mapstructure:"room_name" yaml:"room_name"`
	HistoryLimit      int           `mapstructure:"history_limit" yaml:"history_limit"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ListenAddr:        ":12345",
		HTTPAddr:          ":8080",
		RoomName:          "10001",
		HistoryLimit:      100,
		LogLevel:          "info",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.ListenAddr != "" {
		c.ListenAddr = other.ListenAddr
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.RoomName != "" {
		c.RoomName = other.RoomName
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}
