package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// GameServer holds all configuration for the game server.
type GameServer struct {
	// Logging
	LogLevel string `yaml:"log_level"` // debug|info|warn|error

	// Game loop
	TickIntervalMs int `yaml:"tick_interval_ms"`

	// Persistence
	AutosaveIntervalS int            `yaml:"autosave_interval_s"`
	Database          DatabaseConfig `yaml:"database"`
}

// TickInterval returns the game loop cadence as a duration.
func (c GameServer) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// AutosaveInterval returns the autosave cadence as a duration.
func (c GameServer) AutosaveInterval() time.Duration {
	return time.Duration(c.AutosaveIntervalS) * time.Second
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultGameServer returns GameServer config with sensible defaults.
func DefaultGameServer() GameServer {
	return GameServer{
		LogLevel:          "info",
		TickIntervalMs:    1000,
		AutosaveIntervalS: 60,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "mistwood",
			Password: "mistwood",
			DBName:   "mistwood",
			SSLMode:  "disable",
		},
	}
}

// LoadGameServer loads game server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
