package database

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DriverMemory keeps all state in process memory; nothing survives a restart.
	DriverMemory = "memory"
	// DriverSQLite stores state in a single SQLite file (modernc.org/sqlite, no cgo).
	DriverSQLite = "sqlite"
	// DriverPostgres stores state in PostgreSQL (lib/pq).
	DriverPostgres = "postgres"
)

// Config holds database connection settings shared across bots.
type Config struct {
	Driver         string `yaml:"driver" envconfig:"DB_DRIVER"`
	Path           string `yaml:"path" envconfig:"DB_PATH"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Normalize applies defaults and validates the driver specific fields.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite:
		if strings.TrimSpace(c.Path) == "" {
			c.Path = "hrbot.db"
		}
		// a single writer avoids SQLITE_BUSY under concurrent confirmations
		c.MaxConnections = 1
	case DriverPostgres:
		if c.Host == "" || c.Name == "" {
			return fmt.Errorf("database.host and database.name are required for postgres")
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 5
		}
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: memory, sqlite, postgres", c.Driver)
	}
	return nil
}

// Persistent reports whether the configured driver survives restarts.
func (c Config) Persistent() bool {
	return c.Driver == DriverSQLite || c.Driver == DriverPostgres
}

// DSN returns the database/sql data source name for the driver.
func (c Config) DSN() string {
	switch c.Driver {
	case DriverSQLite:
		return "file:" + c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case DriverPostgres:
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
		)
	}
	return ""
}

// MigrateURL returns the golang-migrate database URL for the driver.
func (c Config) MigrateURL() string {
	switch c.Driver {
	case DriverSQLite:
		return "sqlite://" + c.Path
	case DriverPostgres:
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode,
		)
	}
	return ""
}

// Target is a log-safe description of the database location.
func (c Config) Target() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return c.Host + ":" + c.Port + "/" + c.Name
}
