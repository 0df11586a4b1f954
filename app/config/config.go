// Package config loads the bot configuration: the shared core settings plus
// storage, session, channel, metrics and broadcast options.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/hrbot/core/config"
	"github.com/m3rciful/hrbot/core/database"
)

const (
	SessionsMemory = "memory"
	SessionsRedis  = "redis"

	defaultBroadcastDelayMS = 50
)

// SessionsConfig selects where conversation sessions live.
type SessionsConfig struct {
	Backend       string `yaml:"backend" envconfig:"SESSIONS_BACKEND"`
	RedisAddr     string `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" envconfig:"REDIS_DB"`
	// IdleTimeout drops forms left untouched this long; 0 keeps them forever.
	IdleTimeout time.Duration `yaml:"idle_timeout" envconfig:"SESSIONS_IDLE_TIMEOUT"`
}

// ChannelsConfig holds the chats that receive informational request copies.
type ChannelsConfig struct {
	Excuse int64 `yaml:"excuse_id" envconfig:"CHANNEL_EXCUSE_ID"`
	Leave  int64 `yaml:"leave_id" envconfig:"CHANNEL_LEAVE_ID"`
}

type MetricsConfig struct {
	// Listen is the host:port of the /metrics endpoint; empty disables it.
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

type BroadcastConfig struct {
	DelayMS int `yaml:"delay_ms" envconfig:"BROADCAST_DELAY_MS"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database  database.Config `yaml:"database"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Channels  ChannelsConfig  `yaml:"channels"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

// CoreConfig exposes the embedded core settings to the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// BroadcastDelay is the pause between two broadcast messages.
func (c *Config) BroadcastDelay() time.Duration {
	return time.Duration(c.Broadcast.DelayMS) * time.Millisecond
}

// Load reads the YAML file at path (optional) and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return err
	}

	s := &cfg.Sessions
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case "":
		s.Backend = SessionsMemory
	case SessionsMemory:
	case SessionsRedis:
		if strings.TrimSpace(s.RedisAddr) == "" {
			return fmt.Errorf("sessions.redis_addr is required when sessions.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid sessions.backend %q; allowed: memory, redis", s.Backend)
	}
	if s.IdleTimeout < 0 {
		return fmt.Errorf("sessions.idle_timeout must be >= 0")
	}

	switch {
	case cfg.Broadcast.DelayMS == 0:
		cfg.Broadcast.DelayMS = defaultBroadcastDelayMS
	case cfg.Broadcast.DelayMS < 0:
		return fmt.Errorf("broadcast.delay_ms must be >= 0")
	}
	return nil
}
