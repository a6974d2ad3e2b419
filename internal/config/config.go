// Package config provides configuration management using viper.
// It supports loading from YAML files, .env files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"dicebot/internal/game/dice"
)

// Config holds all application configuration.
type Config struct {
	Discord   DiscordConfig   `mapstructure:"discord"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Game      GameConfig      `mapstructure:"game"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Log       LogConfig       `mapstructure:"log"`
}

// DiscordConfig holds Discord bot configuration.
type DiscordConfig struct {
	Token         string `mapstructure:"token"`
	ApplicationID string `mapstructure:"application_id"`
	// GuildID registers commands for one guild only, which applies instantly.
	GuildID string `mapstructure:"guild_id"`
}

// TelegramConfig holds Telegram bot configuration.
type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig holds the optional leaderboard cache configuration.
// An empty Addr disables the cache.
type RedisConfig struct {
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	LeaderboardTTL time.Duration `mapstructure:"leaderboard_ttl"`
}

// GameConfig holds command defaults and join-game limits.
type GameConfig struct {
	JoinTimeout      time.Duration `mapstructure:"join_timeout"`
	DefaultDice      int           `mapstructure:"default_dice"`
	DefaultPlayers   int           `mapstructure:"default_players"`
	MaxPlayers       int           `mapstructure:"max_players"`
	HistoryLimit     int           `mapstructure:"history_limit"`
	LeaderboardLimit int           `mapstructure:"leaderboard_limit"`
}

// WhitelistConfig holds Telegram chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DSN returns the PostgreSQL connection string.
// URL wins over the individual fields when both are set.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from .env, file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase
	// e.g., DISCORD_TOKEN, DATABASE_URL, GAME_JOIN_TIMEOUT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// TOKEN is the historical name of the Discord token variable.
	if err := v.BindEnv("discord.token", "DISCORD_TOKEN", "TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind discord token: %w", err)
	}

	// Read config file (optional - env vars can provide all config)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.application_id", "")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("telegram.token", "")

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dicebot")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "dicebot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Redis is disabled unless an address is given
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.leaderboard_ttl", "5m")

	// Game defaults
	v.SetDefault("game.join_timeout", "60s")
	v.SetDefault("game.default_dice", 100)
	v.SetDefault("game.default_players", 2)
	v.SetDefault("game.max_players", 25)
	v.SetDefault("game.history_limit", 10)
	v.SetDefault("game.leaderboard_limit", 10)

	v.SetDefault("log.level", "info")
}

// Validate checks that the configuration can start at least one bot.
func (c *Config) Validate() error {
	if c.Discord.Token == "" && c.Telegram.Token == "" {
		return errors.New("at least one of discord.token or telegram.token is required")
	}
	if err := dice.ValidateSides(c.Game.DefaultDice); err != nil {
		return fmt.Errorf("game.default_dice: %w", err)
	}
	if c.Game.MaxPlayers < 1 {
		return fmt.Errorf("game.max_players must be at least 1, got %d", c.Game.MaxPlayers)
	}
	if c.Game.DefaultPlayers < 1 || c.Game.DefaultPlayers > c.Game.MaxPlayers {
		return fmt.Errorf("game.default_players must be between 1 and %d, got %d", c.Game.MaxPlayers, c.Game.DefaultPlayers)
	}
	if c.Game.HistoryLimit < 1 {
		return fmt.Errorf("game.history_limit must be at least 1, got %d", c.Game.HistoryLimit)
	}
	if c.Game.LeaderboardLimit < 0 {
		return fmt.Errorf("game.leaderboard_limit must not be negative, got %d", c.Game.LeaderboardLimit)
	}
	if c.Game.JoinTimeout <= 0 {
		return fmt.Errorf("game.join_timeout must be positive, got %s", c.Game.JoinTimeout)
	}
	return nil
}

// RedisEnabled reports whether a leaderboard cache should be used.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
