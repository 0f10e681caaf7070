package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"planetwars-server/internal/shared/errors"
	"planetwars-server/internal/shared/utils"

	"github.com/joho/godotenv"
)

type Config struct {
	Game      GameConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
}

type GameConfig struct {
	MapPath     string
	TurnCap     int
	TurnTimeout time.Duration
	TurnRate    float64
	Roster      []RosterEntry
}

// RosterEntry describes one agent process and the team it plays for
type RosterEntry struct {
	Team    int
	Name    string
	Command []string
}

type ServerConfig struct {
	Enabled      bool
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	Channel  string
}

type AuthConfig struct {
	JWTSecret       string
	TokenExpiration time.Duration
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	TrustProxy        bool
}

const defaultRoster = "1|Oingo|./bin/bot;1|Boingo|./bin/bot;1|Yoyoma|./bin/bot;" +
	"2|Johnny Joestar|./bin/bot;2|Gyro Zeppeli|./bin/bot;2|Lucy Steel|./bin/bot"

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config, err := load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

func load() (*Config, error) {
	game, err := loadGameConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Game:      game,
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Auth:      loadAuthConfig(),
		Frontend:  loadFrontendConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
	}

	return config, nil
}

func loadGameConfig() (GameConfig, error) {
	roster, err := ParseRoster(utils.GetEnv("GAME_ROSTER", defaultRoster))
	if err != nil {
		return GameConfig{}, err
	}

	return GameConfig{
		MapPath:     utils.GetEnv("GAME_MAP_PATH", "map.txt"),
		TurnCap:     utils.GetEnvInt("GAME_TURN_CAP", 200),
		TurnTimeout: time.Duration(utils.GetEnvInt("GAME_TURN_TIMEOUT_MS", 1000)) * time.Millisecond,
		TurnRate:    utils.GetEnvFloat("GAME_TURN_RATE", 0),
		Roster:      roster,
	}, nil
}

// ParseRoster reads entries of the form "team|name|command args" separated by ';'
func ParseRoster(raw string) ([]RosterEntry, error) {
	var roster []RosterEntry

	for i, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		parts := strings.SplitN(chunk, "|", 3)
		if len(parts) != 3 {
			return nil, errors.Validationf("roster entry %d: expected team|name|command, got %q", i+1, chunk)
		}

		team, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, errors.WrapValidation(fmt.Sprintf("roster entry %d: invalid team", i+1), err)
		}

		command := strings.Fields(parts[2])
		if len(command) == 0 {
			return nil, errors.Validationf("roster entry %d: command is required", i+1)
		}

		roster = append(roster, RosterEntry{
			Team:    team,
			Name:    strings.TrimSpace(parts[1]),
			Command: command,
		})
	}

	return roster, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Enabled:      utils.GetEnvBool("STATUS_ENABLED", false),
		Port:         utils.GetEnv("SERVER_PORT", "8080"),
		Environment:  utils.GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(utils.GetEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout: time.Duration(utils.GetEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
		IdleTimeout:  time.Duration(utils.GetEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Enabled:         utils.GetEnvBool("DB_ENABLED", false),
		Host:            utils.GetEnv("DB_HOST", "localhost"),
		Port:            utils.GetEnv("DB_PORT", "5432"),
		User:            utils.GetEnv("DB_USER", "postgres"),
		Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
		Name:            utils.GetEnv("DB_NAME", "planetwars"),
		SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    utils.GetEnvInt("DB_MAX_OPEN_CONNS", 5),
		MaxIdleConns:    utils.GetEnvInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: time.Duration(utils.GetEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  utils.GetEnvBool("REDIS_ENABLED", false),
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       utils.GetEnvInt("REDIS_DB", 0),
		Channel:  utils.GetEnv("REDIS_CHANNEL", "planetwars:turns"),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:       utils.GetEnv("JWT_SECRET", ""),
		TokenExpiration: time.Duration(utils.GetEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       utils.GetEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: utils.GetEnvBool("CORS_DEBUG", false),
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")

	return LoggingConfig{
		Level:      utils.GetEnv("LOG_LEVEL", "info"),
		Format:     utils.GetEnv("LOG_FORMAT", "text"),
		JSONFormat: environment == "production" || utils.GetEnv("LOG_FORMAT", "text") == "json",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           utils.GetEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerSecond: utils.GetEnvFloat("RATE_LIMIT_REQUESTS_PER_SECOND", 10),
		BurstSize:         utils.GetEnvInt("RATE_LIMIT_BURST_SIZE", 20),
		TrustProxy:        utils.GetEnvBool("RATE_LIMIT_TRUST_PROXY", false),
	}
}

func (c *Config) validate() error {
	if c.Game.MapPath == "" {
		return errors.Validation("GAME_MAP_PATH is required")
	}

	if c.Game.TurnCap <= 0 {
		return errors.Validation("GAME_TURN_CAP must be positive")
	}

	if c.Game.TurnTimeout < 0 {
		return errors.Validation("GAME_TURN_TIMEOUT_MS must not be negative")
	}

	if c.Game.TurnRate < 0 {
		return errors.Validation("GAME_TURN_RATE must not be negative")
	}

	teams := map[int]int{}
	for _, entry := range c.Game.Roster {
		if entry.Team != 1 && entry.Team != 2 {
			return errors.Validationf("roster entry %q: team must be 1 or 2, got %d", entry.Name, entry.Team)
		}
		teams[entry.Team]++
	}
	if teams[1] == 0 || teams[2] == 0 {
		return errors.Validation("GAME_ROSTER needs at least one player on each team")
	}

	if c.Server.Enabled {
		if c.Server.Port == "" {
			return errors.Validation("SERVER_PORT is required")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return errors.Validation("JWT_SECRET must be at least 32 characters long when STATUS_ENABLED is set")
		}
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return errors.Validation("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return errors.Validation("DB_NAME is required")
		}
	}

	return nil
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
