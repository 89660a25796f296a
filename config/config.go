// Package config builds the service configuration from defaults, an optional
// JSON file and command-line flags, in that order of precedence.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the service.
type Config struct {
	Command       string
	MigrationName string
	MigrationDir  string

	Port          string
	DatabasePath  string
	CacheType     string // "redis", "memory" or "none"
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SecretKey     string
	TokenValidity time.Duration
	BcryptCost    int

	SeedName     string
	SeedEmail    string
	SeedPassword string
}

// fileConfig mirrors Config for JSON files. Durations are strings ("90m").
type fileConfig struct {
	Port          *string `json:"port"`
	DatabasePath  *string `json:"database_path"`
	CacheType     *string `json:"cache_type"`
	RedisAddr     *string `json:"redis_addr"`
	RedisPassword *string `json:"redis_password"`
	RedisDB       *int    `json:"redis_db"`
	SecretKey     *string `json:"secret_key"`
	TokenValidity *string `json:"token_validity"`
	BcryptCost    *int    `json:"bcrypt_cost"`
	SeedName      *string `json:"seed_name"`
	SeedEmail     *string `json:"seed_email"`
	SeedPassword  *string `json:"seed_password"`
}

// Default returns development defaults. SecretKey must be overridden in production.
func Default() *Config {
	return &Config{
		Command:       "start",
		MigrationDir:  "./database/migrations",
		Port:          "8080",
		DatabasePath:  "./usuarios_service.db",
		CacheType:     "redis",
		RedisAddr:     "localhost:6379",
		SecretKey:     "secret-key",
		TokenValidity: 60 * time.Minute,
		BcryptCost:    12,
		SeedName:      "Root",
	}
}

// Load applies defaults, then the JSON file named by -config (if any), then
// the remaining flags in args.
func Load(args []string) (*Config, error) {
	cfg := Default()

	if path := configPath(args); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	fs := flag.NewFlagSet("usuarios-service", flag.ContinueOnError)
	fs.String("config", "", "Path to a JSON config file")
	fs.StringVar(&cfg.Command, "command", cfg.Command, "Command to run modules (start, create-migration)")
	fs.StringVar(&cfg.MigrationName, "name", cfg.MigrationName, "Migration name (alphanum+underscore only)")
	fs.StringVar(&cfg.MigrationDir, "dir", cfg.MigrationDir, "Target directory for the new .sql file")
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database file")
	fs.StringVar(&cfg.CacheType, "cache", cfg.CacheType, "Cache backend: redis, memory or none")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database index")
	fs.StringVar(&cfg.SecretKey, "secret", cfg.SecretKey, "HMAC secret for login tokens")
	fs.DurationVar(&cfg.TokenValidity, "token-ttl", cfg.TokenValidity, "Login token validity")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt cost for password hashing")
	fs.StringVar(&cfg.SeedName, "seed-name", cfg.SeedName, "Name of the user seeded on startup")
	fs.StringVar(&cfg.SeedEmail, "seed-email", cfg.SeedEmail, "Email of the user seeded on startup (empty disables seeding)")
	fs.StringVar(&cfg.SeedPassword, "seed-password", cfg.SeedPassword, "Password of the user seeded on startup")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath finds -config/--config without parsing the rest of args.
func configPath(args []string) string {
	for i, a := range args {
		name := strings.TrimLeft(a, "-")
		if len(name) == len(a) {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			return args[i+1]
		}
	}
	return ""
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.DatabasePath, fc.DatabasePath)
	setString(&c.CacheType, fc.CacheType)
	setString(&c.RedisAddr, fc.RedisAddr)
	setString(&c.RedisPassword, fc.RedisPassword)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.SeedName, fc.SeedName)
	setString(&c.SeedEmail, fc.SeedEmail)
	setString(&c.SeedPassword, fc.SeedPassword)
	if fc.RedisDB != nil {
		c.RedisDB = *fc.RedisDB
	}
	if fc.BcryptCost != nil {
		c.BcryptCost = *fc.BcryptCost
	}
	if fc.TokenValidity != nil {
		d, err := time.ParseDuration(*fc.TokenValidity)
		if err != nil {
			return fmt.Errorf("parse token_validity: %w", err)
		}
		c.TokenValidity = d
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) validate() error {
	switch c.CacheType {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("unknown cache type %q", c.CacheType)
	}
	if c.TokenValidity <= 0 {
		return fmt.Errorf("token validity must be positive, got %s", c.TokenValidity)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.SeedEmail != "" && c.SeedPassword == "" {
		return fmt.Errorf("seed password is required when seed email is set")
	}
	return nil
}
