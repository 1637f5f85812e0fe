package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type DiscordConfig struct {
	Token       string `yaml:"token" env:"DISCORD_TOKEN,required"`
	ClientID    string `yaml:"client_id" env:"DISCORD_CLIENT_ID,required"`
	Permissions int64  `yaml:"-"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host" env:"DB_HOST,required"`
	Port           int    `yaml:"port" env:"DB_PORT,required"`
	User           string `yaml:"user" env:"DB_USER,required"`
	Password       string `yaml:"password" env:"DB_PASSWORD,required"`
	DBName         string `yaml:"dbname" env:"DB_NAME,required"`
	SSLMode        string `yaml:"sslmode" env:"DB_SSLMODE,required"`
	MaxConns       int32  `yaml:"max_conns"`
	EventsTable    string `yaml:"events_table"`
	AttendeesTable string `yaml:"attendees_table"`
}

// URL is the postgres connection string for the configured database.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type TagConfig struct {
	// TemplatePath is optional; the built-in badge layout is used when empty.
	TemplatePath string `yaml:"template_path"`
}

type RosterConfig struct {
	PageSize int `yaml:"page_size"`
}

type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Database DatabaseConfig `yaml:"database"`
	Tag      TagConfig      `yaml:"tag"`
	Roster   RosterConfig   `yaml:"roster"`
}

func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	// Replace environment variables in the YAML content
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Convert DB_PORT from string to int if it's an environment variable
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT value: %w", err)
		}
		cfg.Database.Port = port
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.EventsTable == "" {
		c.Database.EventsTable = "events"
	}
	if c.Database.AttendeesTable == "" {
		c.Database.AttendeesTable = "attendees"
	}
	if c.Roster.PageSize <= 0 || c.Roster.PageSize > 25 {
		c.Roster.PageSize = 10
	}
}
