// Package config loads ~/.mandaact/config.yaml and the environment overrides
// layered on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the per-user directory holding config, database and logs.
	Dir      = ".mandaact"
	FileName = "config.yaml"

	DefaultTimezone = "Asia/Seoul"
	DefaultListen   = ":8080"
	dbFileName      = "mandaact.db"
	logFileName     = "mandaact.log"
)

// Environment overrides. A .env file in the working directory is read first.
const (
	EnvDatabase = "MANDAACT_DATABASE"
	EnvTimezone = "MANDAACT_TIMEZONE"
	EnvUser     = "MANDAACT_USER"
	EnvListen   = "MANDAACT_LISTEN"
)

// Config models config.yaml.
type Config struct {
	UserID   string `yaml:"user_id"`
	Timezone string `yaml:"timezone"`
	// Database is a SQLite file path or a postgres:// DSN.
	Database string `yaml:"database"`
	LogFile  string `yaml:"log_file,omitempty"`
	Listen   string `yaml:"listen,omitempty"`

	path string
	loc  *time.Location
}

// DefaultPath returns ~/.mandaact/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: get home dir: %w", err)
	}
	return filepath.Join(home, Dir, FileName), nil
}

// Load reads .env (if any) and the default config file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, writing a fresh one with a new user id
// when the file does not exist yet. Environment variables win over the file.
func LoadFrom(path string) (*Config, error) {
	c := &Config{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.UserID = uuid.NewString()
		c.Timezone = DefaultTimezone
		c.Database = filepath.Join(filepath.Dir(path), dbFileName)
		if err := c.Save(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnv()
	c.applyDefaults()
	if strings.TrimSpace(c.UserID) == "" {
		return nil, fmt.Errorf("config: %s has no user_id", path)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	c.loc = loc
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.UserID = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
}

func (c *Config) applyDefaults() {
	dir := filepath.Dir(c.path)
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Database == "" {
		c.Database = filepath.Join(dir, dbFileName)
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "logs", logFileName)
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
}

// Save writes the config back to its file.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("config: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", c.path, err)
	}
	return nil
}

func (c *Config) Path() string { return c.path }

// Location is the user's zone. Every "now" handed to the engine is in it.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Now returns the current time in the user's zone.
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location())
}
