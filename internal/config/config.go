// Package config loads NexaCode settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr    string        `yaml:"addr"`
	DBPath  string        `yaml:"db_path"`
	Dev     bool          `yaml:"dev"`
	Preview PreviewConfig `yaml:"preview"`
	Listing ListingConfig `yaml:"listing"`
	Profile ProfileConfig `yaml:"profile"`
	Session SessionConfig `yaml:"session"`
	Auth    AuthConfig    `yaml:"auth"`
}

type PreviewConfig struct {
	// Quiescence is how long a buffer must stay unchanged before the
	// preview is recomposed.
	Quiescence time.Duration `yaml:"quiescence"`
}

type ListingConfig struct {
	PageSize int `yaml:"page_size"`
}

type ProfileConfig struct {
	RecentProjects int `yaml:"recent_projects"`
}

type SessionConfig struct {
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	ReapInterval time.Duration `yaml:"reap_interval"`
}

type AuthConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

func Default() Config {
	var c Config
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "nexacode.db"
	}
	if c.Preview.Quiescence <= 0 {
		c.Preview.Quiescence = 300 * time.Millisecond
	}
	if c.Listing.PageSize <= 0 {
		c.Listing.PageSize = 6
	}
	if c.Profile.RecentProjects <= 0 {
		c.Profile.RecentProjects = 6
	}
	if c.Session.IdleTimeout <= 0 {
		c.Session.IdleTimeout = 30 * time.Minute
	}
	if c.Session.ReapInterval <= 0 {
		c.Session.ReapInterval = time.Minute
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and fills defaults. Commands that serve requests
// call Validate on the result.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := c.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	c.defaults()
	return c, nil
}

// ApplyEnv overrides fields from NEXACODE_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("NEXACODE_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NEXACODE_DEV: %w", err)
		}
		c.Dev = dev
	}
	if v := getenv("NEXACODE_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("NEXACODE_DB"); v != "" {
		c.DBPath = v
	}
	if v := getenv("NEXACODE_AUTH_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := getenv("NEXACODE_QUIESCENCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NEXACODE_QUIESCENCE: %w", err)
		}
		c.Preview.Quiescence = d
	}
	return nil
}

func (c Config) Validate() error {
	if !c.Dev && c.Auth.Secret == "" {
		return errors.New("config: auth.secret is required outside dev mode")
	}
	return nil
}
