// /home/krylon/go/src/github.com/blicero/skylight/config/config.go
// -*- mode: go; coding: utf-8; -*-
// Created on 16. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 22:05:13 krylon>

// Package config loads the application's configuration from a YAML file,
// with environment variables taking precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/blicero/skylight/common"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the names of all environment variables we look at.
const EnvPrefix = "SKYLIGHT_"

// Storage selects where notifications are kept.
type Storage struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	Path    string `yaml:"path" env:"PATH"`
}

// Recipe configures the recipe scraper.
type Recipe struct {
	URL       string        `yaml:"url" env:"URL"`
	Interval  time.Duration `yaml:"interval" env:"INTERVAL"`
	Cache     string        `yaml:"cache" env:"CACHE"`
	UserAgent string        `yaml:"user_agent" env:"USER_AGENT"`
}

// Feed is a single ICS calendar.
type Feed struct {
	Name string `yaml:"name" env:"NAME"`
	URL  string `yaml:"url" env:"URL"`
}

// Calendar configures the calendar feeds.
type Calendar struct {
	Feeds       []Feed        `yaml:"feeds" envPrefix:"FEEDS"`
	Interval    time.Duration `yaml:"interval" env:"INTERVAL"`
	HorizonDays int           `yaml:"horizon_days" env:"HORIZON_DAYS"`
}

// Config is the complete configuration.
type Config struct {
	Address       string            `yaml:"address" env:"ADDRESS"`
	LogLevel      string            `yaml:"log_level" env:"LOG_LEVEL"`
	Storage       Storage           `yaml:"storage" envPrefix:"STORAGE_"`
	Devices       map[string]string `yaml:"devices" env:"DEVICES"`
	DeviceTimeout time.Duration     `yaml:"device_timeout" env:"DEVICE_TIMEOUT"`
	DeviceSpacing time.Duration     `yaml:"device_spacing" env:"DEVICE_SPACING"`
	Recipe        Recipe            `yaml:"recipe" envPrefix:"RECIPE_"`
	Calendar      Calendar          `yaml:"calendar" envPrefix:"CALENDAR_"`
	DNSSD         bool              `yaml:"dnssd" env:"DNSSD"`
	DesktopNotify bool              `yaml:"desktop_notify" env:"DESKTOP_NOTIFY"`
}

// DefaultUserAgent is what the recipe scraper claims to be.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// Default returns a Config with all values set to their defaults.
// Paths are resolved relative to common.BaseDir at the time of the call.
func Default() *Config {
	return &Config{
		Address:  fmt.Sprintf("0.0.0.0:%d", common.DefaultPort),
		LogLevel: "DEBUG",
		Storage: Storage{
			Backend: "file",
		},
		Devices:       make(map[string]string),
		DeviceTimeout: 10 * time.Second,
		DeviceSpacing: 200 * time.Millisecond,
		Recipe: Recipe{
			URL:       "https://cooking.nytimes.com",
			Interval:  time.Hour,
			Cache:     common.RecipeCachePath,
			UserAgent: DefaultUserAgent,
		},
		Calendar: Calendar{
			Feeds:       make([]Feed, 0),
			Interval:    15 * time.Minute,
			HorizonDays: 14,
		},
	}
} // func Default() *Config

// Load reads the configuration file at path and applies environment
// overrides. A missing file is not an error, the defaults are used then.
func Load(path string) (*Config, error) {
	var (
		err error
		buf []byte
		cfg = Default()
	)

	if buf, err = os.ReadFile(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
	} else if err = yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	if err = env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("cannot parse environment: %w", err)
	}

	if cfg.Devices == nil {
		cfg.Devices = make(map[string]string)
	}

	if cfg.Storage.Path == "" {
		switch cfg.Storage.Backend {
		case "sqlite":
			cfg.Storage.Path = common.DbPath
		default:
			cfg.Storage.Path = common.DocPath
		}
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
} // func Load(path string) (*Config, error)

// Validate checks the Config for values we cannot work with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend %q", c.Storage.Backend)
	}

	var lvlOK bool
	for _, l := range common.LogLevels {
		if string(l) == c.LogLevel {
			lvlOK = true
			break
		}
	}

	if !lvlOK {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	} else if c.Address == "" {
		return errors.New("address must not be empty")
	} else if c.DeviceTimeout <= 0 {
		return fmt.Errorf("device_timeout must be positive, not %s", c.DeviceTimeout)
	} else if c.DeviceSpacing < 0 {
		return fmt.Errorf("device_spacing must not be negative, not %s", c.DeviceSpacing)
	} else if c.Recipe.Interval <= 0 {
		return fmt.Errorf("recipe.interval must be positive, not %s", c.Recipe.Interval)
	} else if c.Calendar.Interval <= 0 {
		return fmt.Errorf("calendar.interval must be positive, not %s", c.Calendar.Interval)
	} else if c.Calendar.HorizonDays <= 0 {
		return fmt.Errorf("calendar.horizon_days must be positive, not %d", c.Calendar.HorizonDays)
	}

	for _, f := range c.Calendar.Feeds {
		if f.URL == "" {
			return fmt.Errorf("calendar feed %q has no URL", f.Name)
		}
	}

	return nil
} // func (c *Config) Validate() error
