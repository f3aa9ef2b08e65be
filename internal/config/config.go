// Package config loads focusguard settings from the config file, command-line
// flags and the first-run prompt
package config

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/internal/models"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Work          PhaseConfig        `mapstructure:"work"`
		Break         PhaseConfig        `mapstructure:"break"`
		Settings      SettingsConfig     `mapstructure:"settings"`
		Blocking      BlockingConfig     `mapstructure:"blocking"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Display       DisplayConfig      `mapstructure:"display"`
		CLI           CLIConfig          `mapstructure:"-"`
	}

	// PhaseConfig holds the settings of one phase.
	PhaseConfig struct {
		Message  string        `mapstructure:"message"`
		Color    string        `mapstructure:"color"`
		Duration time.Duration `mapstructure:"duration"`
	}

	// SettingsConfig holds session-related settings.
	SettingsConfig struct {
		Cmd            string        `mapstructure:"cmd"`
		TotalDuration  time.Duration `mapstructure:"total_duration"`
		AutoStartBreak bool          `mapstructure:"auto_start_break"`
		AutoStartWork  bool          `mapstructure:"auto_start_work"`
		TwentyFourHour bool          `mapstructure:"24hr_clock"`
	}

	// BlockingConfig holds the distraction-blocking policy.
	BlockingConfig struct {
		CategoryApps            map[string][]string `mapstructure:"category_apps"`
		Level                   string              `mapstructure:"level"`
		FocusProfile            string              `mapstructure:"focus_profile"`
		HostsFile               string              `mapstructure:"hosts_file"`
		Sinkhole                string              `mapstructure:"sinkhole"`
		Apps                    []string            `mapstructure:"apps"`
		Categories              []string            `mapstructure:"categories"`
		Domains                 []string            `mapstructure:"domains"`
		EmergencyAccessFraction float64             `mapstructure:"emergency_access_fraction"`
		HistoryLimit            int                 `mapstructure:"history_limit"`
	}

	// NotificationConfig holds notification settings.
	NotificationConfig struct {
		Enabled bool `mapstructure:"enabled"`
	}

	// DisplayConfig holds display-related settings.
	DisplayConfig struct {
		DarkTheme bool `mapstructure:"dark_theme"`
	}

	// CLIConfig holds values that only come from the command line.
	CLIConfig struct {
		StartTime time.Time
		Title     string
		Tags      []string
		Headless  bool
		Debug     bool
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.1.0"

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a new Config and applies options in order.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// Policy converts the blocking settings into the coordinator's config. A
// level that cannot be parsed turns blocking off.
func (c *Config) Policy() *blocking.Config {
	level, err := blocking.ParseLevel(c.Blocking.Level)
	if err != nil {
		level = blocking.Off
	}

	return &blocking.Config{
		Level:                   level,
		Apps:                    c.Blocking.Apps,
		Categories:              c.Blocking.Categories,
		CategoryApps:            c.Blocking.CategoryApps,
		Domains:                 c.Blocking.Domains,
		EmergencyAccessFraction: c.Blocking.EmergencyAccessFraction,
		FocusProfile:            c.Blocking.FocusProfile,
	}
}

// QuickTask returns an unsaved task built from the configured phase lengths
// and the command-line title and tags.
func (c *Config) QuickTask(id string) *models.Task {
	title := c.CLI.Title
	if title == "" {
		title = "Focus session"
	}

	return &models.Task{
		ID:           id,
		Title:        title,
		Tags:         c.CLI.Tags,
		TotalMinutes: int(c.Settings.TotalDuration.Minutes()),
		BlockMinutes: int(c.Work.Duration.Minutes()),
		BreakMinutes: int(c.Break.Duration.Minutes()),
		CreatedAt:    c.CLI.StartTime,
	}
}

// Live holds the current configuration of a running session. It is replaced
// when the config file changes.
type Live struct {
	cfg *Config
	// grants reports whether a layer was authorized by the user
	grants func(k blocking.Kind) bool
	mu     sync.RWMutex
}

// NewLive returns a holder for cfg. grants may be nil.
func NewLive(cfg *Config, grants func(k blocking.Kind) bool) *Live {
	return &Live{cfg: cfg, grants: grants}
}

// Config returns the current configuration.
func (l *Live) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.cfg
}

// Set replaces the configuration. Command-line values are carried over.
func (l *Live) Set(cfg *Config) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg.CLI = l.cfg.CLI

	l.cfg = cfg
}

// Policy returns the blocking policy of the current configuration with
// persisted grants applied.
func (l *Live) Policy() *blocking.Config {
	p := l.Config().Policy()

	if l.grants != nil {
		p.ScreenTimeAuthorized = l.grants(blocking.ScreenTime)
	}

	return p
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"work=%s break=%s total=%s level=%s",
		c.Work.Duration,
		c.Break.Duration,
		c.Settings.TotalDuration,
		c.Blocking.Level,
	)
}
