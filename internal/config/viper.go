package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/blocking/network"
)

const (
	keyWorkDuration            = "work.duration"
	keyWorkMessage             = "work.message"
	keyWorkColor               = "work.color"
	keyBreakDuration           = "break.duration"
	keyBreakMessage            = "break.message"
	keyBreakColor              = "break.color"
	keyTotalDuration           = "settings.total_duration"
	keyAutoStartWork           = "settings.auto_start_work"
	keyAutoStartBreak          = "settings.auto_start_break"
	keySessionCmd              = "settings.cmd"
	keyTwentyFourHour          = "settings.24hr_clock"
	keyNotificationsEnabled    = "notifications.enabled"
	keyDarkTheme               = "display.dark_theme"
	keyBlockingLevel           = "blocking.level"
	keyBlockingApps            = "blocking.apps"
	keyBlockingCategories      = "blocking.categories"
	keyBlockingCategoryApps    = "blocking.category_apps"
	keyBlockingDomains         = "blocking.domains"
	keyEmergencyAccessFraction = "blocking.emergency_access_fraction"
	keyFocusProfile            = "blocking.focus_profile"
	keyHostsFile               = "blocking.hosts_file"
	keySinkhole                = "blocking.sinkhole"
	keyHistoryLimit            = "blocking.history_limit"
)

// defaultCategoryApps maps the built-in categories to process names.
var defaultCategoryApps = map[string][]string{
	"social":    {"discord", "slack", "telegram-desktop", "signal-desktop"},
	"games":     {"steam", "lutris", "heroic"},
	"streaming": {"spotify", "vlc", "mpv"},
}

// WithViperConfig returns an Option that loads configuration from the file at
// configPath, writing the defaults there first if it does not exist.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := newViper(configPath)

		setupViper(v, c)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	return v
}

// setupViper sets the defaults. Values already present in c, such as answers
// to the first-run prompt, take their place.
func setupViper(v *viper.Viper, c *Config) {
	v.SetDefault(keyWorkDuration, "25m")
	v.SetDefault(keyWorkMessage, "Focus on your task")
	v.SetDefault(keyWorkColor, "#B0DB43")
	v.SetDefault(keyBreakDuration, "5m")
	v.SetDefault(keyBreakMessage, "Take a breather")
	v.SetDefault(keyBreakColor, "#12EAEA")
	v.SetDefault(keyTotalDuration, "100m")
	v.SetDefault(keyAutoStartBreak, true)
	v.SetDefault(keyAutoStartWork, true)
	v.SetDefault(keySessionCmd, "")
	v.SetDefault(keyTwentyFourHour, false)
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyBlockingLevel, blocking.Light.String())
	v.SetDefault(keyBlockingApps, []string{})
	v.SetDefault(keyBlockingCategories, []string{})
	v.SetDefault(keyBlockingCategoryApps, defaultCategoryApps)
	v.SetDefault(keyBlockingDomains, []string{})
	v.SetDefault(keyEmergencyAccessFraction, blocking.DefaultEmergencyAccessFraction)
	v.SetDefault(keyFocusProfile, "focus")
	v.SetDefault(keyHostsFile, network.DefaultHostsPath)
	v.SetDefault(keySinkhole, "")
	v.SetDefault(keyHistoryLimit, network.DefaultHistoryLimit)

	if c.Work.Duration > 0 {
		v.SetDefault(keyWorkDuration, c.Work.Duration.String())
	}

	if c.Break.Duration > 0 {
		v.SetDefault(keyBreakDuration, c.Break.Duration.String())
	}

	if c.Settings.TotalDuration > 0 {
		v.SetDefault(keyTotalDuration, c.Settings.TotalDuration.String())
	}

	if c.Blocking.Level != "" {
		v.SetDefault(keyBlockingLevel, c.Blocking.Level)
	}
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	cli := c.CLI

	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	c.CLI = cli

	return nil
}

// Watch calls fn with the new configuration whenever the file at configPath
// is written. Configurations that fail validation are logged and skipped.
func Watch(configPath string, fn func(*Config)) {
	v := newViper(configPath)

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		cfg, err := New(func(c *Config) error {
			setupViper(v, c)
			return loadViperConfig(v, c)
		})
		if err != nil {
			slog.Warn(
				"ignoring config change",
				slog.String("path", e.Name),
				slog.Any("error", err),
			)

			return
		}

		slog.Info("config reloaded", slog.String("path", e.Name))

		fn(cfg)
	})

	if err := v.ReadInConfig(); err != nil {
		slog.Warn("unable to watch config", slog.Any("error", err))
		return
	}

	v.WatchConfig()
}
