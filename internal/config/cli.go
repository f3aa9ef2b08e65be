package config

import (
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/focusguard/internal/timeutil"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Work          string
	Break         string
	Duration      string
	Tags          string
	Title         string
	Level         string
	SessionCmd    string
	Since         string
	DisableNotify bool
	Headless      bool
	Debug         bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Work:          ctx.String("work"),
			Break:         ctx.String("break"),
			Duration:      ctx.String("duration"),
			Tags:          ctx.String("tag"),
			Title:         ctx.String("title"),
			Level:         ctx.String("level"),
			SessionCmd:    ctx.String("session-cmd"),
			Since:         ctx.String("since"),
			DisableNotify: ctx.Bool("disable-notification"),
			Headless:      ctx.Bool("headless"),
			Debug:         ctx.Bool("debug"),
		}

		return applyCLIOptions(c, opts, time.Now())
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions, now time.Time) error {
	if err := applyCLIDurations(c, opts); err != nil {
		return err
	}

	if opts.Tags != "" {
		c.CLI.Tags = splitAndTrimTags(opts.Tags)
	}

	c.CLI.Title = strings.TrimSpace(opts.Title)
	c.CLI.Headless = opts.Headless
	c.CLI.Debug = opts.Debug

	if opts.Level != "" {
		c.Blocking.Level = opts.Level
	}

	if opts.DisableNotify {
		c.Notifications.Enabled = false
	}

	if opts.SessionCmd != "" {
		c.Settings.Cmd = opts.SessionCmd
	}

	if opts.Since == "" {
		c.CLI.StartTime = now
		return nil
	}

	startTime, err := timeutil.FromStr(opts.Since, now)
	if err != nil {
		return err
	}

	c.CLI.StartTime = startTime

	return nil
}

// applyCLIDurations parses durations given on the command line. A bare
// number is read as minutes.
func applyCLIDurations(c *Config, opts CLIOptions) error {
	durations := []struct {
		dst  *time.Duration
		name string
		val  string
	}{
		{&c.Work.Duration, "work", opts.Work},
		{&c.Break.Duration, "break", opts.Break},
		{&c.Settings.TotalDuration, "total", opts.Duration},
	}

	for _, d := range durations {
		if d.val == "" {
			continue
		}

		dur, err := parseDuration(d.val)
		if err != nil {
			return errInvalidCLIDuration.Fmt(d.name, d.val)
		}

		*d.dst = dur
	}

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	dur, err := time.ParseDuration(s)
	if err == nil {
		return dur, nil
	}

	return time.ParseDuration(s + "m")
}

// splitAndTrimTags splits a comma-separated tag string and trims whitespace.
func splitAndTrimTags(tags string) []string {
	split := strings.Split(tags, ",")

	trimmed := make([]string, 0, len(split))

	for _, tag := range split {
		if tag = strings.TrimSpace(tag); tag != "" {
			trimmed = append(trimmed, tag)
		}
	}

	return trimmed
}
