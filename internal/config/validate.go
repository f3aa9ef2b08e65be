package config

import (
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/blocking/network"
)

var (
	minPhaseDuration = 1 * time.Minute
	maxPhaseDuration = 720 * time.Minute

	hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if err := validatePhase(c.Work, "work", minPhaseDuration); err != nil {
		return err
	}

	if err := validatePhase(c.Break, "break", 0); err != nil {
		return err
	}

	if c.Break.Duration >= c.Work.Duration {
		return errBreakTooLong.Fmt(c.Break.Duration, c.Work.Duration)
	}

	if c.Settings.TotalDuration < c.Work.Duration {
		return errTotalTooShort.Fmt(c.Settings.TotalDuration, c.Work.Duration)
	}

	return c.Blocking.validate()
}

func validatePhase(pc PhaseConfig, name string, minDuration time.Duration) error {
	if pc.Duration < minDuration || pc.Duration > maxPhaseDuration {
		return errInvalidDuration.Fmt(name, minDuration, maxPhaseDuration)
	}

	if strings.TrimSpace(pc.Message) == "" {
		return errEmptyMsg.Fmt(name)
	}

	if !hexColorRegex.MatchString(pc.Color) {
		return errInvalidColor.Fmt(name, pc.Color)
	}

	return nil
}

func (b *BlockingConfig) validate() error {
	if _, err := blocking.ParseLevel(b.Level); err != nil {
		return err
	}

	if b.EmergencyAccessFraction <= 0 || b.EmergencyAccessFraction > 1 {
		return errInvalidFraction.Fmt(b.EmergencyAccessFraction)
	}

	if b.HistoryLimit <= 0 {
		return errInvalidHistoryLimit.Fmt(b.HistoryLimit)
	}

	if b.Sinkhole != "" {
		if _, _, err := net.SplitHostPort(b.Sinkhole); err != nil {
			return errInvalidSinkhole.Fmt(b.Sinkhole)
		}
	}

	for _, d := range b.Domains {
		if _, err := network.NormalizeDomain(d); err != nil {
			return err
		}
	}

	for _, cat := range b.Categories {
		if len(b.CategoryApps[strings.ToLower(strings.TrimSpace(cat))]) == 0 {
			return errUnknownCategory.Fmt(cat)
		}
	}

	return nil
}
