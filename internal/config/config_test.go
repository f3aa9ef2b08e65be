package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/internal/config"
	"github.com/ayoisaiah/focusguard/internal/testutil"
)

// defaultConfig returns a new Config instance with default values.
func defaultConfig() *config.Config {
	return &config.Config{
		Work: config.PhaseConfig{
			Message:  "Focus on your task",
			Color:    "#B0DB43",
			Duration: 25 * time.Minute,
		},
		Break: config.PhaseConfig{
			Message:  "Take a breather",
			Color:    "#12EAEA",
			Duration: 5 * time.Minute,
		},
		Settings: config.SettingsConfig{
			TotalDuration:  100 * time.Minute,
			AutoStartBreak: true,
			AutoStartWork:  true,
		},
		Blocking: config.BlockingConfig{
			Level:        "light",
			FocusProfile: "focus",
			HostsFile:    "/etc/hosts",
			CategoryApps: map[string][]string{
				"social":    {"discord", "slack", "telegram-desktop", "signal-desktop"},
				"games":     {"steam", "lutris", "heroic"},
				"streaming": {"spotify", "vlc", "mpv"},
			},
			EmergencyAccessFraction: 0.8,
			HistoryLimit:            500,
		},
		Notifications: config.NotificationConfig{
			Enabled: true,
		},
		Display: config.DisplayConfig{
			DarkTheme: true,
		},
	}
}

func assertConfig(t *testing.T, want, got *config.Config) {
	t.Helper()

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestViperWriteConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")

	cfg, err := config.New(config.WithViperConfig(configPath))
	require.NoError(t, err)

	assertConfig(t, defaultConfig(), cfg)

	b, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "emergency_access_fraction: 0.8")

	again, err := config.New(config.WithViperConfig(configPath))
	require.NoError(t, err)

	assertConfig(t, cfg, again)
}

func TestViperReadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")

	err := testutil.CopyFile("testdata/modified_config.yml", configPath)
	require.NoError(t, err)

	cfg, err := config.New(config.WithViperConfig(configPath))
	require.NoError(t, err)

	want := &config.Config{
		Work: config.PhaseConfig{
			Message:  "Focus on your task",
			Color:    "#B0DB43",
			Duration: 50 * time.Minute,
		},
		Break: config.PhaseConfig{
			Message:  "Take a short rest",
			Color:    "#12EAEA",
			Duration: 10 * time.Minute,
		},
		Settings: config.SettingsConfig{
			Cmd:            `notify-send "phase over"`,
			TotalDuration:  3 * time.Hour,
			AutoStartBreak: true,
			TwentyFourHour: true,
		},
		Blocking: config.BlockingConfig{
			CategoryApps: map[string][]string{
				"games": {"steam"},
			},
			Level:                   "strict",
			FocusProfile:            "deep-work",
			HostsFile:               "/etc/hosts",
			Sinkhole:                "127.0.0.1:8053",
			Apps:                    []string{"Firefox"},
			Categories:              []string{"games"},
			Domains:                 []string{"reddit.com", "news.ycombinator.com"},
			EmergencyAccessFraction: 0.5,
			HistoryLimit:            100,
		},
	}

	assertConfig(t, want, cfg)
}

func TestPolicy(t *testing.T) {
	cfg := defaultConfig()
	cfg.Blocking.Level = "maximum"
	cfg.Blocking.Apps = []string{"discord"}

	p := cfg.Policy()

	assert.Equal(t, blocking.Maximum, p.Level)
	assert.Equal(t, []string{"discord"}, p.Apps)
	assert.InDelta(t, 0.8, p.EmergencyAccessFraction, 1e-9)
	assert.Equal(t, "focus", p.FocusProfile)
	assert.False(t, p.ScreenTimeAuthorized)

	cfg.Blocking.Level = "bogus"
	assert.Equal(t, blocking.Off, cfg.Policy().Level)
}

func TestLivePolicyAppliesGrants(t *testing.T) {
	cfg := defaultConfig()
	cfg.CLI.Title = "thesis"

	live := config.NewLive(cfg, func(k blocking.Kind) bool {
		return k == blocking.ScreenTime
	})

	assert.True(t, live.Policy().ScreenTimeAuthorized)

	next := defaultConfig()
	next.Blocking.Domains = []string{"reddit.com"}

	live.Set(next)

	assert.Equal(t, []string{"reddit.com"}, live.Policy().Domains)
	assert.Equal(t, "thesis", live.Config().CLI.Title)
}

func TestQuickTask(t *testing.T) {
	cfg := defaultConfig()
	cfg.CLI.Tags = []string{"writing"}

	task := cfg.QuickTask("id-1")

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, "Focus session", task.Title)
	assert.Equal(t, 100, task.TotalMinutes)
	assert.Equal(t, 25, task.BlockMinutes)
	assert.Equal(t, 5, task.BreakMinutes)
	assert.Equal(t, 4, task.MaxIntervals())
	assert.True(t, task.Valid())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(c *config.Config)
		errMsg string
	}{
		{
			name:   "defaults",
			modify: func(*config.Config) {},
		},
		{
			name: "zero-length break",
			modify: func(c *config.Config) {
				c.Break.Duration = 0
			},
		},
		{
			name: "break longer than work",
			modify: func(c *config.Config) {
				c.Break.Duration = 30 * time.Minute
			},
			errMsg: "must be less than work duration",
		},
		{
			name: "work too short",
			modify: func(c *config.Config) {
				c.Work.Duration = 30 * time.Second
			},
			errMsg: "work duration must be between",
		},
		{
			name: "total shorter than work",
			modify: func(c *config.Config) {
				c.Settings.TotalDuration = 10 * time.Minute
			},
			errMsg: "total duration",
		},
		{
			name: "bad color",
			modify: func(c *config.Config) {
				c.Work.Color = "green"
			},
			errMsg: "valid hex color",
		},
		{
			name: "unknown level",
			modify: func(c *config.Config) {
				c.Blocking.Level = "extreme"
			},
			errMsg: "extreme",
		},
		{
			name: "fraction out of range",
			modify: func(c *config.Config) {
				c.Blocking.EmergencyAccessFraction = 1.5
			},
			errMsg: "emergency access fraction",
		},
		{
			name: "invalid domain",
			modify: func(c *config.Config) {
				c.Blocking.Domains = []string{"localhost"}
			},
			errMsg: "invalid domain",
		},
		{
			name: "sinkhole without port",
			modify: func(c *config.Config) {
				c.Blocking.Sinkhole = "127.0.0.1"
			},
			errMsg: "host:port",
		},
		{
			name: "category without apps",
			modify: func(c *config.Config) {
				c.Blocking.Categories = []string{"work"}
			},
			errMsg: `"work"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.errMsg == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestWatchReloadsConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")

	_, err := config.New(config.WithViperConfig(configPath))
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		domains []string
	)

	config.Watch(configPath, func(c *config.Config) {
		mu.Lock()
		defer mu.Unlock()

		domains = c.Blocking.Domains
	})

	b, err := os.ReadFile(configPath)
	require.NoError(t, err)

	updated := strings.Replace(string(b), "domains: []", "domains:\n        - reddit.com", 1)
	require.NotEqual(t, string(b), updated)
	require.NoError(t, os.WriteFile(configPath, []byte(updated), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(domains) == 1 && domains[0] == "reddit.com"
	}, 5*time.Second, 20*time.Millisecond)
}
