package config

import (
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/ayoisaiah/focusguard/blocking"
)

const asciiLogo = `
 ┏━╸┏━┓┏━╸╻ ╻┏━┓┏━╸╻ ╻┏━┓┏━┓╺┳┓
 ┣╸ ┃ ┃┃  ┃ ┃┗━┓┃╺┓┃ ┃┣━┫┣┳┛ ┃┃
 ╹  ┗━┛┗━╸┗━┛┗━┛┗━┛┗━┛╹ ╹╹┗╸╺┻┛`

// PromptOptions holds the user's responses to the configuration prompts.
type PromptOptions struct {
	Level         string
	WorkDuration  int
	BreakDuration int
	TotalDuration int
}

// WithPromptConfig returns an Option that asks for the main settings when
// there is no config file yet.
func WithPromptConfig(configPath string) Option {
	return func(c *Config) error {
		_, err := os.Stat(configPath)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return err
		}

		opts, err := promptUser()
		if err != nil {
			return errPrompt.Wrap(err)
		}

		applyPromptOptions(c, opts)

		return nil
	}
}

func promptUser() (PromptOptions, error) {
	var opts PromptOptions

	pterm.Println(asciiLogo)

	_ = putils.BulletListFromString(`Follow the prompts below to configure focusguard for the first time.
Select your preferred value, or press ENTER to accept the defaults.
Edit the config file with 'focusguard edit-config' to change any settings.`, " ").
		Render()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Focus phase length").
				Options(
					huh.NewOption("25 minutes", 25).Selected(true),
					huh.NewOption("35 minutes", 35),
					huh.NewOption("50 minutes", 50),
					huh.NewOption("90 minutes", 90),
				).
				Value(&opts.WorkDuration),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Break length").
				Options(
					huh.NewOption("5 minutes", 5).Selected(true),
					huh.NewOption("10 minutes", 10),
					huh.NewOption("15 minutes", 15),
				).
				Value(&opts.BreakDuration),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Default task length").
				Options(
					huh.NewOption("100 minutes", 100).Selected(true),
					huh.NewOption("2 hours", 120),
					huh.NewOption("4 hours", 240),
				).
				Value(&opts.TotalDuration),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Blocking level").
				Description("Strict adds network blocking. Maximum also prevents pausing focus phases.").
				Options(
					huh.NewOption("Off", blocking.Off.String()),
					huh.NewOption("Light", blocking.Light.String()).Selected(true),
					huh.NewOption("Strict", blocking.Strict.String()),
					huh.NewOption("Maximum", blocking.Maximum.String()),
				).
				Value(&opts.Level),
		),
	)

	err := form.Run()
	if err != nil {
		return opts, err
	}

	return opts, nil
}

func applyPromptOptions(c *Config, opts PromptOptions) {
	c.Work.Duration = time.Duration(opts.WorkDuration) * time.Minute
	c.Break.Duration = time.Duration(opts.BreakDuration) * time.Minute
	c.Settings.TotalDuration = time.Duration(opts.TotalDuration) * time.Minute
	c.Blocking.Level = opts.Level
}
