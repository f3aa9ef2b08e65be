// Package app defines the focusguard command-line interface
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/focusguard/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the focusguard app instance.
func Get() *cli.App {
	focusApp := &cli.App{
		Name: "focusguard",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		focusguard is a focus timer for the command-line. It runs focus and
		break intervals against a task and blocks distracting applications,
		notifications and websites while you focus.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Start a focus session (default)",
				Flags:  sessionFlags,
				Action: startAction,
			},
			{
				Name:   "resume",
				Usage:  "Resume the last interrupted session",
				Flags:  []cli.Flag{headlessFlag, disableNotificationFlag, sessionCmdFlag},
				Action: resumeAction,
			},
			{
				Name:   "status",
				Usage:  "Print the status of the running session",
				Action: statusAction,
			},
			{
				Name:  "task",
				Usage: "Manage saved tasks",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Save a task to run later",
						UsageText: "focusguard task add --title <title> [OPTIONS]",
						Flags: []cli.Flag{
							titleFlag, addTagFlag, workFlag, breakFlag, durationFlag,
						},
						Action: taskAddAction,
					},
					{
						Name:   "list",
						Usage:  "List saved tasks",
						Flags:  []cli.Flag{jsonFlag},
						Action: taskListAction,
					},
					{
						Name:      "delete",
						Usage:     "Delete saved tasks",
						UsageText: "focusguard task delete <id>...",
						Flags:     []cli.Flag{yesFlag},
						Action:    taskDeleteAction,
					},
				},
			},
			{
				Name:  "blocklist",
				Usage: "Manage blocked domains, applications and categories",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add entries to a blocklist",
						UsageText: "focusguard blocklist add [--app|--category] <entry>...",
						Flags:     []cli.Flag{appFlag, categoryFlag},
						Action:    blocklistAddAction,
					},
					{
						Name:      "remove",
						Usage:     "Remove entries from a blocklist",
						UsageText: "focusguard blocklist remove [--app|--category] <entry>...",
						Flags:     []cli.Flag{appFlag, categoryFlag},
						Action:    blocklistRemoveAction,
					},
					{
						Name:   "list",
						Usage:  "Print a blocklist",
						Flags:  []cli.Flag{appFlag, categoryFlag, jsonFlag},
						Action: blocklistListAction,
					},
				},
			},
			{
				Name:   "history",
				Usage:  "Show blocked access attempts",
				Flags:  []cli.Flag{sinceFlag, jsonFlag},
				Action: historyAction,
				Subcommands: []*cli.Command{
					{
						Name:   "clear",
						Usage:  "Delete the blocked access history",
						Flags:  []cli.Flag{yesFlag},
						Action: historyClearAction,
					},
				},
			},
			{
				Name:      "authorize",
				Usage:     "Authorize a blocking layer (screen_time, focus_mode or network)",
				UsageText: "focusguard authorize <layer>",
				Action:    authorizeAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags:  append([]cli.Flag{debugFlag, noColorFlag}, sessionFlags...),
		Action: startAction,
		Before: beforeAction,
		After:  afterAction,
	}

	return focusApp
}
