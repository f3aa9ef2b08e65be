package app

import "github.com/urfave/cli/v2"

var (
	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only show entries after this date or time (e.g. 'yesterday', '2 hours ago', '2024-05-01')",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Write debug messages to the log file",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears after each phase",
	}

	sessionCmdFlag = &cli.StringFlag{
		Name:    "session-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after each phase",
	}

	addTagFlag = &cli.StringFlag{
		Name:    "tag",
		Aliases: []string{"t"},
		Usage:   "Add comma-delimited tags to the task",
	}

	titleFlag = &cli.StringFlag{
		Name:  "title",
		Usage: "Title of the task",
	}

	taskFlag = &cli.StringFlag{
		Name:  "task",
		Usage: "Run a saved task by id (a unique prefix is enough)",
	}

	workFlag = &cli.StringFlag{
		Name:    "work",
		Aliases: []string{"w"},
		Usage:   "Focus phase duration in minutes (default: 25)",
	}

	breakFlag = &cli.StringFlag{
		Name:    "break",
		Aliases: []string{"b"},
		Usage:   "Break duration in minutes (default: 5)",
	}

	durationFlag = &cli.StringFlag{
		Name:  "duration",
		Usage: "Total planned focus time of the task (default: 100m)",
	}

	levelFlag = &cli.StringFlag{
		Name:    "level",
		Aliases: []string{"l"},
		Usage:   "Blocking level: off, light, strict or maximum",
	}

	headlessFlag = &cli.BoolFlag{
		Name:  "headless",
		Usage: "Print phase changes instead of showing the interactive timer",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output as JSON",
	}

	appFlag = &cli.BoolFlag{
		Name:  "app",
		Usage: "Edit the application blocklist instead of the domain blocklist",
	}

	categoryFlag = &cli.BoolFlag{
		Name:  "category",
		Usage: "Edit the blocked application categories",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Do not ask for confirmation",
	}
)

var sessionFlags = []cli.Flag{
	workFlag,
	breakFlag,
	durationFlag,
	addTagFlag,
	titleFlag,
	taskFlag,
	levelFlag,
	sessionCmdFlag,
	disableNotificationFlag,
	headlessFlag,
}
