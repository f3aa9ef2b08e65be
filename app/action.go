package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/focusguard/internal/config"
	"github.com/ayoisaiah/focusguard/internal/logging"
	"github.com/ayoisaiah/focusguard/internal/pathutil"
	"github.com/ayoisaiah/focusguard/internal/static"
	"github.com/ayoisaiah/focusguard/store"
	"github.com/ayoisaiah/focusguard/timer"
)

const (
	envNoColor           = "NO_COLOR"
	envFocusguardNoColor = "FOCUSGUARD_NO_COLOR"
)

const metaLogCloser = "log_closer"

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// loadConfig reads the config file, asking the first-run questions when it
// does not exist yet, and applies the command-line flags.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	configPath := pathutil.ConfigFilePath()

	return config.New(
		config.WithPromptConfig(configPath),
		config.WithViperConfig(configPath),
		config.WithCLIConfig(ctx),
	)
}

// openStore opens the database. It fails while a session is running in
// another process.
func openStore() (*store.Client, error) {
	return store.NewClient(pathutil.DBFilePath())
}

// editConfigAction handles the edit-config command which opens the config
// file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, pathutil.ConfigFilePath())

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// statusAction handles the status command and prints the status of the
// running session.
func statusAction(ctx *cli.Context) error {
	return timer.ReportStatus(
		ctx.App.Writer,
		pathutil.DBFilePath(),
		pathutil.StatusFilePath(),
	)
}

// startAction starts a focus session for a saved task (--task) or for a
// quick task built from the flags.
func startAction(ctx *cli.Context) error {
	if ctx.Args().Present() {
		return errUnexpectedArgs.Fmt(ctx.Args().First())
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	return runSession(ctx, cfg, sessionSource{taskPrefix: ctx.String("task")})
}

// resumeAction continues the session that was interrupted last.
func resumeAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	return runSession(ctx, cfg, sessionSource{resume: true})
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if FOCUSGUARD_NO_COLOR is set
	if _, exists := os.LookupEnv(envFocusguardNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	if err := pathutil.Initialize(); err != nil {
		return err
	}

	if err := static.Install(pathutil.Dir()); err != nil {
		return fmt.Errorf("installing data files: %w", err)
	}

	closer, err := logging.Initialize(logging.Options{
		Path:  pathutil.LogFilePath(),
		Debug: ctx.Bool("debug"),
	})
	if err != nil {
		return err
	}

	if ctx.App.Metadata == nil {
		ctx.App.Metadata = make(map[string]any)
	}

	ctx.App.Metadata[metaLogCloser] = closer

	slog.DebugContext(
		ctx.Context,
		"starting focusguard",
		slog.String("version", config.Version),
		slog.Any("args", ctx.Args().Slice()),
	)

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting focusguard")

	closer, ok := ctx.App.Metadata[metaLogCloser].(io.Closer)
	if !ok {
		return nil
	}

	if err := closer.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}

	return nil
}
