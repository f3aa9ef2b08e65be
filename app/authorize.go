package app

import (
	"context"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/internal/config"
	"github.com/ayoisaiah/focusguard/internal/pathutil"
	"github.com/ayoisaiah/focusguard/report"
)

// askConsent asks whether blocked applications may be closed.
func askConsent(_ context.Context) (bool, error) {
	var ok bool

	err := huh.NewConfirm().
		Title("Allow focusguard to close blocked applications during focus phases?").
		Description("Applications in your blocklist are terminated while a focus phase is running.").
		Affirmative("Allow").
		Negative("Deny").
		Value(&ok).
		Run()

	return ok, err
}

// authorizeAction asks a blocking layer for permission outside a session.
// The screen-time grant is persisted; the other layers report whether they
// can be enforced on this system.
func authorizeAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errLayerArg
	}

	kind, err := blocking.ParseKind(ctx.Args().First())
	if err != nil {
		return err
	}

	cfg, err := config.New(config.WithViperConfig(pathutil.ConfigFilePath()))
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}

	defer db.Close()

	layers := newLayerSet(cfg, db, askConsent)
	defer layers.Close()

	coord := blocking.New(layers.Layers())

	granted, err := coord.RequestAuthorization(ctx.Context, kind)
	if err != nil && !granted {
		return err
	}

	if !granted {
		report.Warn("%s layer was not authorized", kind)
		return nil
	}

	report.Success("%s layer is authorized", kind)

	return nil
}
