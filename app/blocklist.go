package app

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/focusguard/internal/config"
	"github.com/ayoisaiah/focusguard/internal/pathutil"
	"github.com/ayoisaiah/focusguard/internal/ui"
	"github.com/ayoisaiah/focusguard/report"
)

// selectedBlocklist returns the list chosen with --app or --category. The
// domain blocklist is the default.
func selectedBlocklist(ctx *cli.Context) (config.Blocklist, error) {
	app, category := ctx.Bool("app"), ctx.Bool("category")

	switch {
	case app && category:
		return "", errConflictingFlags
	case app:
		return config.BlockedApps, nil
	case category:
		return config.BlockedCategories, nil
	default:
		return config.BlockedDomains, nil
	}
}

func editBlocklist(ctx *cli.Context, add bool) error {
	if !ctx.Args().Present() {
		return errMissingArgs
	}

	list, err := selectedBlocklist(ctx)
	if err != nil {
		return err
	}

	configPath := pathutil.ConfigFilePath()

	cfg, err := config.New(config.WithViperConfig(configPath))
	if err != nil {
		return err
	}

	entries := ctx.Args().Slice()

	var added, removed []string
	if add {
		added = entries
	} else {
		removed = entries
	}

	if list == config.BlockedCategories && add {
		for _, c := range entries {
			if _, ok := cfg.Blocking.CategoryApps[strings.ToLower(strings.TrimSpace(c))]; !ok {
				return errUnknownCategory.Fmt(c)
			}
		}
	}

	updated, err := config.EditBlocklist(configPath, list, added, removed)
	if err != nil {
		return err
	}

	verb := "removed"
	if add {
		verb = "added"
	}

	report.Success("%s %d entries: %d in the blocklist", verb, len(entries), len(updated))

	return nil
}

func blocklistAddAction(ctx *cli.Context) error {
	return editBlocklist(ctx, true)
}

func blocklistRemoveAction(ctx *cli.Context) error {
	return editBlocklist(ctx, false)
}

// blocklistListAction prints a blocklist. Categories are printed with the
// applications they cover.
func blocklistListAction(ctx *cli.Context) error {
	list, err := selectedBlocklist(ctx)
	if err != nil {
		return err
	}

	configPath := pathutil.ConfigFilePath()

	entries, err := config.ReadBlocklist(configPath, list)
	if err != nil {
		return err
	}

	entries = slices.Clone(entries)
	slices.SortFunc(entries, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}

		return 0
	})

	if ctx.Bool("json") {
		return json.NewEncoder(ctx.App.Writer).Encode(entries)
	}

	if len(entries) == 0 {
		report.Info("the blocklist is empty")
		return nil
	}

	if list != config.BlockedCategories {
		for _, e := range entries {
			fmt.Fprintln(ctx.App.Writer, e)
		}

		return nil
	}

	cfg, err := config.New(config.WithViperConfig(configPath))
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, c := range entries {
		rows = append(rows, []string{c, strings.Join(cfg.Blocking.CategoryApps[c], ", ")})
	}

	return ui.PrintTable(ctx.App.Writer, []string{"CATEGORY", "APPLICATIONS"}, rows)
}
