package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/focusguard/internal/config"
	"github.com/ayoisaiah/focusguard/internal/models"
	"github.com/ayoisaiah/focusguard/internal/pathutil"
	"github.com/ayoisaiah/focusguard/internal/ui"
	"github.com/ayoisaiah/focusguard/report"
	"github.com/ayoisaiah/focusguard/store"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}

	return id[:shortIDLen]
}

// findTask returns the saved task whose id starts with prefix.
func findTask(db store.DB, prefix string) (*models.Task, error) {
	tasks, err := db.Tasks()
	if err != nil {
		return nil, err
	}

	var match *models.Task

	for _, task := range tasks {
		if !strings.HasPrefix(task.ID, prefix) {
			continue
		}

		if match != nil {
			return nil, errAmbiguousTask.Fmt(prefix)
		}

		match = task
	}

	if match == nil {
		return nil, errTaskNotFound.Fmt(prefix)
	}

	return match, nil
}

// confirm asks a yes/no question unless skip is set.
func confirm(title string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}

	var ok bool

	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()

	return ok, err
}

// taskAddAction saves a task built from the flags and the configured
// defaults.
func taskAddAction(ctx *cli.Context) error {
	if strings.TrimSpace(ctx.String("title")) == "" {
		return errMissingTitle
	}

	cfg, err := config.New(
		config.WithViperConfig(pathutil.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}

	defer db.Close()

	task := cfg.QuickTask(uuid.NewString())

	if err := db.SaveTask(task); err != nil {
		return err
	}

	report.Success(
		"saved %q as %s: run it with 'focusguard --task %s'",
		task.Title,
		shortID(task.ID),
		shortID(task.ID),
	)

	return nil
}

func taskRows(tasks []*models.Task) [][]string {
	rows := make([][]string, 0, len(tasks))

	for _, task := range tasks {
		rows = append(rows, []string{
			shortID(task.ID),
			task.Title,
			strings.Join(task.Tags, ", "),
			fmt.Sprintf("%dm / %dm", task.BlockMinutes, task.BreakMinutes),
			fmt.Sprintf("%dm of %dm", task.CompletedMinutes, task.TotalMinutes),
			ui.Progress(task.CompletionPercentage()),
			task.CreatedAt.Format("Jan 02, 2006 03:04 PM"),
		})
	}

	return rows
}

// taskListAction prints the saved tasks.
func taskListAction(ctx *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	defer db.Close()

	tasks, err := db.Tasks()
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return json.NewEncoder(ctx.App.Writer).Encode(tasks)
	}

	if len(tasks) == 0 {
		report.Info("no saved tasks: add one with 'focusguard task add --title <title>'")
		return nil
	}

	return ui.PrintTable(
		ctx.App.Writer,
		[]string{"#", "TITLE", "TAGS", "FOCUS / BREAK", "DONE", "PROGRESS", "CREATED"},
		taskRows(tasks),
	)
}

// taskDeleteAction deletes the tasks named by id prefix.
func taskDeleteAction(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return errMissingArgs
	}

	db, err := openStore()
	if err != nil {
		return err
	}

	defer db.Close()

	tasks := make([]*models.Task, 0, ctx.NArg())

	for _, prefix := range ctx.Args().Slice() {
		task, err := findTask(db, prefix)
		if err != nil {
			return err
		}

		tasks = append(tasks, task)
	}

	if err := ui.PrintTable(
		ctx.App.Writer,
		[]string{"#", "TITLE", "TAGS", "FOCUS / BREAK", "DONE", "PROGRESS", "CREATED"},
		taskRows(tasks),
	); err != nil {
		return err
	}

	ok, err := confirm(
		fmt.Sprintf("Delete %d task(s) and any saved session they own?", len(tasks)),
		ctx.Bool("yes"),
	)
	if err != nil || !ok {
		return err
	}

	for _, task := range tasks {
		if err := db.DeleteTask(task.ID); err != nil {
			return err
		}
	}

	report.Success("deleted %d task(s)", len(tasks))

	return nil
}
