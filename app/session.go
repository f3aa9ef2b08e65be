package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ayoisaiah/focusguard/blocking"
	"github.com/ayoisaiah/focusguard/blocking/focusmode"
	"github.com/ayoisaiah/focusguard/blocking/network"
	"github.com/ayoisaiah/focusguard/blocking/screentime"
	"github.com/ayoisaiah/focusguard/internal/config"
	"github.com/ayoisaiah/focusguard/internal/event"
	"github.com/ayoisaiah/focusguard/internal/logging"
	"github.com/ayoisaiah/focusguard/internal/models"
	"github.com/ayoisaiah/focusguard/internal/pathutil"
	"github.com/ayoisaiah/focusguard/internal/static"
	"github.com/ayoisaiah/focusguard/internal/ui"
	"github.com/ayoisaiah/focusguard/notify"
	"github.com/ayoisaiah/focusguard/report"
	"github.com/ayoisaiah/focusguard/store"
	"github.com/ayoisaiah/focusguard/timer"
)

const appName = "focusguard"

// sessionSource selects the task a session runs against.
type sessionSource struct {
	taskPrefix string
	resume     bool
}

// resolveTask returns the task to run: the owner of the saved session, a
// saved task, or a new quick task built from cfg which is saved first.
func resolveTask(
	db *store.Client,
	cfg *config.Config,
	src sessionSource,
) (*models.Task, error) {
	switch {
	case src.resume:
		id, err := db.SnapshotOwner()
		if err != nil {
			return nil, err
		}

		if id == "" {
			return nil, errNoSavedSession
		}

		return db.GetTask(id)
	case src.taskPrefix != "":
		task, err := findTask(db, src.taskPrefix)
		if err != nil {
			return nil, err
		}

		if task.CompletionPercentage() >= 100 {
			return nil, errTaskCompleted.Fmt(task.Title)
		}

		return task, nil
	}

	task := cfg.QuickTask(uuid.NewString())

	if err := db.SaveTask(task); err != nil {
		return nil, err
	}

	return task, nil
}

// storedGrants reads layer authorizations from db. Read failures count as
// not authorized.
func storedGrants(db *store.Client) func(k blocking.Kind) bool {
	return func(k blocking.Kind) bool {
		granted, err := db.Authorized(string(k))
		if err != nil {
			slog.Warn(
				"unable to read authorization",
				slog.String("layer", string(k)),
				slog.Any("error", err),
			)

			return false
		}

		return granted
	}
}

// layerSet holds the blocking layers of a session.
type layerSet struct {
	shield *screentime.Shield
	mode   *focusmode.Layer
	filter *network.Filter
	bus    *focusmode.SessionBus
}

func newLayerSet(
	cfg *config.Config,
	db *store.Client,
	consent screentime.ConsentFunc,
) *layerSet {
	shieldOpts := []screentime.Option{screentime.WithGrants(db)}
	if consent != nil {
		shieldOpts = append(shieldOpts, screentime.WithConsent(consent))
	}

	filterOpts := []network.Option{
		network.WithHistory(db.AttemptHistory(cfg.Blocking.HistoryLimit)),
	}

	if cfg.Blocking.Sinkhole != "" {
		filterOpts = append(filterOpts, network.WithSinkhole(cfg.Blocking.Sinkhole))
	}

	bus := focusmode.NewSessionBus(appName)

	return &layerSet{
		shield: screentime.New(screentime.NewProcFS(), shieldOpts...),
		mode:   focusmode.New(bus),
		filter: network.New(&network.Hosts{Path: cfg.Blocking.HostsFile}, filterOpts...),
		bus:    bus,
	}
}

// Layers returns the layers in arming order.
func (s *layerSet) Layers() []blocking.Layer {
	return []blocking.Layer{s.shield, s.mode, s.filter}
}

func (s *layerSet) Close() error {
	return s.bus.Close()
}

// domainDiff returns the domains in next that are missing from prev, and
// the domains in prev that are missing from next.
func domainDiff(prev, next []string) (added, removed []string) {
	for _, d := range next {
		if !slices.Contains(prev, d) {
			added = append(added, d)
		}
	}

	for _, d := range prev {
		if !slices.Contains(next, d) {
			removed = append(removed, d)
		}
	}

	return added, removed
}

// applyConfigChange updates the live configuration and carries domain
// blocklist edits over to the network filter so they apply to the current
// focus phase.
func applyConfigChange(
	ctx context.Context,
	live *config.Live,
	filter *network.Filter,
	next *config.Config,
) {
	added, removed := domainDiff(
		live.Config().Blocking.Domains,
		next.Blocking.Domains,
	)

	for _, d := range removed {
		if err := filter.RemoveBlockedDomain(ctx, d); err != nil {
			slog.WarnContext(ctx, "unable to unblock domain", slog.String("domain", d), slog.Any("error", err))
		}
	}

	for _, d := range added {
		if err := filter.AddBlockedDomain(ctx, d); err != nil {
			slog.WarnContext(ctx, "unable to block domain", slog.String("domain", d), slog.Any("error", err))
		}
	}

	live.Set(next)
}

// newNotifier builds the desktop notification and session command hooks.
func newNotifier(cfg *config.Config) *notify.Notifier {
	opts := []notify.Option{notify.WithCommand(cfg.Settings.Cmd)}

	if cfg.Notifications.Enabled {
		opts = append(opts, notify.WithDesktop(
			map[models.Phase]string{
				models.Focus: cfg.Work.Message,
				models.Break: cfg.Break.Message,
			},
			static.Path(pathutil.Dir(), static.IconFile),
		))
	}

	return notify.New(opts...)
}

// runSession runs a focus session until it completes, the user quits or the
// process receives SIGINT or SIGTERM. An unfinished session is saved so it
// can be resumed.
func runSession(ctx *cli.Context, cfg *config.Config, src sessionSource) error {
	slog.DebugContext(ctx.Context, "session config", logging.Dump("config", cfg))

	db, err := openStore()
	if err != nil {
		return err
	}

	defer db.Close()

	task, err := resolveTask(db, cfg, src)
	if err != nil {
		return err
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	live := config.NewLive(cfg, storedGrants(db))

	bus := event.NewBus()
	defer bus.Close()

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var model *timer.Model

	var consent screentime.ConsentFunc
	if !cfg.CLI.Headless {
		consent = func(c context.Context) (bool, error) {
			return model.Consent(c)
		}
	}

	layers := newLayerSet(cfg, db, consent)
	defer layers.Close()

	coord := blocking.New(layers.Layers(), blocking.WithEmitter(bus))

	t, err := timer.New(
		task,
		db,
		coord,
		timer.WithEmitter(bus),
		timer.WithPolicy(live.Policy),
		timer.WithStatusFile(pathutil.StatusFilePath()),
		timer.WithMachineOptions(timer.WithAutoStart(
			cfg.Settings.AutoStartBreak,
			cfg.Settings.AutoStartWork,
		)),
	)
	if err != nil {
		return err
	}

	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	go newNotifier(cfg).Listen(sigCtx, events)

	config.Watch(pathutil.ConfigFilePath(), func(next *config.Config) {
		applyConfigChange(sigCtx, live, layers.filter, next)
	})

	if !cfg.CLI.Headless {
		model = timer.NewModel(sigCtx, t, timer.Theme{
			FocusColor: cfg.Work.Color,
			BreakColor: cfg.Break.Color,
		})
	}

	if !t.Restore(sigCtx) {
		t.Start()
	}

	shutdownCtx := context.WithoutCancel(ctx.Context)

	if cfg.CLI.Headless {
		return runHeadless(sigCtx, shutdownCtx, ctx.App.Writer, t, bus)
	}

	return runInteractive(sigCtx, shutdownCtx, t, model)
}

// runInteractive shows the terminal view while the timer runs.
func runInteractive(
	ctx, shutdownCtx context.Context,
	t *timer.Timer,
	model *timer.Model,
) error {
	p := tea.NewProgram(model, tea.WithContext(ctx))
	model.Attach(p)

	var g errgroup.Group

	g.Go(func() error {
		return t.Run(ctx)
	})

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}

	finishSession(shutdownCtx, t)

	if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		return werr
	}

	return err
}

// runHeadless prints each phase as it starts until the session ends.
func runHeadless(
	ctx, shutdownCtx context.Context,
	w io.Writer,
	t *timer.Timer,
	bus *event.Bus,
) error {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	printPhase := func(e event.Event) {
		if e.Kind == event.PhaseCompleted {
			timer.PrintPhase(w, t)
		}
	}

	timer.PrintPhase(w, t)

	var g errgroup.Group

	g.Go(func() error {
		return t.Run(ctx)
	})

loop:
	for {
		select {
		case e := <-events:
			printPhase(e)
		case <-t.Done():
			// the last transition is published before Done is closed
			for len(events) > 0 {
				printPhase(<-events)
			}

			break loop
		case <-ctx.Done():
			break loop
		}
	}

	finishSession(shutdownCtx, t)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// finishSession clears a completed session and saves an unfinished one. In
// both cases blocking is disarmed before it returns.
func finishSession(ctx context.Context, t *timer.Timer) {
	task := t.Task()
	progress := ui.Progress(task.CompletionPercentage())

	if t.State().Phase == models.Completed {
		if err := t.Exit(ctx); err != nil {
			report.Warn("unable to lift blocking: %v", err)
		}

		report.Success("%s: %s complete", task.Title, progress)

		return
	}

	if err := t.Suspend(ctx); err != nil {
		report.Warn("unable to lift blocking: %v", err)
	}

	report.Info(
		"%s: %s complete. Run 'focusguard resume' to continue",
		task.Title,
		progress,
	)
}
