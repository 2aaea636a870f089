// Package orderbell wires configuration, storage and host integrations into
// the services that commands and the HTTP API consume.
package orderbell

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/colonyops/orderbell/internal/core/config"
	"github.com/colonyops/orderbell/internal/core/kv"
	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/data/db"
	"github.com/colonyops/orderbell/internal/data/stores"
	"github.com/colonyops/orderbell/internal/integration/audio"
	"github.com/colonyops/orderbell/internal/integration/desktop"
	"github.com/colonyops/orderbell/internal/integration/toast"
	"github.com/colonyops/orderbell/internal/orderbell/sweep"
	"github.com/colonyops/orderbell/internal/store/jsonfile"
	"github.com/colonyops/orderbell/pkg/executil"
)

// ConnectFunc opens the host notification service.
type ConnectFunc func(opts desktop.Options, log zerolog.Logger) (*desktop.Sink, func(), error)

// Options supplies the host-facing dependencies of an App. Zero values pick
// the real implementations.
type Options struct {
	Out            io.Writer // toast output, defaults to stderr
	Prompter       desktop.Prompter
	Executor       executil.Executor
	ConnectDesktop ConnectFunc
	Logger         zerolog.Logger
}

// App is the central entry point for all orderbell operations.
// Commands and the HTTP API consume App instead of cherry-picking raw dependencies.
type App struct {
	Config     *config.Config
	DB         *db.DB
	KV         kv.KV
	History    notify.Store
	Prefs      *notify.Preferences
	Permission *desktop.Permission
	Gate       *notify.Gate
	Bus        *notify.Bus
	Toasts     *toast.Sink
	Dispatcher *notify.Dispatcher
	Orders     *OrderService
	Doctor     *DoctorService

	log     zerolog.Logger
	sweeper *sweep.Sweeper
	closers []func()
}

// OpenDatabase opens the application database. A corrupt database file is
// moved aside and a fresh one is created.
func OpenDatabase(cfg *config.Config, log zerolog.Logger) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, err
	}

	backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
	if rerr != nil {
		return nil, fmt.Errorf("recover corrupt database: %w", rerr)
	}
	log.Warn().Str("backup", backup).Msg("database was corrupt, moved aside and recreated")

	return db.Open(cfg.DataDir, opts)
}

// New builds an App over an open database and loads the notification
// preferences.
func New(ctx context.Context, cfg *config.Config, database *db.DB, opts Options) *App {
	log := opts.Logger
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = desktop.HuhPrompter{}
	}
	executor := opts.Executor
	if executor == nil {
		executor = &executil.RealExecutor{}
	}
	connect := opts.ConnectDesktop
	if connect == nil {
		connect = desktop.Connect
	}

	app := &App{
		Config: cfg,
		DB:     database,
		log:    log.With().Str("component", "app").Logger(),
	}

	var sweepable sweep.ExpiredSweeper
	switch cfg.Preferences.Backend {
	case config.BackendFile:
		store := jsonfile.NewKVStore(cfg.PreferencesFile())
		app.KV, sweepable = store, store
	default:
		store := stores.NewKVStore(database)
		app.KV, sweepable = store, store
	}

	app.History = stores.NewNotifyStore(database)
	app.Bus = notify.NewBus(app.History, log)
	app.Prefs = notify.NewPreferences(app.KV, log)
	app.Prefs.Load(ctx)

	var (
		host       *desktop.Sink
		desktopErr error
	)
	if cfg.Desktop.Enabled {
		sink, closer, err := connect(desktop.Options{AppName: cfg.Desktop.AppName, Icon: cfg.Desktop.Icon}, log)
		if err != nil {
			desktopErr = err
			app.log.Warn().Err(err).Msg("desktop notifications unavailable")
		} else {
			host = sink
			app.closers = append(app.closers, closer)
		}
	}

	// host stays an untyped nil when no daemon is connected.
	if host != nil {
		app.Permission = desktop.NewPermission(host, app.KV, prompter, log)
	} else {
		app.Permission = desktop.NewPermission(nil, app.KV, prompter, log)
	}
	app.Gate = notify.NewGate(app.Permission, app.Prefs, log)

	app.Toasts = toast.New(out)
	channels := notify.Channels{Toasts: app.Toasts}
	if cfg.Audio.Enabled {
		channels.Sound = audio.NewPlayer(executor, cfg.Audio.Player, cfg.Audio.SampleRate, log)
	}
	if host != nil {
		channels.Host = host
	}
	app.Dispatcher = notify.NewDispatcher(channels, app.Prefs, app.Gate, app.Bus, log)

	app.Orders = NewOrderService(cfg.Orders, app.Dispatcher, app.KV, log)
	app.Doctor = NewDoctorService(cfg, database, app.History, host, desktopErr, app.Gate)

	app.sweeper = &sweep.Sweeper{
		KV:        sweepable,
		History:   app.History,
		Retention: cfg.History.Retention,
		Log:       log.With().Str("component", "sweep").Logger(),
	}

	return app
}

// Initialize prepares notifications for a long-running session: the
// preferences are reloaded and, when host notifications are enabled,
// permission is requested. It reports whether host notifications will be
// shown.
func (a *App) Initialize(ctx context.Context) bool {
	cfg := a.Prefs.Load(ctx)
	if cfg.EnableBrowser {
		a.Gate.RequestPermission(ctx)
	}
	return a.Gate.HasPermission(ctx)
}

// StartSweep runs the history and KV sweep until ctx is done.
func (a *App) StartSweep(ctx context.Context) {
	go a.sweeper.Start(ctx, a.Config.History.SweepInterval)
}

// Close releases host connections. The database is owned by the caller.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
