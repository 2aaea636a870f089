package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/orderbell/internal/api"
	"github.com/colonyops/orderbell/internal/core/logging"
	"github.com/colonyops/orderbell/internal/core/styles"
	"github.com/colonyops/orderbell/internal/orderbell"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	flags  *Flags
	app    *orderbell.App
	listen string
	watch  bool
	pprof  bool
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *orderbell.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the notification HTTP API",
		UsageText: "orderbell serve [--listen ADDR] [--watch] [--pprof]",
		Description: `Serves the notification API under /api/notifications and accepts order
snapshots on POST /api/orders/snapshot. With --watch the orders directory is
watched at the same time. Runs until interrupted.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "listen",
				Usage:       "listen address (overrides http.listen)",
				Sources:     cli.EnvVars("ORDERBELL_LISTEN"),
				Destination: &cmd.listen,
			},
			&cli.BoolFlag{
				Name:        "watch",
				Usage:       "also watch the orders directory",
				Destination: &cmd.watch,
			},
			&cli.BoolFlag{
				Name:        "pprof",
				Usage:       "serve profiling endpoints under /debug/pprof",
				Sources:     cli.EnvVars("ORDERBELL_PPROF"),
				Destination: &cmd.pprof,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	addr := cmd.app.Config.HTTP.Listen
	if cmd.listen != "" {
		addr = cmd.listen
	}

	logger := logging.Component("serve")

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	enabled := cmd.app.Initialize(ctx)
	cmd.app.StartSweep(ctx)

	if err := cmd.app.Orders.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("starting without order checkpoint")
	}

	router := api.NewRouter(api.Service{
		Prefs:        cmd.app.Prefs,
		Gate:         cmd.app.Gate,
		Dispatcher:   cmd.app.Dispatcher,
		Bus:          cmd.app.Bus,
		Orders:       cmd.app.Orders,
		HistoryLimit: cmd.app.Config.History.ListLimit,
		Profiler:     cmd.pprof,
	}, log.Logger)

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // SSE streams stay open
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cmd.watch {
		g.Go(func() error {
			return cmd.app.Orders.Watch(gctx, nil)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutCancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Warn().Err(err).Msg("server shutdown error")
		}
		return nil
	})

	logger.Info().Str("addr", addr).Bool("watch", cmd.watch).Msg("orderbell listening")
	_, _ = fmt.Fprintf(os.Stderr, "%s listening on http://%s %s\n",
		styles.TextPrimaryStyle.Render(styles.IconBell),
		addr,
		styles.TextMutedStyle.Render(fmt.Sprintf("(desktop notifications %s)", onOff(enabled))),
	)

	return g.Wait()
}
