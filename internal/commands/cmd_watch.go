package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/orderbell/internal/core/logging"
	"github.com/colonyops/orderbell/internal/core/order"
	"github.com/colonyops/orderbell/internal/core/styles"
	"github.com/colonyops/orderbell/internal/orderbell"
)

type WatchCmd struct {
	flags *Flags
	app   *orderbell.App
	dir   string
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags, app *orderbell.App) *WatchCmd {
	return &WatchCmd{flags: flags, app: app}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Watch a directory for order snapshots",
		UsageText: "orderbell watch [--dir DIR]",
		Description: `Watches the orders directory (orders.watch_dir) for snapshot files matching
orders.pattern and notifies about new pending orders as the files change.
Existing snapshots are processed on start. Runs until interrupted.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Usage:       "directory to watch (overrides orders.watch_dir)",
				Destination: &cmd.dir,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *WatchCmd) run(ctx context.Context, _ *cli.Command) error {
	if cmd.dir != "" {
		cmd.app.Config.Orders.WatchDir = cmd.dir
		cmd.app.Orders = orderbell.NewOrderService(cmd.app.Config.Orders, cmd.app.Dispatcher, cmd.app.KV, log.Logger)
	}

	logger := logging.Component("watch")

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	enabled := cmd.app.Initialize(ctx)
	cmd.app.StartSweep(ctx)

	if err := cmd.app.Orders.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("starting without order checkpoint")
	}

	w := os.Stderr
	_, _ = fmt.Fprintf(w, "%s watching %s %s\n",
		styles.TextPrimaryStyle.Render(styles.IconBell),
		cmd.app.Config.Orders.WatchDir,
		styles.TextMutedStyle.Render(fmt.Sprintf("(desktop notifications %s)", onOff(enabled))),
	)

	return cmd.app.Orders.Watch(ctx, func(path string, res order.Result) {
		if len(res.New) == 0 && len(res.Changed) == 0 {
			logger.Debug().Str("path", path).Msg("snapshot had nothing new")
			return
		}
		printResult(w, len(res.New), res)
	})
}
