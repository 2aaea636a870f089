package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/styles"
	"github.com/colonyops/orderbell/internal/orderbell"
	"github.com/colonyops/orderbell/pkg/iojson"
)

type HistoryCmd struct {
	flags  *Flags
	app    *orderbell.App
	format string
	limit  int
	clear  bool
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags, app *orderbell.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List dispatched notifications",
		UsageText: "orderbell history [--limit N] [--format json] [--clear]",
		Description: `Lists persisted notifications, newest first, with the outcome of every
channel. History older than history.retention is pruned in the background
while serve or watch is running.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum number of notifications (0 for all, defaults to history.list_limit)",
				Value:       -1,
				Destination: &cmd.limit,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       formatText,
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete all history",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.clear {
		if err := cmd.app.Bus.Clear(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "%s history cleared\n", styles.TextSuccessStyle.Render(styles.IconPass))
		return nil
	}

	limit := cmd.limit
	if limit < 0 {
		limit = cmd.app.Config.History.ListLimit
	}

	records, err := cmd.app.Bus.History(ctx, limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	if cmd.format == formatJSON {
		if records == nil {
			records = []notify.Record{}
		}
		return iojson.WriteWith(c.Root().Writer, os.Stderr, records)
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "No notifications found")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tLEVEL\tMESSAGE\tDELIVERY")
	for _, r := range records {
		msg := r.Message
		if r.Title != "" && r.Kind == notify.KindNewOrder {
			msg = r.Title + " · " + r.Message
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			styles.LevelStyle(string(r.Level)).Render(string(r.Level)),
			msg,
			styles.TextMutedStyle.Render(r.Delivery.Summary()),
		)
	}
	return w.Flush()
}
