package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/orderbell/internal/core/order"
	"github.com/colonyops/orderbell/internal/core/styles"
	"github.com/colonyops/orderbell/internal/orderbell"
	"github.com/colonyops/orderbell/pkg/iojson"
)

type IngestCmd struct {
	flags  *Flags
	app    *orderbell.App
	reader iojson.FileReader[order.Snapshot]
	format string
	reset  bool
}

// NewIngestCmd creates a new ingest command.
func NewIngestCmd(flags *Flags, app *orderbell.App) *IngestCmd {
	return &IngestCmd{
		flags:  flags,
		app:    app,
		reader: iojson.FileReader[order.Snapshot]{Decode: order.Decode},
	}
}

// Register adds the ingest command to the application.
func (cmd *IngestCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ingest",
		Usage:     "Process one order snapshot",
		UsageText: "orderbell ingest [-f snapshot.json] [--reset]",
		Description: `Reads an order snapshot and notifies about pending orders that were not in
the previous snapshot. With checkpointing enabled the previous snapshot is
remembered between runs, so repeated ingests behave like consecutive polls.

The snapshot is a JSON array of orders or an object with an "orders" array.

Examples:
  orderbell ingest -f orders.json
  curl -s localhost:3000/api/orders | orderbell ingest`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
			&cli.BoolFlag{
				Name:        "reset",
				Usage:       "forget previously seen orders before ingesting",
				Destination: &cmd.reset,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       formatText,
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *IngestCmd) run(ctx context.Context, c *cli.Command) error {
	snap, err := cmd.reader.Read()
	if err != nil {
		return fmt.Errorf("read snapshot from %s: %w", cmd.reader.Source(), err)
	}

	orders := cmd.app.Orders
	if cmd.reset {
		if err := orders.Reset(ctx); err != nil {
			return err
		}
	} else if err := orders.Restore(ctx); err != nil {
		return err
	}

	res := orders.Process(ctx, snap)

	if cmd.format == formatJSON {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, res)
	}

	printResult(os.Stderr, len(snap), res)
	return nil
}
