package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/order"
	"github.com/colonyops/orderbell/internal/core/styles"
	"github.com/colonyops/orderbell/internal/orderbell"
	"github.com/colonyops/orderbell/pkg/iojson"
)

type NotifyCmd struct {
	flags  *Flags
	app    *orderbell.App
	format string

	orderID  string
	number   string
	customer string
	status   string
}

// NewNotifyCmd creates a new notify command.
func NewNotifyCmd(flags *Flags, app *orderbell.App) *NotifyCmd {
	return &NotifyCmd{flags: flags, app: app}
}

// Register adds the notify command to the application.
func (cmd *NotifyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "notify",
		Usage: "Send a notification through every enabled channel",
		Description: `Dispatches a notification as a terminal toast, a sound and a desktop
notification, according to the saved preferences and permission. Each
channel is reported separately; one failing channel does not stop the others.

Examples:
  orderbell notify new-order --number 42 --customer "Ada"
  orderbell notify status --number 42 --status ready
  orderbell notify warning "Oven temperature low"`,
		Commands: []*cli.Command{
			{
				Name:      "new-order",
				Usage:     "Announce a new order",
				UsageText: "orderbell notify new-order --number N --customer NAME [--id ID]",
				Flags: append(cmd.orderFlags(),
					&cli.StringFlag{
						Name:        "customer",
						Usage:       "customer name",
						Required:    true,
						Destination: &cmd.customer,
					},
				),
				Action: cmd.runNewOrder,
			},
			{
				Name:      "status",
				Usage:     "Announce an order status change",
				UsageText: "orderbell notify status --number N --status STATUS [--id ID]",
				Flags: append(cmd.orderFlags(),
					&cli.StringFlag{
						Name:        "status",
						Usage:       fmt.Sprintf("new order status %v", order.Statuses()),
						Required:    true,
						Destination: &cmd.status,
					},
				),
				Action: cmd.runStatus,
			},
			cmd.messageCmd(notify.KindSuccess, "Show a success notification"),
			cmd.messageCmd(notify.KindError, "Show an error notification"),
			cmd.messageCmd(notify.KindWarning, "Show a warning notification"),
			cmd.messageCmd(notify.KindInfo, "Show an informational notification"),
			{
				Name:      "clear",
				Usage:     "Dismiss every visible toast",
				UsageText: "orderbell notify clear",
				Action:    cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *NotifyCmd) formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Usage:       "output format (text, json)",
		Value:       formatText,
		Destination: &cmd.format,
	}
}

func (cmd *NotifyCmd) orderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "id",
			Usage:       "order id, used for logging and history",
			Destination: &cmd.orderID,
		},
		&cli.StringFlag{
			Name:        "number",
			Aliases:     []string{"n"},
			Usage:       "display order number",
			Required:    true,
			Destination: &cmd.number,
		},
		cmd.formatFlag(),
	}
}

func (cmd *NotifyCmd) messageCmd(kind notify.Kind, usage string) *cli.Command {
	return &cli.Command{
		Name:      string(kind),
		Usage:     usage,
		UsageText: fmt.Sprintf("orderbell notify %s <message>", kind),
		Flags:     []cli.Flag{cmd.formatFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			msg := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(msg) == "" {
				return fmt.Errorf("message is required")
			}

			d := cmd.app.Dispatcher
			var delivery notify.Delivery
			switch kind {
			case notify.KindSuccess:
				delivery = d.Success(ctx, msg)
			case notify.KindError:
				delivery = d.Error(ctx, msg)
			case notify.KindWarning:
				delivery = d.Warning(ctx, msg)
			default:
				delivery = d.Info(ctx, msg)
			}
			return cmd.report(c, delivery)
		},
	}
}

func (cmd *NotifyCmd) runNewOrder(ctx context.Context, c *cli.Command) error {
	delivery := cmd.app.Dispatcher.NewOrder(ctx, cmd.orderID, cmd.number, cmd.customer)
	return cmd.report(c, delivery)
}

func (cmd *NotifyCmd) runStatus(ctx context.Context, c *cli.Command) error {
	delivery := cmd.app.Dispatcher.StatusUpdate(ctx, cmd.orderID, cmd.number, cmd.status)
	return cmd.report(c, delivery)
}

func (cmd *NotifyCmd) runClear(ctx context.Context, _ *cli.Command) error {
	n, err := cmd.app.Dispatcher.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clear toasts: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s dismissed %d toast(s)\n", styles.TextSuccessStyle.Render(styles.IconPass), n)
	return nil
}

func (cmd *NotifyCmd) report(c *cli.Command, d notify.Delivery) error {
	if cmd.format == formatJSON {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, d)
	}
	printDelivery(os.Stderr, d)
	return nil
}
