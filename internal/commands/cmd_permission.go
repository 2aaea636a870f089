package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/styles"
	"github.com/colonyops/orderbell/internal/orderbell"
	"github.com/colonyops/orderbell/pkg/iojson"
)

type PermissionCmd struct {
	flags  *Flags
	app    *orderbell.App
	format string
}

// NewPermissionCmd creates a new permission command.
func NewPermissionCmd(flags *Flags, app *orderbell.App) *PermissionCmd {
	return &PermissionCmd{flags: flags, app: app}
}

// Register adds the permission command to the application.
func (cmd *PermissionCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "permission",
		Usage: "Manage the host notification permission",
		Description: `The permission decides whether desktop notifications are shown. It is
requested once; after it is granted or denied orderbell never asks again
until it is reset.`,
		Commands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "Show the permission state",
				UsageText: "orderbell permission status [--format json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       formatText,
						Destination: &cmd.format,
					},
				},
				Action: cmd.runStatus,
			},
			{
				Name:      "request",
				Usage:     "Ask for permission to show host notifications",
				UsageText: "orderbell permission request",
				Action:    cmd.runRequest,
			},
			{
				Name:      "reset",
				Usage:     "Forget the permission decision",
				UsageText: "orderbell permission reset",
				Action:    cmd.runReset,
			},
		},
	})

	return app
}

type permissionJSON struct {
	Supported     bool                   `json:"supported"`
	State         notify.PermissionState `json:"state"`
	HasPermission bool                   `json:"hasPermission"`
}

func (cmd *PermissionCmd) runStatus(ctx context.Context, c *cli.Command) error {
	gate := cmd.app.Gate
	out := permissionJSON{
		Supported:     gate.Supported(ctx),
		State:         gate.State(ctx),
		HasPermission: gate.HasPermission(ctx),
	}

	if cmd.format == formatJSON {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
	}

	w := c.Root().Writer
	if !out.Supported {
		_, _ = fmt.Fprintln(w, "host notifications are not supported")
	}
	_, _ = fmt.Fprintf(w, "state    %s\n", permissionStyle(out.State))
	_, _ = fmt.Fprintf(w, "enabled  %s\n", onOff(out.HasPermission))
	return nil
}

func (cmd *PermissionCmd) runRequest(ctx context.Context, _ *cli.Command) error {
	granted := cmd.app.Gate.RequestPermission(ctx)
	state := cmd.app.Gate.State(ctx)

	if granted {
		_, _ = fmt.Fprintf(os.Stderr, "%s permission %s\n", styles.TextSuccessStyle.Render(styles.IconPass), permissionStyle(state))
		return nil
	}

	_, _ = fmt.Fprintf(os.Stderr, "%s permission %s\n", styles.TextWarningStyle.Render(styles.IconWarn), permissionStyle(state))
	if state == notify.PermissionDenied && cmd.app.Gate.Supported(ctx) {
		hint := styles.TextMutedStyle.Render("Run 'orderbell permission reset' to be asked again")
		_, _ = fmt.Fprintln(os.Stderr, hint)
	}
	return nil
}

func (cmd *PermissionCmd) runReset(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Permission.Reset(ctx); err != nil {
		return fmt.Errorf("reset permission: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s permission reset\n", styles.TextSuccessStyle.Render(styles.IconPass))
	return nil
}

func permissionStyle(s notify.PermissionState) string {
	switch s {
	case notify.PermissionGranted:
		return styles.TextSuccessStyle.Render(string(s))
	case notify.PermissionDenied:
		return styles.TextErrorStyle.Render(string(s))
	default:
		return styles.TextMutedStyle.Render(string(s))
	}
}
