package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/orderbell/internal/core/config"
	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/styles"
	"github.com/colonyops/orderbell/internal/orderbell"
	"github.com/colonyops/orderbell/pkg/iojson"
)

type ConfigCmd struct {
	flags *Flags
	app   *orderbell.App

	format string

	// set flags
	sound    bool
	browser  bool
	volume   float64
	position string
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags, app *orderbell.App) *ConfigCmd {
	return &ConfigCmd{flags: flags, app: app}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Notification preferences and configuration",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show notification preferences",
				UsageText: "orderbell config show [--format json]",
				Flags:     []cli.Flag{cmd.formatFlag()},
				Action:    cmd.runShow,
			},
			{
				Name:      "set",
				Usage:     "Update notification preferences",
				UsageText: "orderbell config set [--sound] [--browser] [--volume N] [--position P]",
				Description: `Updates only the preferences given on the command line and persists them.

Examples:
  orderbell config set --volume 0.4
  orderbell config set --sound=false
  orderbell config set --position bottom-right --browser`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "sound",
						Usage:       "play sounds for notifications",
						Destination: &cmd.sound,
					},
					&cli.BoolFlag{
						Name:        "browser",
						Usage:       "show host notifications",
						Destination: &cmd.browser,
					},
					&cli.FloatFlag{
						Name:        "volume",
						Usage:       "sound volume between 0 and 1",
						Destination: &cmd.volume,
					},
					&cli.StringFlag{
						Name:        "position",
						Usage:       fmt.Sprintf("toast position %v", notify.Positions()),
						Destination: &cmd.position,
					},
				},
				Action: cmd.runSet,
			},
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "orderbell config validate [--format json]",
				Description: "Validates the configuration file, checking the audio player, directories, the watch glob and the listen address.",
				Flags:       []cli.Flag{cmd.formatFlag()},
				Action:      cmd.runValidate,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Usage:       "output format (text, json)",
		Value:       formatText,
		Destination: &cmd.format,
	}
}

type preferencesJSON struct {
	notify.Config
	HasPermission bool `json:"hasPermission"`
}

func (cmd *ConfigCmd) runShow(ctx context.Context, c *cli.Command) error {
	cfg := cmd.app.Prefs.Config()
	hasPermission := cmd.app.Gate.HasPermission(ctx)

	if cmd.format == formatJSON {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, preferencesJSON{Config: cfg, HasPermission: hasPermission})
	}

	w := c.Root().Writer
	_, _ = fmt.Fprintf(w, "sound       %s\n", onOff(cfg.EnableSound))
	_, _ = fmt.Fprintf(w, "browser     %s\n", onOff(cfg.EnableBrowser))
	_, _ = fmt.Fprintf(w, "volume      %.2f\n", cfg.SoundVolume)
	_, _ = fmt.Fprintf(w, "position    %s\n", cfg.Position)
	_, _ = fmt.Fprintf(w, "permission  %s\n", onOff(hasPermission))
	return nil
}

func (cmd *ConfigCmd) runSet(ctx context.Context, c *cli.Command) error {
	var patch notify.PartialConfig
	if c.IsSet("sound") {
		patch.EnableSound = notify.Ptr(cmd.sound)
	}
	if c.IsSet("browser") {
		patch.EnableBrowser = notify.Ptr(cmd.browser)
	}
	if c.IsSet("volume") {
		patch.SoundVolume = notify.Ptr(cmd.volume)
	}
	if c.IsSet("position") {
		patch.Position = notify.Ptr(notify.Position(cmd.position))
	}

	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update; pass at least one of --sound, --browser, --volume, --position")
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	cmd.app.Prefs.Update(ctx, patch)
	_, _ = fmt.Fprintln(os.Stderr, styles.TextSuccessStyle.Render(styles.IconPass)+" preferences saved")

	if patch.EnableBrowser != nil && *patch.EnableBrowser && !cmd.app.Gate.Granted(ctx) {
		hint := styles.TextMutedStyle.Render("Run 'orderbell permission request' to allow host notifications")
		_, _ = fmt.Fprintln(os.Stderr, hint)
	}

	return nil
}

func (cmd *ConfigCmd) runValidate(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	err := cfg.ValidateDeep(cmd.flags.ConfigPath)
	warnings := cfg.Warnings()

	var fieldErrs criterio.FieldErrors
	if err != nil && !errors.As(err, &fieldErrs) {
		return err
	}

	if cmd.format == formatJSON {
		type fieldError struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		}
		out := struct {
			Valid    bool                       `json:"valid"`
			Errors   []fieldError               `json:"errors,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		}{Valid: err == nil, Warnings: warnings}
		for _, fe := range fieldErrs {
			out.Errors = append(out.Errors, fieldError{Field: fe.Field, Message: fe.Err.Error()})
		}
		return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
	}

	w := os.Stderr
	for _, fe := range fieldErrs {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.TextErrorStyle.Render(styles.IconFail), fe.Field, fe.Err)
	}
	for _, warn := range warnings {
		label := warn.Category
		if warn.Item != "" {
			label += "." + warn.Item
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.TextWarningStyle.Render(styles.IconWarn), label, warn.Message)
	}

	if err != nil {
		return cli.Exit("", 1)
	}

	_, _ = fmt.Fprintf(w, "%s configuration is valid\n", styles.TextSuccessStyle.Render(styles.IconPass))
	return nil
}
