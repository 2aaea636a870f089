package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/orderbell"
)

type TestSoundCmd struct {
	flags *Flags
	app   *orderbell.App
}

// NewTestSoundCmd creates a new test-sound command.
func NewTestSoundCmd(flags *Flags, app *orderbell.App) *TestSoundCmd {
	return &TestSoundCmd{flags: flags, app: app}
}

// Register adds the test-sound command to the application.
func (cmd *TestSoundCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "test-sound",
		Usage:     "Play a notification sound",
		UsageText: "orderbell test-sound [newOrder|success|error|warning]",
		Description: `Plays the cue for the given sound at the saved volume. Nothing is played
when sounds are disabled in the preferences.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *TestSoundCmd) run(ctx context.Context, c *cli.Command) error {
	sound := notify.SoundNewOrder
	if c.Args().Present() {
		sound = notify.Sound(c.Args().First())
	}
	if !sound.IsValid() {
		return fmt.Errorf("unknown sound %q, expected one of %v", sound, notify.Sounds())
	}

	channelLine(os.Stderr, cmd.app.Dispatcher.TestSound(ctx, sound))
	return nil
}
