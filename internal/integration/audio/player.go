package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/pkg/executil"
)

// DefaultCommand plays a WAV stream from stdin on ALSA.
var DefaultCommand = []string{"aplay", "-q"}

// Player plays tones by rendering a WAV to a temporary file and piping it
// into an external command.
type Player struct {
	exec       executil.Executor
	command    []string
	sampleRate int
	log        zerolog.Logger
}

var _ notify.SoundPlayer = (*Player)(nil)

// NewPlayer creates a player. An empty command falls back to DefaultCommand.
func NewPlayer(exec executil.Executor, command []string, sampleRate int, log zerolog.Logger) *Player {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Player{
		exec:       exec,
		command:    command,
		sampleRate: sampleRate,
		log:        log.With().Str("component", "audio").Logger(),
	}
}

// Command returns the player command line.
func (p *Player) Command() []string {
	return p.command
}

// Play renders t and blocks until the player command exits.
func (p *Player) Play(ctx context.Context, t notify.Tone) error {
	if p.exec == nil {
		return notify.ErrUnsupported
	}

	f, err := os.CreateTemp("", "orderbell-*.wav")
	if err != nil {
		return fmt.Errorf("play %s: %w", t.Sound, err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	if err := WriteWAV(f, t, p.sampleRate); err != nil {
		return fmt.Errorf("play %s: %w", t.Sound, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("play %s: %w", t.Sound, err)
	}

	p.log.Debug().
		Str("sound", string(t.Sound)).
		Float64("gain", t.Gain).
		Str("file", f.Name()).
		Msg("playing tone")

	if err := p.exec.RunInput(ctx, f, p.command[0], p.command[1:]...); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("play %s: %w", t.Sound, err)
	}
	return nil
}
