package notify

import "time"

// Sound identifies an audio cue.
type Sound string

const (
	SoundNewOrder Sound = "newOrder"
	SoundSuccess  Sound = "success"
	SoundError    Sound = "error"
	SoundWarning  Sound = "warning"
)

// Sounds returns every named audio cue.
func Sounds() []Sound {
	return []Sound{SoundNewOrder, SoundSuccess, SoundError, SoundWarning}
}

// IsValid reports whether s is a named cue.
func (s Sound) IsValid() bool {
	switch s {
	case SoundNewOrder, SoundSuccess, SoundError, SoundWarning:
		return true
	default:
		return false
	}
}

// Sound returns the cue for kind k. Info events carry no cue.
func (k Kind) Sound() (Sound, bool) {
	switch k {
	case KindNewOrder:
		return SoundNewOrder, true
	case KindStatusUpdate, KindSuccess:
		return SoundSuccess, true
	case KindError:
		return SoundError, true
	case KindWarning:
		return SoundWarning, true
	default:
		return "", false
	}
}

const (
	// ToneDuration is the length of every synthesized cue.
	ToneDuration = 300 * time.Millisecond

	toneStep      = 100 * time.Millisecond
	toneGainScale = 0.3
	toneFloorGain = 0.01
)

// Step is one frequency set at an offset from the start of a tone.
type Step struct {
	At        time.Duration
	Frequency float64
}

// Tone describes an oscillator cue: a stepped frequency schedule and a gain
// envelope decaying exponentially from Gain to FloorGain over Duration.
type Tone struct {
	Sound     Sound
	Steps     []Step
	Gain      float64
	FloorGain float64
	Duration  time.Duration
}

// ToneFor builds the cue for s at the given volume in [0,1].
func ToneFor(s Sound, volume float64) Tone {
	var steps []Step
	switch s {
	case SoundNewOrder:
		steps = []Step{{0, 800}, {toneStep, 1000}}
	case SoundSuccess:
		steps = []Step{{0, 600}, {toneStep, 800}}
	case SoundError:
		steps = []Step{{0, 400}, {toneStep, 200}}
	case SoundWarning:
		steps = []Step{{0, 500}}
	default:
		steps = []Step{{0, 440}}
	}

	return Tone{
		Sound:     s,
		Steps:     steps,
		Gain:      ClampVolume(volume, 0) * toneGainScale,
		FloorGain: toneFloorGain,
		Duration:  ToneDuration,
	}
}

// FrequencyAt returns the oscillator frequency at offset d.
func (t Tone) FrequencyAt(d time.Duration) float64 {
	if len(t.Steps) == 0 {
		return 0
	}
	f := t.Steps[0].Frequency
	for _, s := range t.Steps {
		if d < s.At {
			break
		}
		f = s.Frequency
	}
	return f
}
