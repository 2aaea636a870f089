// Package audio synthesizes notification cues and plays them through an
// external command.
package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/colonyops/orderbell/internal/core/notify"
)

// DefaultSampleRate is used when no rate is configured.
const DefaultSampleRate = 22050

const (
	bitsPerSample = 16
	channels      = 1
	pcmFormat     = 1
	wavHeaderLen  = 44
)

// Samples renders the tone as mono samples in [-1, 1]. The oscillator is a
// sine whose frequency follows the tone's steps with a continuous phase;
// the amplitude decays exponentially from Gain to FloorGain.
func Samples(t notify.Tone, sampleRate int) []float64 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	n := int(t.Duration.Seconds() * float64(sampleRate))
	out := make([]float64, n)
	if t.Gain <= 0 || n == 0 {
		return out
	}

	floor := t.FloorGain
	if floor <= 0 || floor > t.Gain {
		floor = t.Gain
	}
	ratio := floor / t.Gain

	var phase float64
	step := 1 / float64(sampleRate)
	for i := range out {
		at := time.Duration(float64(i) * step * float64(time.Second))
		progress := float64(i) / float64(n)
		gain := t.Gain * math.Pow(ratio, progress)

		out[i] = gain * math.Sin(phase)
		phase += 2 * math.Pi * t.FrequencyAt(at) * step
		if phase > 2*math.Pi {
			phase -= 2 * math.Pi
		}
	}
	return out
}

// WriteWAV renders the tone as a 16-bit PCM mono WAV file into w. The
// encoder rewrites the chunk sizes on close, so w has to be seekable.
func WriteWAV(w io.WriteSeeker, t notify.Tone, sampleRate int) error {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitsPerSample,
		Data:           quantize(Samples(t, sampleRate)),
	}

	enc := wav.NewEncoder(w, sampleRate, bitsPerSample, channels, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	return nil
}

// quantize maps samples in [-1, 1] onto signed 16-bit values.
func quantize(samples []float64) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(math.Round(clamp(s) * math.MaxInt16))
	}
	return out
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
