package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToneFor_FrequencyPatterns(t *testing.T) {
	tests := []struct {
		sound  Sound
		start  float64
		finish float64
	}{
		{SoundNewOrder, 800, 1000},
		{SoundSuccess, 600, 800},
		{SoundError, 400, 200},
		{SoundWarning, 500, 500},
		{Sound("unknown"), 440, 440},
	}

	for _, tt := range tests {
		t.Run(string(tt.sound), func(t *testing.T) {
			tone := ToneFor(tt.sound, 1)
			assert.Equal(t, tt.start, tone.FrequencyAt(0))
			assert.Equal(t, tt.start, tone.FrequencyAt(99*time.Millisecond))
			assert.Equal(t, tt.finish, tone.FrequencyAt(100*time.Millisecond))
			assert.Equal(t, tt.finish, tone.FrequencyAt(ToneDuration))
			assert.Equal(t, ToneDuration, tone.Duration)
		})
	}
}

func TestToneFor_GainScalesWithVolume(t *testing.T) {
	assert.InDelta(t, 0.21, ToneFor(SoundSuccess, 0.7).Gain, 1e-9)
	assert.InDelta(t, 0.3, ToneFor(SoundSuccess, 1).Gain, 1e-9)
	assert.InDelta(t, 0.3, ToneFor(SoundSuccess, 4).Gain, 1e-9)
	assert.Zero(t, ToneFor(SoundSuccess, -1).Gain)
	assert.InDelta(t, 0.01, ToneFor(SoundSuccess, 1).FloorGain, 1e-9)
}

func TestKind_Sound(t *testing.T) {
	tests := []struct {
		kind  Kind
		sound Sound
		ok    bool
	}{
		{KindNewOrder, SoundNewOrder, true},
		{KindStatusUpdate, SoundSuccess, true},
		{KindSuccess, SoundSuccess, true},
		{KindError, SoundError, true},
		{KindWarning, SoundWarning, true},
		{KindInfo, "", false},
	}

	for _, tt := range tests {
		s, ok := tt.kind.Sound()
		assert.Equal(t, tt.ok, ok, tt.kind)
		assert.Equal(t, tt.sound, s, tt.kind)
	}
}

func TestKind_ToastDuration(t *testing.T) {
	assert.Equal(t, 6*time.Second, KindNewOrder.ToastDuration())
	assert.Equal(t, 5*time.Second, KindError.ToastDuration())
	assert.Equal(t, 4*time.Second, KindStatusUpdate.ToastDuration())
	assert.Equal(t, 4*time.Second, KindWarning.ToastDuration())
	assert.Equal(t, 3*time.Second, KindSuccess.ToastDuration())
	assert.Equal(t, 3*time.Second, KindInfo.ToastDuration())
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Out for delivery", StatusMessage("out_for_delivery"))
	assert.Equal(t, "returned", StatusMessage("returned"))
}
