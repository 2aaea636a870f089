package notify

import "strings"

// Channel names one delivery path.
type Channel string

const (
	ChannelToast Channel = "toast"
	ChannelSound Channel = "sound"
	ChannelHost  Channel = "host"
)

// Outcome is what happened on one channel.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// ChannelResult is the outcome of one channel for one event.
type ChannelResult struct {
	Channel Channel `json:"channel"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	Err     error   `json:"-"`
}

// Delivery collects the per-channel results of a single dispatch. Channels
// fail independently, so any combination of outcomes is possible.
type Delivery struct {
	Event Event         `json:"-"`
	Toast ChannelResult `json:"toast"`
	Sound ChannelResult `json:"sound"`
	Host  ChannelResult `json:"host"`
}

// Results returns the channel results in fan-out order.
func (d Delivery) Results() []ChannelResult {
	return []ChannelResult{d.Toast, d.Sound, d.Host}
}

// Failed returns the channels that failed.
func (d Delivery) Failed() []ChannelResult {
	var out []ChannelResult
	for _, r := range d.Results() {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}

// Summary renders the delivery as "toast=delivered sound=skipped ...".
func (d Delivery) Summary() string {
	parts := make([]string, 0, 3)
	for _, r := range d.Results() {
		parts = append(parts, string(r.Channel)+"="+string(r.Outcome))
	}
	return strings.Join(parts, " ")
}

func delivered(c Channel) ChannelResult {
	return ChannelResult{Channel: c, Outcome: OutcomeDelivered}
}

func skipped(c Channel, reason string) ChannelResult {
	return ChannelResult{Channel: c, Outcome: OutcomeSkipped, Reason: reason}
}

func failed(c Channel, err error) ChannelResult {
	return ChannelResult{Channel: c, Outcome: OutcomeFailed, Reason: err.Error(), Err: err}
}
