package commands

import (
	"fmt"
	"io"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/order"
	"github.com/colonyops/orderbell/internal/core/styles"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func channelLine(w io.Writer, r notify.ChannelResult) {
	var icon string
	switch r.Outcome {
	case notify.OutcomeDelivered:
		icon = styles.TextSuccessStyle.Render(styles.IconPass)
	case notify.OutcomeSkipped:
		icon = styles.TextMutedStyle.Render(styles.IconSkip)
	default:
		icon = styles.TextErrorStyle.Render(styles.IconFail)
	}

	var detail string
	if r.Reason != "" {
		detail = " " + styles.TextMutedStyle.Render(r.Reason)
	}

	_, _ = fmt.Fprintf(w, "  %s %-6s %s%s\n", icon, r.Channel, r.Outcome, detail)
}

func printDelivery(w io.Writer, d notify.Delivery) {
	for _, r := range d.Results() {
		channelLine(w, r)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printResult(w io.Writer, total int, res order.Result) {
	if len(res.New) == 0 && len(res.Changed) == 0 {
		_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render(fmt.Sprintf("%d orders, nothing new", total)))
		return
	}

	for _, o := range res.New {
		_, _ = fmt.Fprintf(w, "%s new order #%s %s\n",
			styles.TextPrimaryStyle.Render(styles.IconBell),
			o.Number(),
			styles.TextMutedStyle.Render(o.CustomerInfo.Name),
		)
	}
	for _, ch := range res.Changed {
		_, _ = fmt.Fprintf(w, "%s order #%s %s %s %s\n",
			styles.TextWarningStyle.Render(styles.IconWarn),
			ch.Order.Number(),
			styles.TextMutedStyle.Render(string(ch.From)),
			"→",
			ch.Order.Status,
		)
	}
}
