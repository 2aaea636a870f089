package doctor

import (
	"context"
	"fmt"

	"github.com/colonyops/orderbell/internal/core/notify"
)

// DaemonLookup identifies the running notification daemon, failing when
// none answers.
type DaemonLookup func(ctx context.Context) (string, error)

// DesktopCheck verifies the host notification service and the permission
// state that gates it.
type DesktopCheck struct {
	enabled bool
	lookup  DaemonLookup
	gate    *notify.Gate
}

// NewDesktopCheck creates a desktop check. lookup and gate may be nil when
// desktop notifications are not wired.
func NewDesktopCheck(enabled bool, lookup DaemonLookup, gate *notify.Gate) *DesktopCheck {
	return &DesktopCheck{enabled: enabled, lookup: lookup, gate: gate}
}

func (c *DesktopCheck) Name() string {
	return "Desktop Notifications"
}

func (c *DesktopCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.enabled || c.lookup == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "service",
			Status: StatusWarn,
			Detail: "desktop notifications disabled in config",
		})
		return result
	}

	daemon, err := c.lookup(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "service",
			Status: StatusFail,
			Detail: fmt.Sprintf("no notification daemon on the session bus: %v", err),
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "service",
		Status: StatusPass,
		Detail: daemon,
	})

	if c.gate == nil {
		return result
	}

	item := CheckItem{Label: "permission"}
	switch state := c.gate.State(ctx); state {
	case notify.PermissionGranted:
		item.Status = StatusPass
		item.Detail = string(state)
		if !c.gate.HasPermission(ctx) {
			item.Status = StatusWarn
			item.Detail = "granted, but enableBrowser is off"
		}
	case notify.PermissionDenied:
		item.Status = StatusWarn
		item.Detail = "denied, run 'orderbell permission reset' to ask again"
	default:
		item.Status = StatusWarn
		item.Detail = "not requested, run 'orderbell permission request'"
	}
	result.Items = append(result.Items, item)

	return result
}
