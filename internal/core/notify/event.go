package notify

import "time"

// Kind is the semantic type of a notification event.
type Kind string

const (
	KindNewOrder     Kind = "new-order"
	KindStatusUpdate Kind = "status-update"
	KindSuccess      Kind = "success"
	KindError        Kind = "error"
	KindWarning      Kind = "warning"
	KindInfo         Kind = "info"
)

// Kinds returns every event kind.
func Kinds() []Kind {
	return []Kind{KindNewOrder, KindStatusUpdate, KindSuccess, KindError, KindWarning, KindInfo}
}

// IsValid reports whether k is a known event kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindNewOrder, KindStatusUpdate, KindSuccess, KindError, KindWarning, KindInfo:
		return true
	default:
		return false
	}
}

// Level is the severity used when rendering and recording a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Level maps an event kind to its display severity.
func (k Kind) Level() Level {
	switch k {
	case KindNewOrder, KindSuccess, KindStatusUpdate:
		return LevelSuccess
	case KindError:
		return LevelError
	case KindWarning:
		return LevelWarning
	default:
		return LevelInfo
	}
}

// ToastDuration is how long a toast for k stays on screen.
func (k Kind) ToastDuration() time.Duration {
	switch k {
	case KindNewOrder:
		return 6 * time.Second
	case KindError:
		return 5 * time.Second
	case KindStatusUpdate, KindWarning:
		return 4 * time.Second
	default:
		return 3 * time.Second
	}
}

// Icon is the glyph shown next to toasts of kind k.
func (k Kind) Icon() string {
	switch k {
	case KindNewOrder:
		return "🍕"
	case KindStatusUpdate:
		return "📋"
	case KindSuccess:
		return "✅"
	case KindError:
		return "❌"
	case KindWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Color is the toast background colour for kind k.
func (k Kind) Color() string {
	switch k {
	case KindNewOrder, KindSuccess:
		return "#48BB78"
	case KindError:
		return "#F56565"
	case KindWarning:
		return "#ED8936"
	default:
		return "#4299E1"
	}
}

// Event is a single semantic notification to fan out.
type Event struct {
	Kind    Kind
	Title   string
	Message string

	// OrderID is set for order driven events and used for log correlation.
	OrderID string
}

// Toast is what the visual channel renders.
type Toast struct {
	ID                 string
	Kind               Kind
	Level              Level
	Message            string
	Icon               string
	Color              string
	Position           Position
	Duration           time.Duration
	RequireInteraction bool
}

// HostNotification is what the OS-level channel displays.
type HostNotification struct {
	Title              string
	Body               string
	Tag                string
	RequireInteraction bool

	// AutoClose is zero when the notification must stay until dismissed.
	AutoClose time.Duration
}

// HostAutoClose is how long non-persistent host notifications stay visible.
const HostAutoClose = 5 * time.Second
