// Package order models the orders delivered by the live order feed and
// detects which of them are new.
package order

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCanceled       Status = "canceled"
	StatusReturned       Status = "returned"
)

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusConfirmed,
		StatusPreparing,
		StatusReady,
		StatusOutForDelivery,
		StatusDelivered,
		StatusCanceled,
		StatusReturned,
	}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, v := range Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

// CustomerInfo is the contact attached to an order.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Order is the subset of an order document the notifier cares about.
type Order struct {
	ID           string       `json:"id"`
	OrderNumber  string       `json:"orderNumber"`
	Status       Status       `json:"status"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
}

// Number returns the display number, falling back to the ID.
func (o Order) Number() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.ID
}

// Snapshot is the full order collection at one point in time, in the order
// the source delivered it.
type Snapshot []Order

// IDs returns the IDs in snapshot order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s))
	for i, o := range s {
		ids[i] = o.ID
	}
	return ids
}
