package order

import "slices"

// Watcher remembers the IDs of the previous snapshot and reports the
// pending orders that were not in it. Only the immediately preceding
// snapshot is compared, so an order that disappears and comes back while
// still pending is reported again.
//
// Watcher is not safe for concurrent use; Monitor serializes access.
type Watcher struct {
	previous map[string]struct{}
	ids      []string
}

// NewWatcher returns a watcher seeded with previous IDs. The first snapshot
// of a fresh watcher reports every pending order.
func NewWatcher(previous ...string) *Watcher {
	w := &Watcher{}
	w.remember(previous)
	return w
}

// Observe returns the pending orders absent from the previous snapshot, in
// snapshot order, then replaces the previous IDs with those of s.
func (w *Watcher) Observe(s Snapshot) []Order {
	var fresh []Order
	for _, o := range s {
		if _, seen := w.previous[o.ID]; seen {
			continue
		}
		if o.Status == StatusPending {
			fresh = append(fresh, o)
		}
	}
	w.remember(s.IDs())
	return fresh
}

// Previous returns the IDs of the last observed snapshot.
func (w *Watcher) Previous() []string {
	return slices.Clone(w.ids)
}

func (w *Watcher) remember(ids []string) {
	w.ids = slices.Clone(ids)
	w.previous = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		w.previous[id] = struct{}{}
	}
}
