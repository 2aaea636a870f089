package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/colonyops/orderbell/internal/core/notify"
)

const sseBuffer = 16

// sseEvents streams every published notification record as a server-sent
// event until the client disconnects. Slow clients drop records.
func (h *Handlers) sseEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch := make(chan notify.Record, sseBuffer)
	unsubscribe := h.svc.Bus.Subscribe(func(rec notify.Record) {
		select {
		case ch <- rec:
		default:
		}
	})
	defer unsubscribe()

	// Send the current config so clients know the stream is live.
	sendSSE(w, flusher, "config", h.configResponse(r.Context()))

	for {
		select {
		case rec := <-ch:
			sendSSE(w, flusher, "notification", rec)
		case <-r.Context().Done():
			return
		}
	}
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
