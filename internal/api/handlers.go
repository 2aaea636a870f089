package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/order"
)

// ConfigResponse pairs the preferences with the effective permission.
type ConfigResponse struct {
	Config        notify.Config `json:"config"`
	HasPermission bool          `json:"hasPermission"`
}

// PermissionResponse describes the host permission.
type PermissionResponse struct {
	Supported     bool                   `json:"supported"`
	State         notify.PermissionState `json:"state"`
	Granted       bool                   `json:"granted"`
	HasPermission bool                   `json:"hasPermission"`
}

func (h *Handlers) configResponse(ctx context.Context) ConfigResponse {
	return ConfigResponse{
		Config:        h.svc.Prefs.Config(),
		HasPermission: h.svc.Gate.HasPermission(ctx),
	}
}

func (h *Handlers) permissionResponse(ctx context.Context) PermissionResponse {
	state := h.svc.Gate.State(ctx)
	return PermissionResponse{
		Supported:     h.svc.Gate.Supported(ctx),
		State:         state,
		Granted:       state == notify.PermissionGranted,
		HasPermission: h.svc.Gate.HasPermission(ctx),
	}
}

func (h *Handlers) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.configResponse(r.Context()))
}

func (h *Handlers) patchConfig(w http.ResponseWriter, r *http.Request) {
	var patch notify.PartialConfig
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if err := validateConfigPatch(patch); err != nil {
		writeError(w, err)
		return
	}

	h.svc.Prefs.Update(r.Context(), patch)
	writeJSON(w, http.StatusOK, h.configResponse(r.Context()))
}

func (h *Handlers) getPermission(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.permissionResponse(r.Context()))
}

func (h *Handlers) requestPermission(w http.ResponseWriter, r *http.Request) {
	h.svc.Gate.RequestPermission(r.Context())
	writeJSON(w, http.StatusOK, h.permissionResponse(r.Context()))
}

func (h *Handlers) testSound(w http.ResponseWriter, r *http.Request) {
	var req TestSoundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Dispatcher.TestSound(r.Context(), req.Kind))
}

func (h *Handlers) dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	d := h.svc.Dispatcher
	var delivery notify.Delivery
	switch req.Kind {
	case notify.KindNewOrder:
		delivery = d.NewOrder(ctx, req.OrderID, req.OrderNumber, req.CustomerName)
	case notify.KindStatusUpdate:
		delivery = d.StatusUpdate(ctx, req.OrderID, req.OrderNumber, req.Status)
	case notify.KindSuccess:
		delivery = d.Success(ctx, req.Message)
	case notify.KindError:
		delivery = d.Error(ctx, req.Message)
	case notify.KindWarning:
		delivery = d.Warning(ctx, req.Message)
	default:
		delivery = d.Info(ctx, req.Message)
	}

	writeJSON(w, http.StatusOK, delivery)
}

func (h *Handlers) clearToasts(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Dispatcher.Clear(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"dismissed": n})
}

func (h *Handlers) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := h.svc.HistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, errBadRequest("invalid limit parameter"))
			return
		}
		limit = n
	}

	records, err := h.svc.Bus.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []notify.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handlers) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Bus.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) postSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := order.Decode(r.Body)
	if err != nil {
		writeError(w, errBadRequest(err.Error()))
		return
	}

	res := h.svc.Orders.Process(r.Context(), snap)
	if res.New == nil {
		res.New = []order.Order{}
	}
	writeJSON(w, http.StatusOK, res)
}
