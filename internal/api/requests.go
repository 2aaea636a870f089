package api

import (
	"errors"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/validate"
)

// validateConfigPatch rejects values the preference store would otherwise
// clamp or ignore.
func validateConfigPatch(p notify.PartialConfig) error {
	if p.IsEmpty() {
		return criterio.NewFieldErrors("body", errors.New("no fields to update"))
	}

	var errs criterio.FieldErrorsBuilder
	if p.SoundVolume != nil {
		if err := validate.Volume(*p.SoundVolume); err != nil {
			errs = errs.Append("soundVolume", err)
		}
	}
	if p.Position != nil {
		if err := validate.OneOf(notify.Positions()...)(*p.Position); err != nil {
			errs = errs.Append("position", err)
		}
	}
	return errs.ToError()
}

// DispatchRequest is the body of POST /api/notifications/dispatch.
type DispatchRequest struct {
	Kind         notify.Kind `json:"kind"`
	Message      string      `json:"message,omitempty"`
	OrderID      string      `json:"orderId,omitempty"`
	OrderNumber  string      `json:"orderNumber,omitempty"`
	CustomerName string      `json:"customerName,omitempty"`
	Status       string      `json:"status,omitempty"`
}

// Validate checks the fields each kind needs.
func (d DispatchRequest) Validate() error {
	if err := validate.OneOf(notify.Kinds()...)(d.Kind); err != nil {
		return criterio.NewFieldErrors("kind", err)
	}

	switch d.Kind {
	case notify.KindNewOrder:
		return criterio.Run("orderNumber", d.OrderNumber, validate.Required)
	case notify.KindStatusUpdate:
		return criterio.ValidateStruct(
			criterio.Run("orderNumber", d.OrderNumber, validate.Required),
			criterio.Run("status", d.Status, validate.Required),
		)
	default:
		return criterio.Run("message", d.Message, validate.Required)
	}
}

// TestSoundRequest is the body of POST /api/notifications/test-sound.
type TestSoundRequest struct {
	Kind notify.Sound `json:"kind"`
}

// Validate fills in the new-order cue when no kind is given and rejects
// unknown sounds.
func (t *TestSoundRequest) Validate() error {
	if t.Kind == "" {
		t.Kind = notify.SoundNewOrder
	}
	if err := validate.OneOf(notify.Sounds()...)(t.Kind); err != nil {
		return criterio.NewFieldErrors("kind", err)
	}
	return nil
}
