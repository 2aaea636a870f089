// Package iojson reads and writes the JSON documents exchanged by the CLI's
// --format json mode and the HTTP API.
package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
)

// ValidationMessage is the envelope message for field validation failures.
const ValidationMessage = "validation failed"

// Error is the JSON error envelope: a message plus optional details.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e Error) Error() string { return e.Message }

// NewError builds the envelope for err. Field validation errors keep one
// data entry per field.
func NewError(err error) Error {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		data := make(map[string]any, len(fieldErrs))
		for _, fe := range fieldErrs {
			data[fe.Field] = fe.Err.Error()
		}
		return Error{Message: ValidationMessage, Data: data}
	}
	return Error{Message: err.Error()}
}

// marshalFailure is the hand-built envelope used when obj itself cannot be
// marshaled.
func marshalFailure(jsonErr error) string {
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":"error marshaling output","data":{"json_error":%s}}`, errBytes)
}

// WriteWith writes obj as indented JSON to w. A marshal failure is reported
// as an error envelope on ew.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, err = fmt.Fprintln(ew, marshalFailure(err))
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
