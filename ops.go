package main

import (
	"bytes"
	"encoding/json"
)

// Method names an operation kind in a batch.
type Method string

const (
	MethodCreatePalette   Method = "CREATE_PALETTE"
	MethodDeletePalette   Method = "DELETE_PALETTE"
	MethodRenamePalette   Method = "RENAME_PALETTE"
	MethodReorderPalettes Method = "REORDER_PALETTES"
	MethodAddColor        Method = "ADD_COLOR"
	MethodDeleteColor     Method = "DELETE_COLOR"
	MethodUpdateColor     Method = "UPDATE_COLOR"
	MethodReorderColor    Method = "REORDER_COLOR"
)

// MaxPaletteNameLength is the longest palette name CREATE_PALETTE accepts,
// counted in UTF-16 code units as browsers measure string length.
const MaxPaletteNameLength = 64

// RawOp is an operation as it arrives on the wire. Data stays undecoded
// until validation knows which payload the method expects.
type RawOp struct {
	Method Method                     `json:"method"`
	Data   map[string]json.RawMessage `json:"data"`
}

// UnmarshalJSON never fails on a single element, so one malformed op does
// not hide validation messages for earlier ops. An element that is not an
// object, or whose method is missing or not a string, keeps the method's
// JSON text ("null" when absent) and fails validation as an unknown op type.
// A data value that is not an object is treated as empty.
func (r *RawOp) UnmarshalJSON(b []byte) error {
	*r = RawOp{Method: "null"}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(b, &wire); err != nil {
		return nil
	}

	if raw, ok := wire["method"]; ok && !isNull(raw) {
		var m string
		if err := json.Unmarshal(raw, &m); err == nil {
			r.Method = Method(m)
		} else {
			r.Method = Method(compactJSON(raw))
		}
	}

	if raw, ok := wire["data"]; ok {
		var data map[string]json.RawMessage
		if err := json.Unmarshal(raw, &data); err == nil {
			r.Data = data
		}
	}

	return nil
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Op is a validated operation. The concrete types below are the only
// implementations; Processor switches over them exhaustively.
type Op interface {
	Method() Method
}

type CreatePalette struct {
	Name   *string
	Colors []string
}

func (CreatePalette) Method() Method { return MethodCreatePalette }

type DeletePalette struct {
	PaletteID string
	// PaletteIndex is the caller's view of the palette's position in palette_ids.
	PaletteIndex int
}

func (DeletePalette) Method() Method { return MethodDeletePalette }

type RenamePalette struct {
	PaletteID string
	Name      string
}

func (RenamePalette) Method() Method { return MethodRenamePalette }
