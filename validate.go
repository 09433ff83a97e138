package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf16"
)

// ValidationError describes the first invalid operation in a batch.
// Error returns the message sent to clients verbatim.
type ValidationError struct {
	Index   int
	Method  Method
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func requiredError(i int, field string, method Method) *ValidationError {
	return &ValidationError{
		Index:   i,
		Method:  method,
		Message: fmt.Sprintf("ops[%d].%s is required to process %s", i, field, method),
	}
}

func invalidError(i int, method Method, format string, args ...any) *ValidationError {
	return &ValidationError{
		Index:   i,
		Method:  method,
		Message: fmt.Sprintf("ops[%d].", i) + fmt.Sprintf(format, args...),
	}
}

// ValidateOps checks every operation in order and stops at the first
// violation. No store access happens here. On success the batch is
// returned as typed operations, one per input.
func ValidateOps(raw []RawOp) ([]Op, error) {
	ops := make([]Op, 0, len(raw))
	for i, r := range raw {
		op, err := validateOp(i, r)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func validateOp(i int, r RawOp) (Op, error) {
	switch r.Method {
	case MethodCreatePalette:
		return validateCreate(i, r)
	case MethodDeletePalette:
		return validateDelete(i, r)
	case MethodRenamePalette:
		return validateRename(i, r)
	case MethodReorderPalettes, MethodAddColor, MethodDeleteColor, MethodUpdateColor, MethodReorderColor:
		return nil, &ValidationError{Index: i, Method: r.Method, Message: string(r.Method) + " not yet supported"}
	default:
		return nil, invalidError(i, r.Method, "method %s is not a valid op type", r.Method)
	}
}

func validateCreate(i int, r RawOp) (Op, error) {
	op := CreatePalette{}

	if raw, ok := field(r.Data, "name"); ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, invalidError(i, r.Method, "name must be a string for %s", r.Method)
		}
		if len(utf16.Encode([]rune(name))) > MaxPaletteNameLength {
			return nil, invalidError(i, r.Method, "name exceeds max length of %d", MaxPaletteNameLength)
		}
		if name != "" {
			op.Name = &name
		}
	}

	raw, ok := field(r.Data, "colors")
	if !ok {
		return nil, requiredError(i, "colors", r.Method)
	}
	if err := json.Unmarshal(raw, &op.Colors); err != nil {
		return nil, invalidError(i, r.Method, "colors must be a list of color strings for %s", r.Method)
	}
	if len(op.Colors) == 0 {
		return nil, requiredError(i, "colors", r.Method)
	}

	return op, nil
}

func validateDelete(i int, r RawOp) (Op, error) {
	id, ok := stringField(r.Data, "paletteId")
	if !ok {
		return nil, requiredError(i, "paletteId", r.Method)
	}

	raw, present := r.Data["paletteIndex"]
	if !present {
		return nil, requiredError(i, "paletteIndex", r.Method)
	}

	var n float64
	// Negative positions can never match an element of palette_ids.
	if isNull(raw) || json.Unmarshal(raw, &n) != nil || n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
		return nil, invalidError(i, r.Method, "paletteIndex must be an integer for %s", r.Method)
	}

	return DeletePalette{PaletteID: id, PaletteIndex: int(n)}, nil
}

func validateRename(i int, r RawOp) (Op, error) {
	id, ok := stringField(r.Data, "paletteId")
	if !ok {
		return nil, requiredError(i, "paletteId", r.Method)
	}

	name, ok := stringField(r.Data, "name")
	if !ok {
		return nil, requiredError(i, "name", r.Method)
	}

	return RenamePalette{PaletteID: id, Name: name}, nil
}

// field returns a payload field, treating JSON null as absent.
func field(data map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := data[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// stringField returns a non-empty string field.
func stringField(data map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := field(data, key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
