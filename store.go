package main

import (
	"context"
	"errors"
)

// ErrConditionFailed is returned when a conditional write finds that the
// record no longer matches the caller's view of it. The text matches the
// DynamoDB service message so clients see the same error either way.
var ErrConditionFailed = errors.New("The conditional request failed")

// Store defines the persistence interface for palettes. Each mutating call
// is a single atomic write against one user record.
type Store interface {
	GetPalettes(ctx context.Context, userID string) ([]Palette, error)
	CreatePalette(ctx context.Context, userID string, paletteID string, name *string, colors []string) error
	DeletePalette(ctx context.Context, userID string, paletteID string, index int) error
	RenamePalette(ctx context.Context, userID string, paletteID string, name string) error
}

// StoreError carries a store-reported error code and message. Error returns
// only the message, which is what per-operation results relay to callers.
type StoreError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func nameAttr(paletteID string) string {
	return "p" + paletteID + "n"
}

func colorsAttr(paletteID string) string {
	return "p" + paletteID + "c"
}
