package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Processor applies validated operations to a Store one at a time.
type Processor struct {
	store  Store
	newID  func() string
	logger *slog.Logger
}

// NewProcessor creates a Processor that generates palette ids with uuid v4.
func NewProcessor(store Store, logger *slog.Logger) *Processor {
	return &Processor{store: store, newID: uuid.NewString, logger: logger}
}

// Process runs ops in order and returns one Result per op. A failed
// operation is recorded in its Result and does not stop the batch; earlier
// writes stay committed. The returned error is reserved for failures of the
// batch itself, such as a cancelled context.
func (p *Processor) Process(ctx context.Context, userID string, ops []Op) ([]Result, error) {
	results := make([]Result, 0, len(ops))
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("processing ops[%d]: %w", i, err)
		}

		res, err := p.apply(ctx, userID, op)
		if err != nil {
			return nil, fmt.Errorf("processing ops[%d]: %w", i, err)
		}
		if !res.Success {
			p.logger.Warn("op failed", "requestId", RequestIDFromContext(ctx), "userId", userID, "index", i, "method", op.Method(), "error", res.Error)
		}
		results = append(results, res)
	}
	return results, nil
}

func (p *Processor) apply(ctx context.Context, userID string, op Op) (Result, error) {
	switch op := op.(type) {
	case CreatePalette:
		return p.createPalette(ctx, userID, op), nil
	case DeletePalette:
		return p.deletePalette(ctx, userID, op), nil
	case RenamePalette:
		return p.renamePalette(ctx, userID, op), nil
	default:
		return Result{}, fmt.Errorf("no handler for op type %T", op)
	}
}

func (p *Processor) createPalette(ctx context.Context, userID string, op CreatePalette) Result {
	paletteID := p.newID()
	if err := p.store.CreatePalette(ctx, userID, paletteID, op.Name, op.Colors); err != nil {
		return failed(err)
	}
	return Result{Success: true, PaletteID: paletteID}
}

func (p *Processor) deletePalette(ctx context.Context, userID string, op DeletePalette) Result {
	if err := p.store.DeletePalette(ctx, userID, op.PaletteID, op.PaletteIndex); err != nil {
		return failed(err)
	}
	return Result{Success: true}
}

func (p *Processor) renamePalette(ctx context.Context, userID string, op RenamePalette) Result {
	if err := p.store.RenamePalette(ctx, userID, op.PaletteID, op.Name); err != nil {
		return failed(err)
	}
	return Result{Success: true}
}

func failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
