package engine

import (
	"context"
	"time"

	"github.com/edgy/edgy/pkg/ops"
	"github.com/edgy/edgy/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
)

// OperationResult is the outcome of an operation and the selection it left.
type OperationResult struct {
	Outcome   ops.Outcome    `json:"outcome"`
	Selection *SelectionView `json:"selection"`
}

// SelectLoopRequest is a select-loop click. When Edge is set it names the
// clicked edge and X, Y are only passed on to native loop selection.
type SelectLoopRequest struct {
	ops.SelectLoopRequest
	Edge *int `json:"edge,omitempty"`
}

// runOperation runs op on the mesh, records it and stores the selection
// unless the operation was cancelled.
func (e *Engine) runOperation(ctx context.Context, id, name string, op func(ctx context.Context, ent *meshEntry) (ops.Outcome, error)) (*OperationResult, error) {
	ctx, span := engineTracer().Start(ctx, spanRunOperation)
	defer span.End()
	span.SetAttributes(
		attribute.String("edgy.mesh_id", id),
		attribute.String("edgy.operation", name),
	)

	var out *OperationResult
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		start := time.Now()
		outcome, err := op(ctx, ent)
		if err != nil {
			return err
		}
		e.metrics.RecordOperation(name, outcome.Status.String(), outcome.Level.String(), time.Since(start))

		if outcome.Status != ops.Cancelled {
			if err := e.persist(ctx, ent); err != nil {
				return err
			}
		}
		out = &OperationResult{Outcome: outcome, Selection: selectionView(ent.mesh)}
		return nil
	})
	return out, err
}

// CloseLoop closes the selected open loops of the mesh.
func (e *Engine) CloseLoop(ctx context.Context, id string) (*OperationResult, error) {
	return e.runOperation(ctx, id, "close_loop", func(ctx context.Context, ent *meshEntry) (ops.Outcome, error) {
		return ops.CloseLoop(ctx, ent.mesh), nil
	})
}

// Resize grows or shrinks the selection of the mesh.
func (e *Engine) Resize(ctx context.Context, id string, dir ops.Direction, mode ops.ResizeMode) (*OperationResult, error) {
	return e.runOperation(ctx, id, "resize_selection", func(ctx context.Context, ent *meshEntry) (ops.Outcome, error) {
		return ops.ResizeSelection(ctx, ent.mesh, ent.mesh, dir, mode), nil
	})
}

// SelectLoop selects the loop under a click; repeating the click on the
// same edge cycles through the loops through it.
func (e *Engine) SelectLoop(ctx context.Context, id string, req SelectLoopRequest) (*OperationResult, error) {
	return e.runOperation(ctx, id, "select_loop", func(ctx context.Context, ent *meshEntry) (ops.Outcome, error) {
		if ent.session == nil {
			ent.session = ops.NewSession(e.searchOptions())
			e.metrics.SetLoopSessions(int(e.sessions.Add(1)))
		}
		ent.session.SetSearchOptions(e.searchOptions())

		var picker ops.Picker = ent.mesh
		if req.Edge != nil {
			if err := checkEdge(ent.mesh, *req.Edge); err != nil {
				return ops.Outcome{}, err
			}
			picker = ops.FixedEdge(*req.Edge)
		}
		return ent.session.SelectLoop(ctx, ent.mesh, ent.mesh, picker, req.SelectLoopRequest), nil
	})
}

// SaveSelection stores the current selection of the mesh under name,
// replacing an earlier one with the same name.
func (e *Engine) SaveSelection(ctx context.Context, id, name string) (*storage.SelectionRecord, error) {
	if name == "" {
		return nil, &InvalidRequestError{Field: "name", Reason: "is required"}
	}

	ctx, span := engineTracer().Start(ctx, spanSaveSelection)
	defer span.End()

	var rec *storage.SelectionRecord
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		rec = &storage.SelectionRecord{
			Name:      name,
			State:     selectionView(ent.mesh).State,
			CreatedAt: e.now(),
		}
		return e.store.SaveSelection(ctx, id, rec)
	})
	if err != nil {
		return nil, err
	}
	e.log.InfoContext(ctx, "selection saved", "mesh_id", id, "name", name)
	return rec, nil
}

// RestoreSelection makes a saved selection current.
func (e *Engine) RestoreSelection(ctx context.Context, id, name string) (*SelectionView, error) {
	ctx, span := engineTracer().Start(ctx, spanRestoreSelection)
	defer span.End()

	var out *SelectionView
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		rec, err := e.store.GetSelection(ctx, id, name)
		if err != nil {
			return err
		}
		rec.State.Restore(ent.mesh)
		if err := e.persist(ctx, ent); err != nil {
			return err
		}
		out = selectionView(ent.mesh)
		return nil
	})
	return out, err
}

// ListSelections lists the saved selections of the mesh.
func (e *Engine) ListSelections(ctx context.Context, id string) ([]*storage.SelectionRecord, error) {
	var out []*storage.SelectionRecord
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		var err error
		out, err = e.store.ListSelections(ctx, id)
		return err
	})
	return out, err
}
