package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/selection"
	"github.com/edgy/edgy/pkg/storage"
	"github.com/google/uuid"
)

// MeshInfo summarizes a stored mesh.
type MeshInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Verts     int       `json:"verts"`
	Edges     int       `json:"edges"`
	Faces     int       `json:"faces"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func meshInfo(rec *storage.MeshRecord, m *memory.Mesh) *MeshInfo {
	return &MeshInfo{
		ID:        rec.ID,
		Name:      rec.Name,
		Verts:     m.NumVerts(),
		Edges:     m.NumEdges(),
		Faces:     m.NumFaces(),
		Mode:      m.SelectMode().String(),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// CreateMesh validates doc, stores it under a new id and loads it. The new
// mesh starts in vertex select mode with nothing selected.
func (e *Engine) CreateMesh(ctx context.Context, name string, doc *memory.Document) (*MeshInfo, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &InvalidRequestError{Field: "document", Reason: "is required"}
	}

	ctx, span := engineTracer().Start(ctx, spanCreateMesh)
	defer span.End()

	id := uuid.NewString()
	m, err := memory.New(doc, memory.WithIdentity(id))
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = doc.Name
	}

	rec := &storage.MeshRecord{
		ID:       id,
		Name:     name,
		Document: *doc,
		State:    selection.Capture(m),
	}
	if err := e.store.SaveMesh(ctx, rec); err != nil {
		return nil, fmt.Errorf("save mesh: %w", err)
	}

	e.mu.Lock()
	e.meshes[id] = &meshEntry{lock: make(chan struct{}, 1), record: rec, mesh: m}
	e.metrics.SetMeshesLoaded(len(e.meshes))
	e.mu.Unlock()

	e.log.InfoContext(ctx, "mesh created",
		"mesh_id", id,
		"name", name,
		"verts", m.NumVerts(),
		"edges", m.NumEdges(),
		"faces", m.NumFaces(),
	)
	return meshInfo(rec, m), nil
}

// GetMesh returns a summary of the mesh.
func (e *Engine) GetMesh(ctx context.Context, id string) (*MeshInfo, error) {
	var info *MeshInfo
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		info = meshInfo(ent.record, ent.mesh)
		return nil
	})
	return info, err
}

// Document returns the stored document of the mesh.
func (e *Engine) Document(ctx context.Context, id string) (*memory.Document, error) {
	var doc memory.Document
	err := e.withMesh(ctx, id, func(ent *meshEntry) error {
		doc = storage.CloneMesh(ent.record).Document
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListMeshes lists stored meshes. Meshes that are not loaded are built
// from their records to count edges but are not kept.
func (e *Engine) ListMeshes(ctx context.Context, filter *storage.MeshFilter) ([]*MeshInfo, int, error) {
	if err := e.checkRunning(); err != nil {
		return nil, 0, err
	}

	recs, total, err := e.store.ListMeshes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*MeshInfo, 0, len(recs))
	for _, rec := range recs {
		m, err := memory.New(&rec.Document, memory.WithIdentity(rec.ID))
		if err != nil {
			e.log.WarnContext(ctx, "skipping unreadable mesh", "mesh_id", rec.ID, "error", err)
			continue
		}
		rec.State.Restore(m)
		infos = append(infos, meshInfo(rec, m))
	}
	return infos, total, nil
}

// DeleteMesh removes the mesh, its saved selections and its loop session.
func (e *Engine) DeleteMesh(ctx context.Context, id string) error {
	return e.withMesh(ctx, id, func(ent *meshEntry) error {
		if err := e.store.DeleteMesh(ctx, id); err != nil {
			return err
		}
		if ent.session != nil {
			e.metrics.SetLoopSessions(int(e.sessions.Add(-1)))
		}
		ent.deleted = true
		e.forget(id)
		e.log.InfoContext(ctx, "mesh deleted", "mesh_id", id)
		return nil
	})
}
