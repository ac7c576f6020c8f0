package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/edgy/edgy/pkg/api/middleware"
	"github.com/edgy/edgy/pkg/api/models"
	"github.com/edgy/edgy/pkg/api/response"
	"github.com/edgy/edgy/pkg/engine"
	"github.com/edgy/edgy/pkg/logger"
	"github.com/edgy/edgy/pkg/mesh/memory"
	"github.com/edgy/edgy/pkg/ops"
	"github.com/edgy/edgy/pkg/selection"
	"github.com/edgy/edgy/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// MeshHandler serves meshes, loop analysis and selection operations.
type MeshHandler struct {
	engine    *engine.Engine
	logger    logger.Logger
	validator *validator.Validate
}

// NewMeshHandler creates a new mesh handler.
func NewMeshHandler(eng *engine.Engine, log logger.Logger) *MeshHandler {
	return &MeshHandler{
		engine:    eng,
		logger:    log,
		validator: validator.New(),
	}
}

func getRequestID(ctx context.Context) string {
	return middleware.GetRequestID(ctx)
}

// fail writes err, logging it when it is the server's fault.
func (h *MeshHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := response.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed",
			"path", r.URL.Path,
			"error", err,
		)
	}
	response.HandleError(w, err, getRequestID(r.Context()))
}

func (h *MeshHandler) badRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	response.Error(w, http.StatusBadRequest, code, message, getRequestID(r.Context()))
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (h *MeshHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		if err := h.validator.Struct(v); err != nil {
			h.badRequest(w, r, response.ErrCodeValidationFailed, err.Error())
			return false
		}
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, response.ErrCodeRequestTooLarge,
			"Request body too large", getRequestID(r.Context()))
		return false
	}
	h.badRequest(w, r, response.ErrCodeBadRequest, "Invalid request body")
	return false
}

// documentFormat maps a request content type to a document format. JSON
// bodies carry a CreateMeshRequest rather than a bare document.
func documentFormat(contentType string) (memory.Format, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return memory.FormatYAML, true
	case "application/toml", "text/toml":
		return memory.FormatTOML, true
	default:
		return "", false
	}
}

// CreateMesh handles POST /api/v1/meshes. A JSON body is a
// CreateMeshRequest; YAML and TOML bodies are a bare mesh document, named by
// the "name" query parameter.
func (h *MeshHandler) CreateMesh(w http.ResponseWriter, r *http.Request) {
	var (
		name string
		doc  *memory.Document
	)

	if format, ok := documentFormat(r.Header.Get("Content-Type")); ok {
		d, err := memory.DecodeDocument(r.Body, format)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, response.ErrCodeRequestTooLarge,
					"Request body too large", getRequestID(r.Context()))
				return
			}
			h.badRequest(w, r, response.ErrCodeBadRequest, err.Error())
			return
		}
		name, doc = r.URL.Query().Get("name"), d
	} else {
		var req models.CreateMeshRequest
		if !h.decode(w, r, &req) {
			return
		}
		d, err := req.Source()
		if err != nil {
			h.badRequest(w, r, response.ErrCodeValidationFailed, err.Error())
			return
		}
		name, doc = req.Name, d
	}

	info, err := h.engine.CreateMesh(r.Context(), name, doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/meshes/"+info.ID)
	response.JSON(w, http.StatusCreated, info)
}

// ListMeshes handles GET /api/v1/meshes?name=&limit=&offset=
func (h *MeshHandler) ListMeshes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := queryInt(query.Get("limit"), defaultListLimit)
	if err != nil || limit < 1 {
		h.badRequest(w, r, response.ErrCodeBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset, err := queryInt(query.Get("offset"), 0)
	if err != nil || offset < 0 {
		h.badRequest(w, r, response.ErrCodeBadRequest, "offset must be a non-negative integer")
		return
	}

	meshes, total, err := h.engine.ListMeshes(r.Context(), &storage.MeshFilter{
		Name:   query.Get("name"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if meshes == nil {
		meshes = []*engine.MeshInfo{}
	}

	response.JSON(w, http.StatusOK, models.MeshListResponse{
		Meshes: meshes,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetMesh handles GET /api/v1/meshes/{id}. ?include=document adds the mesh
// document to the response.
func (h *MeshHandler) GetMesh(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	info, err := h.engine.GetMesh(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := models.MeshResponse{MeshInfo: info}
	if r.URL.Query().Get("include") == "document" {
		doc, err := h.engine.Document(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.Document = doc
	}
	response.JSON(w, http.StatusOK, resp)
}

// DeleteMesh handles DELETE /api/v1/meshes/{id}
func (h *MeshHandler) DeleteMesh(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteMesh(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

// PureLoops handles GET /api/v1/meshes/{id}/loops
func (h *MeshHandler) PureLoops(w http.ResponseWriter, r *http.Request) {
	loops, err := h.engine.PureLoops(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, models.LoopsResponse{Loops: loops, Count: len(loops)})
}

// EdgeLoops handles GET /api/v1/meshes/{id}/edges/{edge}/loops
func (h *MeshHandler) EdgeLoops(w http.ResponseWriter, r *http.Request) {
	edge, err := strconv.Atoi(chi.URLParam(r, "edge"))
	if err != nil || edge < 0 {
		h.badRequest(w, r, response.ErrCodeBadRequest, "edge must be a non-negative integer")
		return
	}

	loops, err := h.engine.EdgeLoops(r.Context(), chi.URLParam(r, "id"), edge)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, models.EdgeLoopsResponse{Edge: edge, Loops: loops})
}

// ShortestPath handles GET /api/v1/meshes/{id}/path?from=&to=&exclude=
// exclude is a comma separated list of edge ids.
func (h *MeshHandler) ShortestPath(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := strconv.Atoi(query.Get("from"))
	if err != nil {
		h.badRequest(w, r, response.ErrCodeBadRequest, "from must be a vertex id")
		return
	}
	to, err := strconv.Atoi(query.Get("to"))
	if err != nil {
		h.badRequest(w, r, response.ErrCodeBadRequest, "to must be a vertex id")
		return
	}
	exclude, err := parseIDList(query.Get("exclude"))
	if err != nil {
		h.badRequest(w, r, response.ErrCodeBadRequest, "exclude must be a comma separated list of edge ids")
		return
	}

	result, err := h.engine.ShortestPath(r.Context(), chi.URLParam(r, "id"), from, to, exclude)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// GetSelection handles GET /api/v1/meshes/{id}/selection
func (h *MeshHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.SelectionInfo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// SetSelection handles PUT /api/v1/meshes/{id}/selection
func (h *MeshHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var state selection.State
	if !h.decode(w, r, &state) {
		return
	}

	view, err := h.engine.SetSelection(r.Context(), chi.URLParam(r, "id"), state)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// CloseLoop handles POST /api/v1/meshes/{id}/ops/close-loop
func (h *MeshHandler) CloseLoop(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.CloseLoop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// Resize handles POST /api/v1/meshes/{id}/ops/resize
func (h *MeshHandler) Resize(w http.ResponseWriter, r *http.Request) {
	var req models.ResizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	dir, err := ops.ParseDirection(req.Direction)
	if err != nil {
		h.badRequest(w, r, response.ErrCodeValidationFailed, err.Error())
		return
	}
	mode, err := ops.ParseResizeMode(req.Mode)
	if err != nil {
		h.badRequest(w, r, response.ErrCodeValidationFailed, err.Error())
		return
	}

	result, err := h.engine.Resize(r.Context(), chi.URLParam(r, "id"), dir, mode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// SelectLoop handles POST /api/v1/meshes/{id}/ops/select-loop
func (h *MeshHandler) SelectLoop(w http.ResponseWriter, r *http.Request) {
	var req models.SelectLoopRequest
	if !h.decode(w, r, &req) {
		return
	}
	mode, err := ops.ParseSelectLoopMode(req.Mode)
	if err != nil {
		h.badRequest(w, r, response.ErrCodeValidationFailed, err.Error())
		return
	}

	result, err := h.engine.SelectLoop(r.Context(), chi.URLParam(r, "id"), engine.SelectLoopRequest{
		SelectLoopRequest: ops.SelectLoopRequest{
			X:      req.X,
			Y:      req.Y,
			Extend: req.Extend,
			Mode:   mode,
		},
		Edge: req.Edge,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// SaveSelection handles POST /api/v1/meshes/{id}/selections/{name}
func (h *MeshHandler) SaveSelection(w http.ResponseWriter, r *http.Request) {
	rec, err := h.engine.SaveSelection(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, rec)
}

// RestoreSelection handles POST /api/v1/meshes/{id}/selections/{name}/restore
func (h *MeshHandler) RestoreSelection(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.RestoreSelection(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// ListSelections handles GET /api/v1/meshes/{id}/selections
func (h *MeshHandler) ListSelections(w http.ResponseWriter, r *http.Request) {
	selections, err := h.engine.ListSelections(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if selections == nil {
		selections = []*storage.SelectionRecord{}
	}
	response.JSON(w, http.StatusOK, models.SelectionListResponse{Selections: selections})
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func parseIDList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
