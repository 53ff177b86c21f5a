// Package api provides HTTP API handlers for the Bindi camera overlay app.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/bindi/internal/session"
	"github.com/ayusman/bindi/internal/sticker"
	"github.com/ayusman/bindi/internal/store"
)

// SettingActiveSticker is the settings key holding the active sticker name.
const SettingActiveSticker = "active_sticker"

// StickerHandler handles HTTP requests for sticker resources.
type StickerHandler struct {
	store   *store.Store
	library *sticker.Library
	session *session.Session
}

// NewStickerHandler creates a new StickerHandler with the given store and
// sticker library. The session may be nil; activation then only updates the
// library and settings.
func NewStickerHandler(s *store.Store, l *sticker.Library, sess *session.Session) *StickerHandler {
	return &StickerHandler{store: s, library: l, session: sess}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *StickerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/stickers, /api/stickers/{id}, /api/stickers/{id}/activate
	path := strings.TrimPrefix(r.URL.Path, "/api/stickers")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/activate"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createStickerRequest struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	BaseSize float64 `json:"base_size"`
	MinScale float64 `json:"min_scale"`
	MaxScale float64 `json:"max_scale"`
}

type updateStickerRequest struct {
	Name     string  `json:"name"`
	BaseSize float64 `json:"base_size"`
	MinScale float64 `json:"min_scale"`
	MaxScale float64 `json:"max_scale"`
}

type stickerResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	BaseSize  float64 `json:"base_size"`
	MinScale  float64 `json:"min_scale"`
	MaxScale  float64 `json:"max_scale"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type listStickersResponse struct {
	Stickers []stickerResponse `json:"stickers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toStickerResponse converts a store.Sticker to a stickerResponse.
func (h *StickerHandler) toStickerResponse(st *store.Sticker) stickerResponse {
	active := false
	if a := h.library.Active(); a != nil {
		active = a.Name == st.Name
	}

	return stickerResponse{
		ID:        st.ID,
		Name:      st.Name,
		Path:      st.Path,
		BaseSize:  st.BaseSize,
		MinScale:  st.MinScale,
		MaxScale:  st.MaxScale,
		Active:    active,
		CreatedAt: st.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: st.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/stickers and returns all stickers.
func (h *StickerHandler) list(w http.ResponseWriter, r *http.Request) {
	stickers, err := h.store.Stickers().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list stickers")
		return
	}

	response := listStickersResponse{
		Stickers: make([]stickerResponse, 0, len(stickers)),
	}

	for _, st := range stickers {
		response.Stickers = append(response.Stickers, h.toStickerResponse(st))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/stickers/{id} and returns a single sticker.
func (h *StickerHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	st, err := h.store.Stickers().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sticker not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sticker")
		return
	}

	writeJSON(w, http.StatusOK, h.toStickerResponse(st))
}

// create handles POST /api/stickers. The sticker image is decoded into the
// library immediately so activation never waits on disk.
func (h *StickerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createStickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "Path is required")
		return
	}

	asset, err := sticker.Load(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load sticker image")
		return
	}

	name := req.Name
	if name == "" {
		name = asset.Name
	} else {
		asset.Name = name
	}

	baseSize := req.BaseSize
	if baseSize == 0 {
		baseSize = 150
	}
	minScale := req.MinScale
	if minScale == 0 {
		minScale = 0.8
	}
	maxScale := req.MaxScale
	if maxScale == 0 {
		maxScale = 2.0
	}

	st := &store.Sticker{
		ID:       uuid.New().String(),
		Name:     name,
		Path:     req.Path,
		BaseSize: baseSize,
		MinScale: minScale,
		MaxScale: maxScale,
	}

	if err := h.store.Stickers().Create(st); err != nil {
		asset.Close()
		writeError(w, http.StatusInternalServerError, "Failed to create sticker")
		return
	}

	h.library.Add(asset)

	writeJSON(w, http.StatusCreated, h.toStickerResponse(st))
}

// update handles PUT /api/stickers/{id} and updates an existing sticker.
func (h *StickerHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	st, err := h.store.Stickers().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sticker not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sticker")
		return
	}

	var req updateStickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		st.Name = req.Name
	}
	if req.BaseSize != 0 {
		st.BaseSize = req.BaseSize
	}
	if req.MinScale != 0 {
		st.MinScale = req.MinScale
	}
	if req.MaxScale != 0 {
		st.MaxScale = req.MaxScale
	}

	if err := h.store.Stickers().Update(st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update sticker")
		return
	}

	writeJSON(w, http.StatusOK, h.toStickerResponse(st))
}

// delete handles DELETE /api/stickers/{id} and removes a sticker.
func (h *StickerHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Stickers().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sticker not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete sticker")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// activate handles POST /api/stickers/{id}/activate and makes the sticker
// the one composited onto live video and captures.
func (h *StickerHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	st, err := h.store.Stickers().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sticker not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sticker")
		return
	}

	if err := h.library.SetActive(st.Name); err != nil {
		// Registered but never decoded, e.g. after a restart. Load it now.
		asset, loadErr := sticker.Load(st.Path)
		if loadErr != nil {
			writeError(w, http.StatusConflict, "Sticker image not loadable")
			return
		}
		asset.Name = st.Name
		h.library.Add(asset)
		if err := h.library.SetActive(st.Name); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to activate sticker")
			return
		}
	}

	if err := h.store.Settings().Set(SettingActiveSticker, st.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist active sticker")
		return
	}

	// The stored sizing travels with the sticker into the live pipeline.
	if h.session != nil {
		h.session.ApplyStickerTuning(st.BaseSize, st.MinScale, st.MaxScale)
	}

	writeJSON(w, http.StatusOK, h.toStickerResponse(st))
}
