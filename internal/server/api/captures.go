package api

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/ayusman/bindi/internal/session"
	"github.com/ayusman/bindi/internal/store"
)

// CaptureHandler handles HTTP requests for capture resources. A POST to the
// collection takes a photo through the live session.
type CaptureHandler struct {
	store   *store.Store
	session *session.Session
}

// NewCaptureHandler creates a new CaptureHandler with the given store and
// session.
func NewCaptureHandler(s *store.Store, sess *session.Session) *CaptureHandler {
	return &CaptureHandler{store: s, session: sess}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/captures, /api/captures/{id}, /api/captures/{id}/file
	path := strings.TrimPrefix(r.URL.Path, "/api/captures")
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

	if id, ok := strings.CutSuffix(path, "/file"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.file(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type captureResponse struct {
	ID        string `json:"id"`
	StickerID string `json:"sticker_id,omitempty"`
	FilePath  string `json:"file_path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"created_at"`
}

type listCapturesResponse struct {
	Captures []captureResponse `json:"captures"`
}

func toCaptureResponse(c *store.Capture) captureResponse {
	resp := captureResponse{
		ID:        c.ID,
		FilePath:  c.FilePath,
		Width:     c.Width,
		Height:    c.Height,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if c.StickerID.Valid {
		resp.StickerID = c.StickerID.String
	}
	return resp
}

// list handles GET /api/captures. An optional ?limit=N caps the result.
func (h *CaptureHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	captures, err := h.store.Captures().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list captures")
		return
	}

	response := listCapturesResponse{
		Captures: make([]captureResponse, 0, len(captures)),
	}
	for _, c := range captures {
		response.Captures = append(response.Captures, toCaptureResponse(c))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/captures and takes a photo through the session.
func (h *CaptureHandler) create(w http.ResponseWriter, r *http.Request) {
	c, err := h.session.Capture()
	if err != nil {
		if errors.Is(err, session.ErrNoFrame) {
			writeError(w, http.StatusConflict, "Camera has not produced a frame yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to capture photo")
		return
	}

	writeJSON(w, http.StatusCreated, toCaptureResponse(c))
}

// get handles GET /api/captures/{id}.
func (h *CaptureHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.store.Captures().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Capture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get capture")
		return
	}

	writeJSON(w, http.StatusOK, toCaptureResponse(c))
}

// file handles GET /api/captures/{id}/file and serves the photo itself.
func (h *CaptureHandler) file(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.store.Captures().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Capture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get capture")
		return
	}

	http.ServeFile(w, r, c.FilePath)
}

// delete handles DELETE /api/captures/{id}, removing both the record and
// the photo on disk.
func (h *CaptureHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.store.Captures().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Capture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get capture")
		return
	}

	if err := h.store.Captures().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete capture")
		return
	}

	if err := os.Remove(c.FilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove capture file %s: %v", c.FilePath, err)
	}

	w.WriteHeader(http.StatusNoContent)
}
