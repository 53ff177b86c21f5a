package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/bindi/internal/session"
)

// OverlayHandler exposes the session's overlay state: current transform,
// enabled flag, and the client viewport used for coordinate mapping.
type OverlayHandler struct {
	session *session.Session
}

// NewOverlayHandler creates a new OverlayHandler for the given session.
func NewOverlayHandler(sess *session.Session) *OverlayHandler {
	return &OverlayHandler{session: sess}
}

type overlayResponse struct {
	Enabled bool          `json:"enabled"`
	State   session.State `json:"state"`
}

type updateOverlayRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT on /api/overlay.
func (h *OverlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, overlayResponse{
			Enabled: h.session.IsEnabled(),
			State:   h.session.State(),
		})

	case http.MethodPut:
		var req updateOverlayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled != nil {
			h.session.SetEnabled(*req.Enabled)
		}
		writeJSON(w, http.StatusOK, overlayResponse{
			Enabled: h.session.IsEnabled(),
			State:   h.session.State(),
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ViewportHandler records the client's display viewport so landmark
// coordinates can be projected into it.
type ViewportHandler struct {
	session *session.Session
}

// NewViewportHandler creates a new ViewportHandler for the given session.
func NewViewportHandler(sess *session.Session) *ViewportHandler {
	return &ViewportHandler{session: sess}
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type viewportResponse struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ServeHTTP handles GET and POST on /api/viewport. Clients POST their
// viewport on load and again whenever it changes, e.g. on rotation.
func (h *ViewportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w2, h2 := h.session.DisplaySize()
		writeJSON(w, http.StatusOK, viewportResponse{Width: w2, Height: h2})

	case http.MethodPost:
		var req viewportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Width <= 0 || req.Height <= 0 {
			writeError(w, http.StatusBadRequest, "Width and height must be positive")
			return
		}
		h.session.SetDisplaySize(req.Width, req.Height)
		writeJSON(w, http.StatusOK, viewportResponse{Width: req.Width, Height: req.Height})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
