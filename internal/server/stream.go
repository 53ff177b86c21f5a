package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/bindi/internal/session"
)

// StreamHandler serves MJPEG frames with the sticker overlay already
// composited, so the preview matches what a capture will produce.
type StreamHandler struct {
	session *session.Session
}

// NewStreamHandler creates a new StreamHandler for the given session.
func NewStreamHandler(sess *session.Session) *StreamHandler {
	return &StreamHandler{session: sess}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		data, err := h.session.CompositedFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		w.Write(data)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(33 * time.Millisecond) // ~30 FPS
	}
}
