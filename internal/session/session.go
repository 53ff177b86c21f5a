// Package session orchestrates the live camera pipeline: frame capture,
// landmark detection, overlay placement and smoothing, and photo capture.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/bindi/internal/capture"
	"github.com/ayusman/bindi/internal/compositor"
	"github.com/ayusman/bindi/internal/detector"
	"github.com/ayusman/bindi/internal/overlay"
	"github.com/ayusman/bindi/internal/sticker"
	"github.com/ayusman/bindi/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while the scene is moving.
	ActiveFPS = 30
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// ErrNoFrame is returned when a capture is requested before the camera has
// produced a frame.
var ErrNoFrame = errors.New("no frame available")

// Config holds configuration options for a session.
type Config struct {
	Store        *store.Store
	Library      *sticker.Library
	CameraID     int
	Facing       capture.Facing
	CaptureDir   string
	MotionThresh float64
	Engine       overlay.Config

	// PositionAlpha and ScaleAlpha tune overlay smoothing. Zero means default.
	PositionAlpha float64
	ScaleAlpha    float64

	// Camera and Detector override the defaults when non-nil. Used by tests.
	Camera   capture.Camera
	Detector detector.Detector
}

// State is a snapshot of the session's overlay output, as broadcast to
// connected clients.
type State struct {
	Transform overlay.Transform `json:"transform"`
	DisplayW  int               `json:"displayWidth"`
	DisplayH  int               `json:"displayHeight"`
	VideoW    int               `json:"videoWidth"`
	VideoH    int               `json:"videoHeight"`
	Sticker   string            `json:"sticker,omitempty"`
}

// Session is the live pipeline: it reads camera frames, runs landmark
// detection, and maintains the smoothed overlay transform frame to frame.
type Session struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	engine     *overlay.Engine
	smoother   *overlay.Smoother
	compositor *compositor.Compositor
	library    *sticker.Library

	enabled      bool
	dispW, dispH int
	current      overlay.Transform
	mapping      overlay.Mapping
	mappingOK    bool
	lastFrame    gocv.Mat
	hasFrame     bool
	startTime    time.Time
	lastTsMs     int64

	mu     sync.RWMutex
	stopCh chan struct{}
}

// New creates a new Session with the given configuration.
func New(config Config) *Session {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	engine := overlay.NewEngine(config.Engine)

	s := &Session{
		config:     config,
		camera:     config.Camera,
		motion:     capture.NewMotionDetector(motionThreshold),
		engine:     engine,
		smoother:   overlay.NewSmoother(config.PositionAlpha, config.ScaleAlpha),
		compositor: compositor.New(engine.Config().BaseSize),
		library:    config.Library,
		enabled:    true,
		startTime:  time.Now(),
	}

	if s.camera == nil {
		s.camera = capture.NewCamera(config.CameraID, config.Facing)
	}
	if s.library == nil {
		s.library = sticker.NewLibrary()
	}

	if config.Detector != nil {
		s.detector = config.Detector
	} else if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		s.detector = mp
		log.Println("Using MediaPipe face and hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		s.detector = detector.NewMockDetector()
	}

	return s
}

// SetEnabled shows or hides the sticker overlay. The pipeline keeps running
// either way so live video is unaffected.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	if !enabled {
		s.current.Visible = false
	}
}

// IsEnabled returns whether the overlay is currently enabled.
func (s *Session) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetDetector sets the landmark detector implementation to use.
func (s *Session) SetDetector(d detector.Detector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector = d
}

// SetDisplaySize records the client's display viewport in pixels. The
// viewport mapping is recomputed on the next frame; the smoother is not
// reset, so the overlay glides rather than jumping when the viewport
// changes.
func (s *Session) SetDisplaySize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispW = w
	s.dispH = h
}

// DisplaySize returns the current display viewport.
func (s *Session) DisplaySize() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dispW, s.dispH
}

// State returns a snapshot of the session's overlay output.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Transform: s.current,
		DisplayW:  s.dispW,
		DisplayH:  s.dispH,
		VideoW:    int(s.mapping.VideoW),
		VideoH:    int(s.mapping.VideoH),
	}
	if a := s.library.Active(); a != nil {
		st.Sticker = a.Name
	}
	return st
}

// Library returns the sticker library used by this session.
func (s *Session) Library() *sticker.Library {
	return s.library
}

// Engine returns the overlay placement engine.
func (s *Session) Engine() *overlay.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// ApplyStickerTuning swaps in the active sticker's stored sizing: reference
// size and scale bounds. Strategy and gate are preserved, and the smoother
// is kept so the overlay glides to the new scale instead of snapping.
// Zero values fall back to the engine defaults.
func (s *Session) ApplyStickerTuning(baseSize, minScale, maxScale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.engine.Config()
	cfg.BaseSize = baseSize
	cfg.MinScale = minScale
	cfg.MaxScale = maxScale

	s.engine = overlay.NewEngine(cfg)
	s.compositor = compositor.New(s.engine.Config().BaseSize)
}

// Camera returns the camera instance.
func (s *Session) Camera() capture.Camera {
	return s.camera
}

// Start opens the camera and begins the pipeline goroutine.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Don't start if already running
	if s.stopCh != nil {
		return nil
	}

	if err := s.camera.Open(); err != nil {
		return err
	}

	// Start throttled until motion shows up.
	s.camera.SetFPS(IdleFPS)

	s.stopCh = make(chan struct{})
	go s.runPipeline()

	log.Println("Camera pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}

	if err := s.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	s.motion.Close()

	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	if s.hasFrame {
		s.lastFrame.Close()
		s.hasFrame = false
	}

	log.Println("Camera pipeline stopped")
}

// CompositedFrame returns the latest camera frame with the sticker overlay
// burned in, encoded as JPEG. The overlay is composited at the frame's
// intrinsic resolution.
func (s *Session) CompositedFrame() ([]byte, error) {
	frame, err := s.compositeLatest()
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Capture composites the overlay into the latest frame at intrinsic
// resolution, writes it to the capture directory, and records it in the
// store.
func (s *Session) Capture() (*store.Capture, error) {
	frame, err := s.compositeLatest()
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	id := uuid.New().String()
	path := filepath.Join(s.config.CaptureDir, id+".jpg")

	if err := os.MkdirAll(s.config.CaptureDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create capture dir: %w", err)
	}
	if ok := gocv.IMWrite(path, *frame); !ok {
		return nil, fmt.Errorf("failed to write capture to %s", path)
	}

	c := &store.Capture{
		ID:       id,
		FilePath: path,
		Width:    frame.Cols(),
		Height:   frame.Rows(),
	}
	c.StickerID = s.activeStickerID()

	if s.config.Store != nil {
		if err := s.config.Store.Captures().Create(c); err != nil {
			return nil, fmt.Errorf("failed to record capture: %w", err)
		}
	}

	log.Printf("Captured %dx%d photo to %s", c.Width, c.Height, path)
	return c, nil
}

// compositeLatest clones the most recent frame and composites the active
// sticker at the current smoothed transform. The caller owns the returned
// Mat.
func (s *Session) compositeLatest() (*gocv.Mat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasFrame {
		return nil, ErrNoFrame
	}

	frame := s.lastFrame.Clone()

	if s.mappingOK && s.current.Visible {
		if asset := s.library.Active(); asset != nil {
			if err := s.compositor.Compose(&frame, asset.Mat(), s.current, s.mapping); err != nil {
				frame.Close()
				return nil, err
			}
		}
	}

	return &frame, nil
}

// activeStickerID resolves the active sticker's database ID, if the sticker
// is registered. Missing or unregistered stickers yield a null ID.
func (s *Session) activeStickerID() sql.NullString {
	if s.config.Store == nil {
		return sql.NullString{}
	}
	s.mu.RLock()
	visible := s.current.Visible
	s.mu.RUnlock()
	if !visible {
		return sql.NullString{}
	}

	asset := s.library.Active()
	if asset == nil {
		return sql.NullString{}
	}

	st, err := s.config.Store.Stickers().GetByName(asset.Name)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: st.ID, Valid: true}
}
