package e2e

import (
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/bindi/internal/capture"
	"github.com/ayusman/bindi/internal/detector"
	"github.com/ayusman/bindi/internal/server"
	"github.com/ayusman/bindi/internal/session"
	"github.com/ayusman/bindi/internal/sticker"
	"github.com/ayusman/bindi/internal/store"
	"github.com/ayusman/bindi/testdata"
)

// startStack wires a full store, library, session, and HTTP server over a
// mock camera and detector, the same way main does over real devices.
func startStack(t *testing.T) (*httptest.Server, *session.Session, string) {
	t.Helper()

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	lib := sticker.NewLibrary()
	t.Cleanup(lib.Close)

	frame := testdata.SolidFrame(640, 480, 30, 30, 30)
	t.Cleanup(func() { frame.Close() })

	mockDet := detector.NewMockDetector()
	face := detector.CenteredFace()
	hand := detector.PalmFacingHand()
	mockDet.SetResult(detector.Result{Face: &face, Hand: &hand})

	sess := session.New(session.Config{
		Store:      s,
		Library:    lib,
		CaptureDir: filepath.Join(tmpDir, "captures"),
		Camera:     capture.NewMockCamera([]*gocv.Mat{frame}, true),
		Detector:   mockDet,
	})

	if err := sess.Start(); err != nil {
		t.Fatalf("session.Start() error = %v", err)
	}
	t.Cleanup(sess.Stop)

	srv := server.New(server.Config{
		Store:   s,
		Session: sess,
		Library: lib,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return ts, sess, tmpDir
}

// waitForOverlay polls /api/overlay until the transform reports visible.
func waitForOverlay(t *testing.T, ts *httptest.Server) {
	t.Helper()

	client := ts.Client()
	deadline := time.Now().Add(3 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(ts.URL + "/api/overlay")
		if err != nil {
			t.Fatalf("overlay poll error = %v", err)
		}

		var body struct {
			State struct {
				Transform struct {
					Visible bool `json:"visible"`
				} `json:"transform"`
			} `json:"state"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()

		if body.State.Transform.Visible {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("overlay never became visible")
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	ts, _, tmpDir := startStack(t)
	client := ts.Client()

	// Register a sticker through the API.
	pngPath := filepath.Join(tmpDir, "bindi.png")
	if err := testdata.WriteStickerPNG(pngPath, 64, color.NRGBA{R: 220, G: 20, B: 20, A: 255}); err != nil {
		t.Fatalf("write sticker error = %v", err)
	}

	var stickerID string
	t.Run("RegisterSticker", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/stickers",
			"application/json",
			strings.NewReader(`{"name": "bindi", "path": "`+pngPath+`"}`),
		)
		if err != nil {
			t.Fatalf("create sticker error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var created struct {
			ID string `json:"id"`
		}
		json.NewDecoder(resp.Body).Decode(&created)
		stickerID = created.ID
		if stickerID == "" {
			t.Fatal("created sticker has no id")
		}
	})

	t.Run("ReportViewport", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/viewport",
			"application/json",
			strings.NewReader(`{"width": 390, "height": 844}`),
		)
		if err != nil {
			t.Fatalf("viewport error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("OverlayBecomesVisible", func(t *testing.T) {
		waitForOverlay(t, ts)
	})

	var captureID string
	t.Run("TakePhoto", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/captures", "application/json", nil)
		if err != nil {
			t.Fatalf("capture error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var created struct {
			ID        string `json:"id"`
			StickerID string `json:"sticker_id"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		}
		json.NewDecoder(resp.Body).Decode(&created)
		captureID = created.ID

		// Photos are written at the camera's intrinsic resolution, not the
		// client viewport.
		if created.Width != 640 || created.Height != 480 {
			t.Errorf("capture size = %dx%d, want 640x480", created.Width, created.Height)
		}
		if created.StickerID != stickerID {
			t.Errorf("capture sticker = %q, want %q", created.StickerID, stickerID)
		}
	})

	t.Run("DownloadPhoto", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/captures/" + captureID + "/file")
		if err != nil {
			t.Fatalf("download error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("ListCaptures", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/captures")
		if err != nil {
			t.Fatalf("list error = %v", err)
		}
		defer resp.Body.Close()

		var list struct {
			Captures []struct {
				ID string `json:"id"`
			} `json:"captures"`
		}
		json.NewDecoder(resp.Body).Decode(&list)

		if len(list.Captures) != 1 || list.Captures[0].ID != captureID {
			t.Errorf("captures = %+v, want one with id %s", list.Captures, captureID)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after session operations")
		}
		resp.Body.Close()
	})
}

func TestE2E_OverlayToggleAffectsPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	ts, sess, _ := startStack(t)
	client := ts.Client()

	resp, err := client.Post(
		ts.URL+"/api/viewport",
		"application/json",
		strings.NewReader(`{"width": 400, "height": 300}`),
	)
	if err != nil {
		t.Fatalf("viewport error = %v", err)
	}
	resp.Body.Close()

	waitForOverlay(t, ts)

	// Disable through the API and observe the session state drop.
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/overlay", strings.NewReader(`{"enabled": false}`))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("overlay put error = %v", err)
	}
	resp.Body.Close()

	if sess.IsEnabled() {
		t.Error("session still enabled after API disable")
	}
	if sess.State().Transform.Visible {
		t.Error("overlay still visible after API disable")
	}
}

func TestE2E_MotionActivatesPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	frames := testdata.MovingSequence(640, 480, 10)
	defer testdata.CloseFrames(frames)

	mockDet := detector.NewMockDetector()
	face := detector.CenteredFace()
	hand := detector.PalmFacingHand()
	mockDet.SetResult(detector.Result{Face: &face, Hand: &hand})

	sess := session.New(session.Config{
		Store:      s,
		CaptureDir: filepath.Join(tmpDir, "captures"),
		Camera:     capture.NewMockCamera(frames, true),
		Detector:   mockDet,
	})
	sess.SetDisplaySize(400, 300)

	if err := sess.Start(); err != nil {
		t.Fatalf("session.Start() error = %v", err)
	}
	defer sess.Stop()

	// The moving square keeps the pipeline active and producing transforms.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if sess.State().Transform.Visible {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("pipeline never produced a visible transform from the moving sequence")
}
