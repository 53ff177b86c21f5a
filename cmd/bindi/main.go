package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ayusman/bindi/internal/capture"
	"github.com/ayusman/bindi/internal/overlay"
	"github.com/ayusman/bindi/internal/server"
	"github.com/ayusman/bindi/internal/session"
	"github.com/ayusman/bindi/internal/sticker"
	"github.com/ayusman/bindi/internal/store"
	"github.com/ayusman/bindi/internal/tray"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "camera device ID")
	facing := flag.String("facing", "front", "camera facing: front or rear")
	strategy := flag.String("strategy", string(overlay.StrategyNoseOffset), "placement strategy: nose-offset or above-face")
	gate := flag.String("gate", string(overlay.GatePalmFacing), "visibility gate: palm-facing or hand-presence")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	if !overlay.Strategy(*strategy).Valid() {
		log.Fatalf("Unknown strategy %q, want %s or %s", *strategy, overlay.StrategyNoseOffset, overlay.StrategyAboveFace)
	}
	if !overlay.Gate(*gate).Valid() {
		log.Fatalf("Unknown gate %q, want %s or %s", *gate, overlay.GatePalmFacing, overlay.GateHandPresence)
	}

	fmt.Println("Bindi - Sticker Camera")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".bindi")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "bindi.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Decode every registered sticker up front.
	lib := sticker.NewLibrary()
	defer lib.Close()

	stickerDir := filepath.Join(dataDir, "stickers")
	if err := os.MkdirAll(stickerDir, 0755); err != nil {
		log.Fatalf("Failed to create sticker directory: %v", err)
	}
	if n, err := lib.LoadDir(stickerDir); err != nil {
		log.Printf("Failed to load stickers: %v", err)
	} else {
		fmt.Printf("Loaded %d stickers from %s\n", n, stickerDir)
	}

	// Restore the persisted active sticker, if any.
	if name, err := st.Settings().Get("active_sticker"); err == nil {
		if err := lib.SetActive(name); err != nil {
			log.Printf("Persisted active sticker %q not loadable: %v", name, err)
		}
	}

	camFacing := capture.FacingFront
	if *facing == "rear" {
		camFacing = capture.FacingRear
	}

	sess := session.New(session.Config{
		Store:      st,
		Library:    lib,
		CameraID:   *cameraID,
		Facing:     camFacing,
		CaptureDir: filepath.Join(dataDir, "captures"),
		Engine: overlay.Config{
			Strategy: overlay.Strategy(*strategy),
			Gate:     overlay.Gate(*gate),
		},
	})

	// Restore the active sticker's stored sizing into the engine.
	if active := lib.Active(); active != nil {
		if rec, err := st.Stickers().GetByName(active.Name); err == nil {
			sess.ApplyStickerTuning(rec.BaseSize, rec.MinScale, rec.MaxScale)
		}
	}

	if err := sess.Start(); err != nil {
		log.Fatalf("Failed to start camera pipeline: %v", err)
	}
	defer sess.Stop()

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Session:   sess,
		Library:   lib,
	})

	fmt.Printf("Starting server on %s\n", *addr)

	if *noTray {
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	tr := tray.New()
	tr.OnToggle(sess.SetEnabled)
	tr.OnCapture(func() {
		c, err := sess.Capture()
		if err != nil {
			log.Printf("Capture failed: %v", err)
			return
		}
		tr.SetLastCapture(filepath.Base(c.FilePath))
	})
	tr.OnPreview(func() {
		openBrowser("http://localhost" + *addr)
	})
	tr.OnQuit(func() {
		sess.Stop()
	})

	// Blocks until quit.
	tr.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.bindi/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".bindi", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens a URL with the platform opener. Errors are logged, not
// fatal.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch {
	case fileExists("/usr/bin/open"): // macOS
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
