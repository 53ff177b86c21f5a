package session

import (
	"log"
	"time"

	"github.com/ayusman/bindi/internal/overlay"
)

// runPipeline is the main loop that processes frames from the camera.
// It manages the state transitions between idle and active frame rates
// based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS)
// 2. On motion detected, switch to active mode (ActiveFPS)
// 3. Run face and hand landmark detection
// 4. Compute the target overlay transform and smooth it one step
// 5. Clamp the smoothed transform to the display bounds
// 6. After 2s of no motion, switch back to idle mode
func (s *Session) runPipeline() {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			frame, err := s.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection drives the frame rate.
			motionDetected, _ := s.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					s.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					s.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Keep the newest frame around for capture and streaming.
			s.mu.Lock()
			if s.hasFrame {
				s.lastFrame.Close()
			}
			s.lastFrame = frame.Clone()
			s.hasFrame = true
			enabled := s.enabled
			dispW, dispH := s.dispW, s.dispH
			s.mu.Unlock()

			if !enabled || dispW <= 0 || dispH <= 0 {
				frame.Close()
				continue
			}

			videoW, videoH := s.camera.IntrinsicSize()
			mapping, err := overlay.ComputeMapping(videoW, videoH, dispW, dispH)
			if err != nil {
				frame.Close()
				continue
			}

			// Step 2: Landmark detection with a strictly increasing timestamp.
			ts := time.Since(s.startTime).Milliseconds()
			if ts <= s.lastTsMs {
				ts = s.lastTsMs + 1
			}
			s.lastTsMs = ts

			result, err := s.detector.Detect(frame, ts)
			frame.Close()

			if err != nil {
				log.Printf("Error detecting landmarks: %v", err)
				continue
			}

			// Step 3: Place, smooth, and clamp the overlay. The engine
			// pointer is re-read every tick so sticker activation can swap
			// in new tuning between frames.
			s.mu.RLock()
			engine := s.engine
			s.mu.RUnlock()

			target := engine.Target(result.Face, result.Hand, mapping, dispW, dispH)
			smoothed := s.smoother.Step(target)
			smoothed = engine.ClampToBounds(smoothed, dispW, dispH)

			s.mu.Lock()
			s.current = smoothed
			s.mapping = mapping
			s.mappingOK = true
			s.mu.Unlock()
		}
	}
}
