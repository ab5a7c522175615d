// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/relabs-tech/digital_streetart/internal/hud"
	"github.com/relabs-tech/digital_streetart/internal/raster"
)

const (
	defaultScale = 4
	maxScale     = 16
)

// Server serves the rig state, the wall raster and the calibration
// websocket.
type Server struct {
	status    *StatusBoard
	latch     *InputLatch
	overlay   *hud.Overlay
	canvas    *raster.Canvas
	wheel     *raster.Canvas
	staticDir string
}

// NewServer wires the HTTP surface to the rig. staticDir may be empty.
func NewServer(status *StatusBoard, latch *InputLatch, overlay *hud.Overlay, canvas, wheel *raster.Canvas, staticDir string) *Server {
	return &Server{
		status:    status,
		latch:     latch,
		overlay:   overlay,
		canvas:    canvas,
		wheel:     wheel,
		staticDir: staticDir,
	}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pose", s.handlePose)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/canvas.png", s.handleCanvas)
	mux.HandleFunc("/api/colorwheel.png", s.handleWheel)
	mux.HandleFunc("/api/clear", s.handleClear)
	mux.HandleFunc("/ws/calibration", s.HandleCalibrationWS)
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return mux
}

// RunWeb serves h on addr until the listener fails.
func RunWeb(addr string, h http.Handler) error {
	log.Printf("web: listening on %s", addr)
	return http.ListenAndServe(addr, h)
}

func (s *Server) handlePose(w http.ResponseWriter, r *http.Request) {
	st := s.status.Get()
	if !st.HavePose {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, st.Pose)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.status.Get())
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	s.writePNG(w, r, s.canvas, s.overlay)
}

func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	s.writePNG(w, r, s.wheel, nil)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.latch.RequestClear()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) writePNG(w http.ResponseWriter, r *http.Request, c *raster.Canvas, o *hud.Overlay) {
	scale := defaultScale
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxScale {
			http.Error(w, "scale must be an integer between 1 and 16", http.StatusBadRequest)
			return
		}
		scale = n
	}
	img := hud.Compose(c.Snapshot(), scale, o)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		log.Printf("web: png encode error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}
