// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// statusPollInterval is how often a session checks for state changes to
// push.
const statusPollInterval = 50 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is a client request.
type WSMessage struct {
	Action string `json:"action"` // next, cancel, status
}

// WSResponse is pushed to the client.
type WSResponse struct {
	Type         string `json:"type"` // session, status, ack, error
	Session      string `json:"session"`
	State        string `json:"state,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
	Calibrations int    `json:"calibrations,omitempty"`
	Message      string `json:"message,omitempty"`
}

// CalibrationSession is one connected calibration client. Writes are
// serialized because the status pusher and the read loop share the
// connection.
type CalibrationSession struct {
	ID   string
	Conn *websocket.Conn
	mu   sync.Mutex
}

func (s *CalibrationSession) send(resp WSResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp.Session = s.ID
	return s.Conn.WriteJSON(resp)
}

func statusResponse(typ string, st Status) WSResponse {
	return WSResponse{
		Type:         typ,
		State:        st.Calibration,
		Prompt:       st.Prompt,
		Calibrations: st.Calibrated,
		Message:      st.LastError,
	}
}

// HandleCalibrationWS drives the calibration from a websocket client.
// "next" queues one trigger edge, "cancel" abandons the cycle and
// "status" asks for the current step. Step changes are pushed as they
// happen.
func (s *Server) HandleCalibrationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &CalibrationSession{ID: uuid.NewString(), Conn: conn}
	log.Printf("calibration: session %s opened", session.ID)

	last := s.status.Get()
	if err := session.send(statusResponse("session", last)); err != nil {
		log.Printf("calibration: session %s write error: %v", session.ID, err)
		return
	}

	done := make(chan struct{})
	defer close(done)
	go s.pushStatus(session, last, done)

	// Main message loop
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("calibration: session %s closed: %v", session.ID, err)
			return
		}

		var resp WSResponse
		switch msg.Action {
		case "next":
			s.latch.RequestCalibrate()
			resp = WSResponse{Type: "ack", Message: "next"}
		case "cancel":
			s.latch.RequestCancel()
			log.Printf("calibration: session %s cancelled", session.ID)
			resp = WSResponse{Type: "ack", Message: "cancel"}
		case "status":
			resp = statusResponse("status", s.status.Get())
		default:
			resp = WSResponse{Type: "error", Message: "unknown action: " + msg.Action}
		}
		if err := session.send(resp); err != nil {
			log.Printf("calibration: session %s write error: %v", session.ID, err)
			return
		}
	}
}

// pushStatus sends a status message whenever the calibration step,
// prompt or error changes.
func (s *Server) pushStatus(session *CalibrationSession, last Status, done <-chan struct{}) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}
		st := s.status.Get()
		if st.Calibration == last.Calibration && st.Prompt == last.Prompt &&
			st.LastError == last.LastError && st.Calibrated == last.Calibrated {
			continue
		}
		last = st
		if err := session.send(statusResponse("status", st)); err != nil {
			return
		}
	}
}
