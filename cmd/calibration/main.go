// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration/main.go
//
// Guided wall calibration from a terminal. Connects to the painter's
// calibration websocket and turns key presses into calibration steps:
//
//	ENTER  capture the current step (same as the calibrate button)
//	c      cancel the cycle in progress
//	s      print the current step
//	q      quit
//
// Run:
//
//	go run ./cmd/calibration -addr localhost:8080
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/digital_streetart/internal/app"
)

func main() {
	in := bufio.NewReader(os.Stdin)

	addr := flag.String("addr", "localhost:8080", "painter web server address")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/calibration"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fatal(fmt.Errorf("connect %s: %w", u.String(), err))
	}
	defer conn.Close()

	fmt.Println("=== Guided Wall Calibration ===")
	fmt.Println("ENTER = capture, c = cancel, s = status, q = quit")
	fmt.Println()

	go printMessages(conn)

	for {
		line, err := in.ReadString('\n')
		if err != nil {
			return
		}
		var action string
		switch strings.TrimSpace(strings.ToLower(line)) {
		case "":
			action = "next"
		case "c":
			action = "cancel"
		case "s":
			action = "status"
		case "q":
			return
		default:
			fmt.Println("unknown key; ENTER, c, s or q")
			continue
		}
		if err := conn.WriteJSON(app.WSMessage{Action: action}); err != nil {
			fatal(err)
		}
	}
}

func printMessages(conn *websocket.Conn) {
	for {
		var msg app.WSResponse
		if err := conn.ReadJSON(&msg); err != nil {
			fatal(fmt.Errorf("connection closed: %w", err))
		}
		switch msg.Type {
		case "session":
			fmt.Printf("session %s, step: %s\n", msg.Session, msg.State)
			if msg.Prompt != "" {
				fmt.Printf(">> %s\n", msg.Prompt)
			}
		case "status":
			fmt.Printf("step: %s (calibrations: %d)\n", msg.State, msg.Calibrations)
			if msg.Message != "" {
				fmt.Printf("!! %s\n", msg.Message)
			}
			if msg.Prompt != "" {
				fmt.Printf(">> %s\n", msg.Prompt)
			} else if msg.State == "idle" {
				fmt.Println("press ENTER to start a calibration")
			}
		case "error":
			fmt.Printf("error: %s\n", msg.Message)
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
