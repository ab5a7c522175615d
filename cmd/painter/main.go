// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/digital_streetart/internal/app"
	"github.com/relabs-tech/digital_streetart/internal/config"
)

func main() {
	configPath := flag.String("config", "./streetart_config.txt", "path to configuration file")
	staticDir := flag.String("web", "web", "directory of static web files, empty to disable")
	flag.Parse()

	log.Println("starting digital-streetart painter (MQTT → wall)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunPainter(*staticDir); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
