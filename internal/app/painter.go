// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/digital_streetart/internal/config"
	"github.com/relabs-tech/digital_streetart/internal/hud"
	"github.com/relabs-tech/digital_streetart/internal/orientation"
)

// RunPainter runs the spray rig: raw poses and trigger input arrive over
// MQTT, the loop runs the fixed and frame ticks, stabilized poses are
// published back and the wall is served over HTTP. It returns on SIGINT
// or SIGTERM.
func RunPainter(staticDir string) error {
	log.Println("starting digital-streetart painter")

	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	pcfg, err := PipelineConfig(cfg)
	if err != nil {
		return err
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDPainter).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("painter: connected to MQTT broker at %s", cfg.MQTTBroker)

	latch := NewInputLatch()
	status := &StatusBoard{}
	overlay := hud.New()

	publish := func(p orientation.Pose) {
		payload, err := json.Marshal(p)
		if err != nil {
			log.Printf("painter: json marshal error (pose): %v", err)
			return
		}
		client.Publish(cfg.TopicPoseStabilized, 0, false, payload)
	}
	rig, err := NewRig(pcfg, latch, status, overlay, publish)
	if err != nil {
		return err
	}

	if err := subscribeInput(client, cfg, latch); err != nil {
		return err
	}

	pipe := rig.Pipeline()
	srv := NewServer(status, latch, overlay, pipe.Canvas(), pipe.Wheel().Canvas(), staticDir)
	go func() {
		if err := RunWeb(fmt.Sprintf(":%d", cfg.WebServerPort), srv.Handler()); err != nil {
			log.Printf("painter: web server stopped: %v", err)
		}
	}()

	// fixed physics tick and variable frame tick
	fixed := time.NewTicker(time.Duration(cfg.TickInterval) * time.Millisecond)
	defer fixed.Stop()
	frame := time.NewTicker(time.Duration(cfg.FrameInterval) * time.Millisecond)
	defer frame.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	log.Println("painter: starting loop")
	for {
		select {
		case <-fixed.C:
			rig.FixedStep()
		case <-frame.C:
			rig.FrameStep()
		case <-sigCh:
			log.Println("painter: shutting down")
			return nil
		}
	}
}

func subscribeInput(client mqtt.Client, cfg *config.Config, latch *InputLatch) error {
	poseToken := client.Subscribe(cfg.TopicPoseRaw, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("painter: pose unmarshal error: %v", err)
			return
		}
		latch.SetPose(p)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("painter: subscribed to %s", cfg.TopicPoseRaw)

	triggerToken := client.Subscribe(cfg.TopicTrigger, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m TriggerMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("painter: trigger unmarshal error: %v", err)
			return
		}
		latch.SetTrigger(m)
	})
	triggerToken.Wait()
	if triggerToken.Error() != nil {
		return triggerToken.Error()
	}
	log.Printf("painter: subscribed to %s", cfg.TopicTrigger)
	return nil
}
