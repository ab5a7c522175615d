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

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/digital_streetart/internal/config"
	"github.com/relabs-tech/digital_streetart/internal/orientation"
)

// FormatPose renders a pose as one console line.
func FormatPose(tag string, p orientation.Pose) string {
	f := p.Forward()
	return fmt.Sprintf("[%-4s] X=%7.3f Y=%7.3f Z=%7.3f  AIM=(%6.3f %6.3f %6.3f)",
		tag, p.Position.X, p.Position.Y, p.Position.Z, f.X, f.Y, f.Z)
}

// RunConsoleMQTT prints raw and stabilized poses until interrupted.
func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	subscribe := func(topic, tag string) error {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var p orientation.Pose
			if err := json.Unmarshal(msg.Payload(), &p); err != nil {
				log.Printf("console: %s unmarshal error: %v", tag, err)
				return
			}
			fmt.Println(FormatPose(tag, p))
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("console: subscribed to %s", topic)
		return nil
	}

	if err := subscribe(cfg.TopicPoseRaw, "RAW"); err != nil {
		return err
	}
	if err := subscribe(cfg.TopicPoseStabilized, "STAB"); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
