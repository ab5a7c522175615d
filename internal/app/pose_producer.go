// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/digital_streetart/internal/config"
	"github.com/relabs-tech/digital_streetart/internal/orientation"
)

// MockTrigger is the scripted trigger of the mock producer: the trigger
// is fully pressed for the first pressed seconds of every period.
func MockTrigger(elapsed, period, pressed time.Duration) TriggerMessage {
	if period <= 0 {
		return TriggerMessage{}
	}
	phase := elapsed % period
	if phase < pressed {
		return TriggerMessage{Value: 1}
	}
	return TriggerMessage{}
}

// RunPoseProducer publishes mock device poses and a scripted trigger
// at the fixed tick rate.
func RunPoseProducer() error {
	log.Println("starting digital-streetart pose producer (mock)")

	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	src := orientation.NewMockSource(orientation.DefaultMockConfig())
	start := time.Now()
	var published int

	// main tick
	ticker := time.NewTicker(time.Duration(cfg.TickInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		pose, err := src.Next()
		if err != nil {
			log.Printf("error from mock pose source: %v", err)
			continue
		}

		payload, err := json.Marshal(pose)
		if err != nil {
			log.Printf("json marshal error (pose): %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicPoseRaw, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (pose): %v", token.Error())
			continue
		}

		trig := MockTrigger(t.Sub(start), 3*time.Second, 2*time.Second)
		if payload, err := json.Marshal(trig); err != nil {
			log.Printf("json marshal error (trigger): %v", err)
		} else if token := client.Publish(cfg.TopicTrigger, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (trigger): %v", token.Error())
		}

		published++
		if published%250 == 0 {
			f := pose.Forward()
			log.Printf("%s tick: pos=(%.3f %.3f %.3f) aim=(%.2f %.2f %.2f) trigger=%.0f",
				t.Format(time.RFC3339),
				pose.Position.X, pose.Position.Y, pose.Position.Z,
				f.X, f.Y, f.Z,
				trig.Value,
			)
		}
	}
	return nil
}
