// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/digital_streetart/internal/orientation"
	"github.com/relabs-tech/digital_streetart/internal/stabilizer"
)

// RunMockConsole prints mock poses next to their stabilized version,
// without a broker.
func RunMockConsole() error {
	src := orientation.NewMockSource(orientation.DefaultMockConfig())
	stab, err := stabilizer.New(stabilizer.DefaultConfig())
	if err != nil {
		return err
	}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		pose, err := src.Next()
		if err != nil {
			return err
		}
		pos, rot := stab.Update(pose.Position, pose.Orientation)

		fmt.Println(FormatPose("RAW", pose))
		fmt.Println(FormatPose("STAB", orientation.Pose{Position: pos, Orientation: rot}))
	}
	return nil
}
