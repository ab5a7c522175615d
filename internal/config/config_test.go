// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/calibration"
	"github.com/relabs-tech/digital_streetart/internal/remap"
	"github.com/relabs-tech/digital_streetart/internal/stabilizer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streetart_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# broker only\nMQTT_BROKER=tcp://localhost:1883\n"))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, 20, cfg.TickInterval)
	assert.Equal(t, 128, cfg.CanvasWidth)
	assert.Equal(t, stabilizer.FilterMean, cfg.PositionFilter)
	assert.Equal(t, calibration.Plane, cfg.CalibrationMode)
	assert.Equal(t, remap.Planar, cfg.RemapAxes)
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, cfg.PaintColor)
	assert.NoError(t, cfg.SprayConfig().Validate())
}

func TestLoadOverrides(t *testing.T) {
	body := `
MQTT_BROKER = tcp://broker:1883
TICK_INTERVAL=10
PAINT_COLOR=#00ff7f
PALETTE=#000000, #FFFFFF80
POSITION_FILTER=kalman
ROTATION_AVERAGE=slerp
REMAP_AXES=3
CALIBRATION_MODE=three_point
PLANE_NORMAL=0, 0, 1
VIRTUAL_TOP_RIGHT=2,3,4
PHYSICAL_TOP_RIGHT=0.3,2.0,1
SPRAY_SEED=42
`
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.Equal(t, 10, cfg.TickInterval)
	assert.Equal(t, color.RGBA{G: 0xFF, B: 0x7F, A: 0xFF}, cfg.PaintColor)
	assert.Equal(t, []color.RGBA{{A: 0xFF}, {R: 0xFF, G: 0xFF, B: 0xFF, A: 0x80}}, cfg.Palette)
	assert.Equal(t, stabilizer.FilterKalman, cfg.StabilizerConfig().PositionFilter)
	assert.Equal(t, stabilizer.AverageSlerp, cfg.StabilizerConfig().RotationAverage)
	assert.Equal(t, remap.Spatial, cfg.RemapAxes)
	assert.Equal(t, calibration.ThreePoint, cfg.CalibrationMode)
	assert.Equal(t, r3.Vec{Z: 1}, cfg.PlaneNormal)
	assert.Equal(t, r3.Vec{X: 2, Y: 3, Z: 4}, cfg.ReferenceFrame().TopRightVirtual)
	assert.Equal(t, uint64(42), cfg.SpraySeed)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing broker", "TICK_INTERVAL=5\n", "MQTT_BROKER is required"},
		{"unknown key", "MQTT_BROKER=x\nNOPE=1\n", `config line 2: unknown config key: "NOPE"`},
		{"no equals", "MQTT_BROKER\n", "invalid config line 1"},
		{"bad int", "MQTT_BROKER=x\nRAYS_PER_TICK=many\n", "invalid RAYS_PER_TICK"},
		{"bad vector", "MQTT_BROKER=x\nPLANE_POINT=1,2\n", "PLANE_POINT must be x,y,z"},
		{"bad color", "MQTT_BROKER=x\nPAINT_COLOR=red\n", "PAINT_COLOR must be #RRGGBB"},
		{"bad window", "MQTT_BROKER=x\nPOSITION_WINDOW_SIZE=0\n", "window"},
		{"bad filter", "MQTT_BROKER=x\nPOSITION_FILTER=median\n", "median"},
		{"bad mode", "MQTT_BROKER=x\nCALIBRATION_MODE=two_point\n", "CALIBRATION_MODE"},
		{"degenerate frame", "MQTT_BROKER=x\nPHYSICAL_TOP_RIGHT=-0.6,1.4,0\n", "PHYSICAL_BOTTOM_LEFT"},
		{"bad port", "MQTT_BROKER=x\nWEB_SERVER_PORT=70000\n", "WEB_SERVER_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
