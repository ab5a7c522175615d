// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/digital_streetart/internal/calibration"
	"github.com/relabs-tech/digital_streetart/internal/remap"
	"github.com/relabs-tech/digital_streetart/internal/spray"
	"github.com/relabs-tech/digital_streetart/internal/stabilizer"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDPainter  string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string

	// Topics
	TopicPoseRaw        string
	TopicPoseStabilized string
	TopicTrigger        string

	// Timing
	TickInterval  int // milliseconds, fixed-rate physics tick
	FrameInterval int // milliseconds, variable-rate frame tick

	// Web Server
	WebServerPort int

	// Spray
	MaxSprayAngle    float64 // degrees
	FadeOutAngle     float64 // degrees
	MinSplashRadius  float64 // pixels
	MaxSplashRadius  float64 // pixels
	RaysPerTick      int
	TriggerThreshold float64
	PaintColor       color.RGBA
	SpraySeed        uint64 // 0 picks a random seed at startup

	// Canvas / scene
	CanvasWidth  int
	CanvasHeight int
	WallDepth    float64 // virtual units between the anchors and the wall
	Palette      []color.RGBA
	WheelSize    int

	// Stabilizer
	PositionWindowSize int
	RotationWindowSize int
	PositionFilter     stabilizer.PositionFilter
	RotationAverage    stabilizer.RotationAverage
	FilterQ            float64
	FilterR            float64

	// Calibration / remap
	RemapAxes          remap.Axes
	CalibrationMode    calibration.Mode
	PlanePoint         r3.Vec
	PlaneNormal        r3.Vec
	VirtualBottomLeft  r3.Vec
	VirtualTopRight    r3.Vec
	PhysicalBottomLeft r3.Vec // used until the first calibration
	PhysicalTopRight   r3.Vec
}

// Package-level unexported variables for the singleton:
//   - globalConfig is only reachable through InitGlobal and Get.
//   - configOnce makes InitGlobal load the file once.
//   - configMu guards globalConfig; Get takes the read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	sc := spray.DefaultConfig()
	st := stabilizer.DefaultConfig()
	return &Config{
		MQTTClientIDPainter:  "streetart-painter",
		MQTTClientIDProducer: "streetart-pose-producer",
		MQTTClientIDConsole:  "streetart-console",

		TopicPoseRaw:        "streetart/pose/raw",
		TopicPoseStabilized: "streetart/pose/stabilized",
		TopicTrigger:        "streetart/trigger",

		TickInterval:  20,
		FrameInterval: 16,
		WebServerPort: 8080,

		MaxSprayAngle:    sc.MaxSprayAngle,
		FadeOutAngle:     sc.FadeOutAngle,
		MinSplashRadius:  sc.MinSplashRadius,
		MaxSplashRadius:  sc.MaxSplashRadius,
		RaysPerTick:      sc.RaysPerTick,
		TriggerThreshold: sc.TriggerThreshold,
		PaintColor:       sc.Color,

		CanvasWidth:  128,
		CanvasHeight: 128,
		WallDepth:    1,
		Palette: []color.RGBA{
			{R: 0xFF, A: 0xFF},
			{R: 0xFF, G: 0xA5, A: 0xFF},
			{R: 0xFF, G: 0xFF, A: 0xFF},
			{G: 0xC8, A: 0xFF},
			{B: 0xFF, A: 0xFF},
			{R: 0x80, B: 0x80, A: 0xFF},
		},
		WheelSize: 200,

		PositionWindowSize: st.PositionWindow,
		RotationWindowSize: st.RotationWindow,
		PositionFilter:     st.PositionFilter,
		RotationAverage:    st.RotationAverage,
		FilterQ:            st.Q,
		FilterR:            st.R,

		RemapAxes:          remap.Planar,
		CalibrationMode:    calibration.Plane,
		PlaneNormal:        r3.Vec{Z: -1},
		VirtualTopRight:    r3.Vec{X: 1, Y: 1},
		PhysicalBottomLeft: r3.Vec{X: -0.6, Y: 1.4},
		PhysicalTopRight:   r3.Vec{X: 0.3, Y: 2.0},
	}
}

// Load reads the configuration file on top of Default and validates it.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PAINTER":
		c.MQTTClientIDPainter = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_POSE_RAW":
		c.TopicPoseRaw = value
	case "TOPIC_POSE_STABILIZED":
		c.TopicPoseStabilized = value
	case "TOPIC_TRIGGER":
		c.TopicTrigger = value

	// Timing
	case "TICK_INTERVAL":
		c.TickInterval, err = parseInt(key, value)
	case "FRAME_INTERVAL":
		c.FrameInterval, err = parseInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)

	// Spray
	case "MAX_SPRAY_ANGLE":
		c.MaxSprayAngle, err = parseFloat(key, value)
	case "FADE_OUT_ANGLE":
		c.FadeOutAngle, err = parseFloat(key, value)
	case "MIN_SPLASH_RADIUS":
		c.MinSplashRadius, err = parseFloat(key, value)
	case "MAX_SPLASH_RADIUS":
		c.MaxSplashRadius, err = parseFloat(key, value)
	case "RAYS_PER_TICK":
		c.RaysPerTick, err = parseInt(key, value)
	case "TRIGGER_THRESHOLD":
		c.TriggerThreshold, err = parseFloat(key, value)
	case "PAINT_COLOR":
		c.PaintColor, err = parseColor(key, value)
	case "SPRAY_SEED":
		c.SpraySeed, err = strconv.ParseUint(value, 0, 64)
		if err != nil {
			err = fmt.Errorf("invalid %s %q: %w", key, value, err)
		}

	// Canvas / scene
	case "CANVAS_WIDTH":
		c.CanvasWidth, err = parseInt(key, value)
	case "CANVAS_HEIGHT":
		c.CanvasHeight, err = parseInt(key, value)
	case "WALL_DEPTH":
		c.WallDepth, err = parseFloat(key, value)
	case "PALETTE":
		c.Palette = c.Palette[:0]
		for _, s := range strings.Split(value, ",") {
			col, perr := parseColor(key, strings.TrimSpace(s))
			if perr != nil {
				return perr
			}
			c.Palette = append(c.Palette, col)
		}
	case "WHEEL_SIZE":
		c.WheelSize, err = parseInt(key, value)

	// Stabilizer
	case "POSITION_WINDOW_SIZE":
		c.PositionWindowSize, err = parseInt(key, value)
	case "ROTATION_WINDOW_SIZE":
		c.RotationWindowSize, err = parseInt(key, value)
	case "POSITION_FILTER":
		c.PositionFilter = stabilizer.PositionFilter(value)
	case "ROTATION_AVERAGE":
		c.RotationAverage = stabilizer.RotationAverage(value)
	case "FILTER_Q":
		c.FilterQ, err = parseFloat(key, value)
	case "FILTER_R":
		c.FilterR, err = parseFloat(key, value)

	// Calibration / remap
	case "REMAP_AXES":
		var n int
		n, err = parseInt(key, value)
		c.RemapAxes = remap.Axes(n)
	case "CALIBRATION_MODE":
		c.CalibrationMode = calibration.Mode(value)
	case "PLANE_POINT":
		c.PlanePoint, err = parseVec(key, value)
	case "PLANE_NORMAL":
		c.PlaneNormal, err = parseVec(key, value)
	case "VIRTUAL_BOTTOM_LEFT":
		c.VirtualBottomLeft, err = parseVec(key, value)
	case "VIRTUAL_TOP_RIGHT":
		c.VirtualTopRight, err = parseVec(key, value)
	case "PHYSICAL_BOTTOM_LEFT":
		c.PhysicalBottomLeft, err = parseVec(key, value)
	case "PHYSICAL_TOP_RIGHT":
		c.PhysicalTopRight, err = parseVec(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// Validate checks required fields and ranges. Component-level tuning is
// checked by the component's own validation.
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %d", c.TickInterval)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("FRAME_INTERVAL must be positive, got %d", c.FrameInterval)
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("CANVAS_WIDTH and CANVAS_HEIGHT must be positive, got %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	if c.WallDepth <= 0 {
		return fmt.Errorf("WALL_DEPTH must be positive, got %g", c.WallDepth)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("PALETTE needs at least one color")
	}
	if c.WheelSize <= 0 {
		return fmt.Errorf("WHEEL_SIZE must be positive, got %d", c.WheelSize)
	}
	if err := c.SprayConfig().Validate(); err != nil {
		return err
	}
	if err := c.StabilizerConfig().Validate(); err != nil {
		return err
	}
	if c.CalibrationMode != calibration.Plane && c.CalibrationMode != calibration.ThreePoint {
		return fmt.Errorf("CALIBRATION_MODE must be plane or three_point, got %q", c.CalibrationMode)
	}
	if _, err := remap.New(c.ReferenceFrame(), c.RemapAxes); err != nil {
		return fmt.Errorf("PHYSICAL_BOTTOM_LEFT/PHYSICAL_TOP_RIGHT: %w", err)
	}
	return nil
}

// SprayConfig extracts the painter tuning.
func (c *Config) SprayConfig() spray.Config {
	return spray.Config{
		MaxSprayAngle:    c.MaxSprayAngle,
		FadeOutAngle:     c.FadeOutAngle,
		MinSplashRadius:  c.MinSplashRadius,
		MaxSplashRadius:  c.MaxSplashRadius,
		RaysPerTick:      c.RaysPerTick,
		TriggerThreshold: c.TriggerThreshold,
		Color:            c.PaintColor,
	}
}

// StabilizerConfig extracts the stabilizer tuning.
func (c *Config) StabilizerConfig() stabilizer.Config {
	return stabilizer.Config{
		PositionWindow:  c.PositionWindowSize,
		RotationWindow:  c.RotationWindowSize,
		PositionFilter:  c.PositionFilter,
		RotationAverage: c.RotationAverage,
		Q:               c.FilterQ,
		R:               c.FilterR,
	}
}

// ReferenceFrame is the reference frame in use before the first
// calibration.
func (c *Config) ReferenceFrame() remap.ReferenceFrame {
	return remap.ReferenceFrame{
		BottomLeftPhysical: c.PhysicalBottomLeft,
		TopRightPhysical:   c.PhysicalTopRight,
		BottomLeftVirtual:  c.VirtualBottomLeft,
		TopRightVirtual:    c.VirtualTopRight,
	}
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// parseVec reads "x,y,z".
func parseVec(key, value string) (r3.Vec, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("%s must be x,y,z, got %q", key, value)
	}
	var xyz [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		xyz[i] = v
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseColor reads "#RRGGBB" or "#RRGGBBAA".
func parseColor(key, value string) (color.RGBA, error) {
	s := strings.TrimPrefix(value, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("%s must be #RRGGBB or #RRGGBBAA, got %q", key, value)
	}
	if len(s) == 6 {
		s += "FF"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
