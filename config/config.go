// Package config loads the quarkxr configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"quarkxr/scene"
	"quarkxr/telemetry"
)

// Config is the application configuration.
type Config struct {
	Host      HostConfig       `yaml:"host"`
	Runtime   RuntimeConfig    `yaml:"runtime"`
	Tracking  TrackingConfig   `yaml:"tracking"`
	Scene     SceneConfig      `yaml:"scene"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// HostConfig configures the window and headless runners.
type HostConfig struct {
	// Hz is the tick rate in headless mode.
	Hz int `yaml:"hz" validate:"gte=1,lte=1000"`
	// Ticks stops a headless run after N ticks (0 = run forever).
	Ticks uint64 `yaml:"ticks"`
	// Scale multiplies the logical window size.
	Scale int    `yaml:"scale" validate:"gte=1,lte=8"`
	Title string `yaml:"title"`
}

// RuntimeConfig configures the simulated XR runtime.
type RuntimeConfig struct {
	Name         string `yaml:"name" validate:"required"`
	RefreshHz    int    `yaml:"refresh_hz" validate:"gte=1,lte=240"`
	WarmupFrames uint64 `yaml:"warmup_frames"`
	// Lockstep drives one runtime frame per tick instead of a free-running driver.
	Lockstep bool `yaml:"lockstep"`
	// Script replays a pose script instead of the built-in motion.
	Script string `yaml:"script"`
	// Watch reloads Script when the file changes.
	Watch  bool         `yaml:"watch"`
	Motion MotionConfig `yaml:"motion"`
}

// MotionConfig parameterizes the built-in motion.
type MotionConfig struct {
	Radius        float64       `yaml:"radius" validate:"gte=0"`
	Height        float64       `yaml:"height"`
	HeadHeight    float64       `yaml:"head_height"`
	Period        time.Duration `yaml:"period" validate:"gt=0"`
	DropEvery     uint64        `yaml:"drop_every"`
	EyeSeparation float64       `yaml:"eye_separation" validate:"gte=0"`
}

// TrackingConfig selects the roles that are synchronized.
type TrackingConfig struct {
	Roles []string `yaml:"roles" validate:"dive,oneof=left_controller right_controller hmd left_eye right_eye"`
	// HMD spawns a head proxy and syncs the hmd role.
	HMD bool `yaml:"hmd"`
}

// SceneConfig describes the demo scene.
type SceneConfig struct {
	GridWidth   int     `yaml:"grid_width" validate:"gte=0,lte=64"`
	GridHeight  int     `yaml:"grid_height" validate:"gte=0,lte=64"`
	CubeSize    float64 `yaml:"cube_size" validate:"gt=0"`
	Controllers bool    `yaml:"controllers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Host: HostConfig{Hz: 60, Scale: 2, Title: "quarkxr"},
		Runtime: RuntimeConfig{
			Name:         "quarkxr-sim",
			RefreshHz:    72,
			WarmupFrames: 3,
			Motion: MotionConfig{
				Radius:        0.15,
				Height:        1.1,
				HeadHeight:    1.6,
				Period:        4 * time.Second,
				EyeSeparation: 0.064,
			},
		},
		Tracking: TrackingConfig{
			Roles: []string{"left_controller", "right_controller"},
			HMD:   true,
		},
		Scene: SceneConfig{
			GridWidth:   4,
			GridHeight:  4,
			CubeSize:    0.25,
			Controllers: true,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

var validate = validator.New()

// Load reads path over the defaults and validates the result. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Roles returns the synchronized roles. The hmd role is added when HMD is set.
func (c *Config) Roles() ([]scene.Role, error) {
	var roles []scene.Role
	seen := make(map[scene.Role]bool)
	add := func(r scene.Role) {
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	for _, name := range c.Tracking.Roles {
		r, err := scene.ParseRole(name)
		if err != nil {
			return nil, err
		}
		add(r)
	}
	if c.Tracking.HMD {
		add(scene.RoleHMD)
	}
	return roles, nil
}
