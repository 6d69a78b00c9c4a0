// Package config loads and validates the camlink configuration file: the
// daemon-level settings plus one entry per bridged camera stream.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/camlink/internal/camera"
)

// Role names one of a camera's streams.
type Role string

// Stream roles a camera offers.
const (
	RoleMain   Role = "mainStream"
	RoleSub    Role = "subStream"
	RoleExtern Role = "externStream"
)

// Valid reports whether the role is one of the known stream roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMain, RoleSub, RoleExtern:
		return true
	}
	return false
}

// DisplayName returns the human-readable stream name used in logs.
func (r Role) DisplayName() string {
	switch r {
	case RoleMain:
		return "Main Stream (Clear)"
	case RoleSub:
		return "Sub Stream (Fluent)"
	case RoleExtern:
		return "Extern Stream (Balanced)"
	default:
		return string(r)
	}
}

// Camera is one bridged camera stream: where the camera is, which stream
// role to pull, and which output device receives it.
type Camera struct {
	Name     string `toml:"name"`
	Address  string `toml:"address"`
	UID      string `toml:"uid"`
	Channel  uint8  `toml:"channel"`
	Username string `toml:"username"`
	Password string `toml:"password"`

	// Stream is the camera's primary stream setting. The pipeline whose
	// role matches it performs one-time camera management (clock sync,
	// firmware query). Defaults to mainStream.
	Stream Role `toml:"stream"`

	// VideoDevice is the /dev/video index this stream feeds. Exclusive to
	// this entry.
	VideoDevice int `toml:"v4l_device"`

	// VideoStream selects which of the camera's streams feeds the device.
	VideoStream Role `toml:"v4l_stream"`

	// ReplayFile switches this entry to the file replay transport.
	ReplayFile string `toml:"replay_file"`

	// Format is the removed manual format override. Parsed only so its
	// presence can be warned about.
	Format string `toml:"format"`
}

// Manages reports whether this entry's pipeline performs one-time camera
// management.
func (c Camera) Manages() bool {
	return c.VideoStream == c.Stream
}

// Target converts the entry to a camera session target.
func (c Camera) Target() camera.Target {
	return camera.Target{
		Name:       c.Name,
		Address:    c.Address,
		UID:        c.UID,
		Channel:    c.Channel,
		Username:   c.Username,
		Password:   c.Password,
		Stream:     string(c.VideoStream),
		ReplayPath: c.ReplayFile,
	}
}

// Config is the camera section of the configuration file.
type Config struct {
	Cameras []Camera `toml:"cameras"`
}

// Load reads and parses the configuration file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for i := range cfg.Cameras {
		if cfg.Cameras[i].Stream == "" {
			cfg.Cameras[i].Stream = RoleMain
		}
		if cfg.Cameras[i].VideoStream == "" {
			cfg.Cameras[i].VideoStream = RoleMain
		}
	}
	return &cfg, nil
}
