package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for errors that would make a pipeline
// unsafe to start. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Cameras) == 0 {
		errs = append(errs, errors.New("no cameras configured"))
	}

	names := make(map[string]bool)
	devices := make(map[int]string)

	for i, cam := range c.Cameras {
		label := cam.Name
		if label == "" {
			label = fmt.Sprintf("cameras[%d]", i)
			errs = append(errs, fmt.Errorf("%s: missing name", label))
		}
		if names[cam.Name] && cam.Name != "" {
			errs = append(errs, fmt.Errorf("%s: duplicate camera name", label))
		}
		names[cam.Name] = true

		if cam.Address == "" && cam.UID == "" && cam.ReplayFile == "" {
			errs = append(errs, fmt.Errorf("%s: needs an address, a uid, or a replay_file", label))
		}
		if cam.ReplayFile == "" && cam.Username == "" {
			errs = append(errs, fmt.Errorf("%s: missing username", label))
		}
		if !cam.Stream.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown stream %q", label, cam.Stream))
		}
		if !cam.VideoStream.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown v4l_stream %q", label, cam.VideoStream))
		}
		if cam.VideoDevice < 0 {
			errs = append(errs, fmt.Errorf("%s: negative v4l_device index", label))
		}

		// The output device binding is exclusive; two pipelines writing one
		// device would corrupt each other's format negotiation.
		if owner, taken := devices[cam.VideoDevice]; taken {
			errs = append(errs, fmt.Errorf("%s: v4l_device %d already used by %s",
				label, cam.VideoDevice, owner))
		} else {
			devices[cam.VideoDevice] = label
		}
	}

	return errors.Join(errs...)
}

// Warnings returns non-fatal findings worth surfacing at startup.
func (c *Config) Warnings() []string {
	var warnings []string
	for _, cam := range c.Cameras {
		if cam.Format != "" {
			warnings = append(warnings,
				fmt.Sprintf("%s: the format option has been removed in favour of auto detection", cam.Name))
		}
		if cam.ReplayFile == "" && cam.Password == "" {
			warnings = append(warnings,
				fmt.Sprintf("%s: no password set, connecting unauthenticated", cam.Name))
		}
	}
	return warnings
}
