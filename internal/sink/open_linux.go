//go:build linux

package sink

import (
	"log/slog"

	"github.com/smazurov/camlink/internal/v4l2"
)

// Open binds a sink to /dev/video<index>. The binding is exclusive; config
// validation guarantees no two pipelines share a device index.
func Open(index int, logger *slog.Logger) (*Sink, error) {
	dev, err := v4l2.OpenOutput(index)
	if err != nil {
		return nil, err
	}
	return New(dev, logger), nil
}
