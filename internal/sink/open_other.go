//go:build !linux

package sink

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Open is unavailable off Linux; V4L2 output devices are a Linux interface.
func Open(index int, logger *slog.Logger) (*Sink, error) {
	return nil, fmt.Errorf("v4l2 output is not supported on %s", runtime.GOOS)
}
