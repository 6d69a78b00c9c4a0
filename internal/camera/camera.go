// Package camera defines the session boundary to the camera's proprietary
// protocol. The bridge consumes sessions as opaque unit streams; the
// protocol client behind a session is interchangeable, and the replay
// subpackage provides a file-backed implementation for development and tests.
package camera

import (
	"context"
	"errors"
	"time"

	"github.com/smazurov/camlink/internal/media"
)

// ErrAuthRejected reports that the camera rejected the configured
// credentials. Connectors and sessions wrap it into their errors; callers
// test for it with errors.Is. It is the only permanent connection failure.
var ErrAuthRejected = errors.New("camera rejected credentials")

// Target addresses one camera stream: where to connect, how to
// authenticate, and which of the camera's streams to request.
type Target struct {
	Name     string
	Address  string
	UID      string
	Channel  uint8
	Username string
	Password string
	Stream   string // mainStream, subStream or externStream

	// ReplayPath, when set, selects the file replay transport instead of a
	// live camera connection.
	ReplayPath string
}

// Session is one authenticated connection to a camera, yielding a lazy,
// unbounded sequence of media units. A session is owned by exactly one
// goroutine and is not reused after an error.
type Session interface {
	// NextUnit blocks until the next unit arrives, the stream fails, or ctx
	// is done.
	NextUnit(ctx context.Context) (media.Unit, error)

	// Clock reports the camera's wall clock, or nil when the camera has no
	// time set.
	Clock(ctx context.Context) (*time.Time, error)

	// SetClock sets the camera's wall clock.
	SetClock(ctx context.Context, t time.Time) error

	// Firmware reports the camera's firmware version string.
	Firmware(ctx context.Context) (string, error)

	Close() error
}

// Connector opens and authenticates a session for a target. A failed login
// must return an error wrapping ErrAuthRejected; every other failure is
// treated as transient by the caller.
type Connector func(ctx context.Context, target Target) (Session, error)
