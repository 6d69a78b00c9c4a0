// Package bridge contains the camera-to-device pipeline: the connection
// supervisor that keeps one camera stream alive, the format negotiator that
// readies the output device from the live stream, and the relay that moves
// frames between them.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/camlink/internal/camera"
	"github.com/smazurov/camlink/internal/config"
	"github.com/smazurov/camlink/internal/events"
	"github.com/smazurov/camlink/internal/sink"
)

// SupervisorOptions configure one stream pipeline.
type SupervisorOptions struct {
	Camera   config.Camera
	Connect  camera.Connector
	Sink     FrameSink
	Bus      *events.Bus      // optional
	Recorder DeliveryRecorder // optional
	Logger   *slog.Logger

	// MinBackoff and MaxBackoff override the 1s..15s retry bounds; used by
	// tests.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// Supervisor runs the connect/stream/retry loop for one (camera, role)
// pair. All of its state is owned by the single goroutine running Run.
type Supervisor struct {
	cam     config.Camera
	target  camera.Target
	connect camera.Connector
	sink    FrameSink
	bus     *events.Bus
	rec     DeliveryRecorder
	logger  *slog.Logger
	backoff backoff
}

// NewSupervisor creates a supervisor. It does not connect anything yet.
func NewSupervisor(opts SupervisorOptions) *Supervisor {
	rec := opts.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		cam:     opts.Camera,
		target:  opts.Camera.Target(),
		connect: opts.Connect,
		sink:    opts.Sink,
		bus:     opts.Bus,
		rec:     rec,
		logger:  logger.With("camera", opts.Camera.Name, "role", string(opts.Camera.VideoStream)),
		backoff: newBackoff(opts.MinBackoff, opts.MaxBackoff),
	}
}

// Run streams until the context ends or the failure is permanent. Every
// transient failure sleeps the current backoff and reconnects; there is no
// attempt cap, because an unreachable camera is expected to come back.
// Authentication rejection and fatal sink errors are returned to the
// caller.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		connected, err := s.streamOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// An attempt that authenticated proves the camera was reachable and
		// the credentials are good; a drop after that deserves a prompt
		// retry rather than an inherited long delay.
		if connected {
			s.backoff.Reset()
		}

		if errors.Is(err, camera.ErrAuthRejected) {
			s.logger.Error("Authentication failed to camera, not retrying", "error", err)
			s.publish(events.StreamAuthFailedEvent{Camera: s.cam.Name, Role: string(s.cam.VideoStream)})
			return err
		}
		if IsFatal(err) {
			s.logger.Error("Giving up stream", "error", err)
			return err
		}

		delay := s.backoff.Next()
		s.logger.Error("Error streaming from camera, will retry",
			"backoff", delay, "error", err)
		s.publish(events.StreamDisconnectedEvent{
			Camera:  s.cam.Name,
			Role:    string(s.cam.VideoStream),
			Error:   err.Error(),
			Backoff: delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// streamOnce runs a single connection attempt to completion. connected
// reports whether the attempt passed authentication before failing.
func (s *Supervisor) streamOnce(ctx context.Context) (connected bool, err error) {
	s.logger.Info("Connecting to camera", "address", s.target.Address, "channel", s.target.Channel)

	sess, err := s.connect(ctx, s.target)
	if err != nil {
		return false, fmt.Errorf("failed to connect to camera %s: %w", s.cam.Name, err)
	}
	defer sess.Close()

	s.logger.Info("Connected and logged in")
	s.publish(events.StreamConnectedEvent{Camera: s.cam.Name, Role: string(s.cam.VideoStream)})

	if s.cam.Manages() {
		s.manageCamera(ctx, sess)
	}

	s.logger.Info("Starting video stream", "stream", s.cam.VideoStream.DisplayName())

	neg := newNegotiator(s.sink, func(f sink.Format) {
		s.publish(events.FormatCommittedEvent{
			Camera: s.cam.Name,
			Role:   string(s.cam.VideoStream),
			Width:  f.Width,
			Height: f.Height,
			FPS:    f.FPS,
			Codec:  f.Codec.String(),
		})
	})
	if err := neg.bootstrap(ctx, sess); err != nil {
		return true, err
	}
	return true, relay(ctx, sess, neg, s.sink, s.rec, s.cam.Name, string(s.cam.VideoStream))
}

// manageCamera performs the one-time camera housekeeping: sync the clock if
// unset and log the firmware version. Nothing here may abort the stream;
// failures are only logged.
func (s *Supervisor) manageCamera(ctx context.Context, sess camera.Session) {
	camTime, err := sess.Clock(ctx)
	switch {
	case err != nil:
		s.logger.Warn("Failed to read camera time", "error", err)
	case camTime != nil:
		s.logger.Info("Camera time is already set", "time", camTime)
	default:
		newTime := localNow()
		s.logger.Warn("Camera has no time set, setting it", "time", newTime)
		if err := sess.SetClock(ctx, newTime); err != nil {
			s.logger.Warn("Failed to set camera time", "error", err)
			break
		}
		camTime, err = sess.Clock(ctx)
		switch {
		case err != nil:
			s.logger.Warn("Failed to read back camera time", "error", err)
		case camTime != nil:
			s.logger.Info("Camera time is now set", "time", camTime)
		default:
			s.logger.Error("Camera did not accept new time (is the user an admin?)",
				"username", s.target.Username)
		}
	}

	if firmware, err := sess.Firmware(ctx); err == nil {
		s.logger.Info("Camera reports firmware version", "firmware", firmware)
	} else {
		s.logger.Info("Could not fetch version information", "error", err)
	}
}

// localNow prefers a timezone-aware local time and falls back to UTC when
// no zone data is available.
func localNow() time.Time {
	loc, err := time.LoadLocation("Local")
	if err != nil {
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}

func (s *Supervisor) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}
