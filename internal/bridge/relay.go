package bridge

import (
	"context"

	"github.com/smazurov/camlink/internal/camera"
	"github.com/smazurov/camlink/internal/media"
)

// DeliveryRecorder observes per-unit relay activity. Satisfied by
// metrics.Recorder.
type DeliveryRecorder interface {
	FrameDelivered(camera, role string, n int)
	UnitDropped(camera, role string)
}

// nopRecorder keeps the relay unconditional when no recorder is wired.
type nopRecorder struct{}

func (nopRecorder) FrameDelivered(string, string, int) {}
func (nopRecorder) UnitDropped(string, string)         {}

// relay is the steady-state pump: units flow from the session to the sink
// in arrival order, one at a time. Descriptors and codec changes go through
// the negotiator so the device is reconfigured before the next write; audio
// and metadata are dropped. Returns only when the session or a delivery
// fails.
func relay(ctx context.Context, sess camera.Session, neg *negotiator, s FrameSink,
	rec DeliveryRecorder, cameraName, role string) error {
	for {
		u, err := sess.NextUnit(ctx)
		if err != nil {
			return err
		}

		switch u := u.(type) {
		case media.Keyframe:
			if err := neg.observe(u); err != nil {
				return err
			}
			if err := s.Deliver(u.Codec, u.Payload); err != nil {
				return classifyDeviceError(err)
			}
			rec.FrameDelivered(cameraName, role, len(u.Payload))
		case media.Deltaframe:
			if err := neg.observe(u); err != nil {
				return err
			}
			if err := s.Deliver(u.Codec, u.Payload); err != nil {
				return classifyDeviceError(err)
			}
			rec.FrameDelivered(cameraName, role, len(u.Payload))
		case media.DescriptorV1, media.DescriptorV2:
			if err := neg.observe(u); err != nil {
				return err
			}
		default:
			rec.UnitDropped(cameraName, role)
		}
	}
}
