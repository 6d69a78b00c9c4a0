package bridge

import (
	"context"
	"fmt"

	"github.com/smazurov/camlink/internal/camera"
	"github.com/smazurov/camlink/internal/media"
	"github.com/smazurov/camlink/internal/sink"
)

// FrameSink is the slice of the output sink the bridge drives. Satisfied by
// *sink.Sink.
type FrameSink interface {
	Apply(f sink.Format) error
	Deliver(codec media.Codec, payload []byte) error
}

// bootstrapBudget is how many leading units the negotiator will consume
// while waiting for geometry, frame rate, and codec to all become known.
// Cameras announce a descriptor and a keyframe within the first few units;
// a stream that hasn't by now never will.
const bootstrapBudget = 10

// negotiator accumulates format knowledge from the unit stream and commits
// it to the sink. The sink's device cannot accept frames until width,
// height, fps, and codec are all known, and cannot change geometry without
// being torn down, so the negotiator applies eagerly once complete and
// re-applies whenever a live stream contradicts the committed format.
type negotiator struct {
	sink FrameSink

	width  uint32
	height uint32
	fps    uint8

	codec      media.Codec
	codecKnown bool

	applied    sink.Format
	appliedSet bool

	onCommit func(sink.Format)
}

func newNegotiator(s FrameSink, onCommit func(sink.Format)) *negotiator {
	return &negotiator{sink: s, onCommit: onCommit}
}

func (n *negotiator) complete() bool {
	return n.width != 0 && n.height != 0 && n.fps != 0 && n.codecKnown
}

// observe folds one unit into the format state and re-commits the sink
// format when the unit changed a known-complete picture. Frame payloads are
// not delivered here; delivery stays with the relay.
func (n *negotiator) observe(u media.Unit) error {
	switch u := u.(type) {
	case media.DescriptorV1:
		n.setGeometry(u.Width, u.Height, u.FPS)
	case media.DescriptorV2:
		n.setGeometry(u.Width, u.Height, u.FPS)
	case media.Keyframe:
		n.setCodec(u.Codec)
	case media.Deltaframe:
		n.setCodec(u.Codec)
	default:
		return nil
	}
	return n.apply()
}

func (n *negotiator) setGeometry(width, height uint32, fps uint8) {
	n.width = width
	n.height = height
	n.fps = fps
}

func (n *negotiator) setCodec(c media.Codec) {
	n.codec = c
	n.codecKnown = true
}

// apply commits the current format once it is complete. Units that repeat
// already-known values are a no-op.
func (n *negotiator) apply() error {
	if !n.complete() {
		return nil
	}
	f := sink.Format{Width: n.width, Height: n.height, FPS: n.fps, Codec: n.codec}
	if n.appliedSet && f == n.applied {
		return nil
	}
	// A rejected format takes the normal retry path: the camera's declared
	// geometry can change between attempts. Only a vanished device is
	// permanent.
	if err := n.sink.Apply(f); err != nil {
		return classifyDeviceError(fmt.Errorf("failed to configure output device for %s: %w", f, err))
	}
	n.applied = f
	n.appliedSet = true
	if n.onCommit != nil {
		n.onCommit(f)
	}
	return nil
}

// bootstrap consumes the leading units of a fresh session until the format
// is fully known. The device cannot exist before this finishes, so frames
// seen here are sacrificed to learn the codec; the visible stream starts
// with the next keyframe.
func (n *negotiator) bootstrap(ctx context.Context, sess camera.Session) error {
	for seen := 0; !n.complete() && seen < bootstrapBudget; seen++ {
		u, err := sess.NextUnit(ctx)
		if err != nil {
			return fmt.Errorf("stream failed during format bootstrap: %w", err)
		}
		if err := n.observe(u); err != nil {
			return err
		}
	}
	if !n.complete() {
		return fmt.Errorf("%w after %d units", ErrBootstrapExhausted, bootstrapBudget)
	}
	return nil
}
