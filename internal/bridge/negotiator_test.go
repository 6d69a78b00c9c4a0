package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smazurov/camlink/internal/media"
	"github.com/smazurov/camlink/internal/sink"
)

// fakeSink records Apply and Deliver calls.
type fakeSink struct {
	applied    []sink.Format
	delivered  [][]byte
	applyErr   error
	deliverErr error
}

func (f *fakeSink) Apply(format sink.Format) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, format)
	return nil
}

func (f *fakeSink) Deliver(_ media.Codec, payload []byte) error {
	if f.deliverErr != nil {
		return f.deliverErr
	}
	f.delivered = append(f.delivered, payload)
	return nil
}

// scriptedSession serves a fixed sequence of units, then blocks on the
// context.
type scriptedSession struct {
	units []media.Unit
	pos   int
	err   error
}

func (s *scriptedSession) NextUnit(ctx context.Context) (media.Unit, error) {
	if s.pos >= len(s.units) {
		if s.err != nil {
			return nil, s.err
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	u := s.units[s.pos]
	s.pos++
	return u, nil
}

func (s *scriptedSession) Clock(_ context.Context) (*time.Time, error)   { return nil, nil }
func (s *scriptedSession) SetClock(_ context.Context, _ time.Time) error { return nil }
func (s *scriptedSession) Firmware(_ context.Context) (string, error)    { return "fake", nil }
func (s *scriptedSession) Close() error                                  { return nil }

func TestNegotiator_BootstrapCommitsOnceComplete(t *testing.T) {
	fs := &fakeSink{}
	neg := newNegotiator(fs, nil)
	sess := &scriptedSession{units: []media.Unit{
		media.Audio{Payload: []byte{1}},
		media.DescriptorV2{Width: 1920, Height: 1080, FPS: 30},
		media.Keyframe{Codec: media.CodecH264, Payload: []byte{0, 0, 1}},
	}}

	if err := neg.bootstrap(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	want := sink.Format{Width: 1920, Height: 1080, FPS: 30, Codec: media.CodecH264}
	if len(fs.applied) != 1 || fs.applied[0] != want {
		t.Errorf("applied %v, want exactly [%v]", fs.applied, want)
	}
	if len(fs.delivered) != 0 {
		t.Errorf("bootstrap delivered %d frames, want none", len(fs.delivered))
	}
}

func TestNegotiator_BootstrapBudgetExhausted(t *testing.T) {
	var units []media.Unit
	for range bootstrapBudget + 2 {
		units = append(units, media.Audio{Payload: []byte{1}})
	}
	fs := &fakeSink{}
	neg := newNegotiator(fs, nil)
	sess := &scriptedSession{units: units}

	err := neg.bootstrap(context.Background(), sess)
	if !errors.Is(err, ErrBootstrapExhausted) {
		t.Fatalf("got %v, want ErrBootstrapExhausted", err)
	}
	if sess.pos != bootstrapBudget {
		t.Errorf("consumed %d units, want %d", sess.pos, bootstrapBudget)
	}
	if len(fs.applied) != 0 {
		t.Errorf("applied %v, want nothing", fs.applied)
	}
}

func TestNegotiator_RepeatDescriptorDoesNotReapply(t *testing.T) {
	fs := &fakeSink{}
	neg := newNegotiator(fs, nil)

	units := []media.Unit{
		media.DescriptorV1{Width: 640, Height: 480, FPS: 15},
		media.Keyframe{Codec: media.CodecH265, Payload: []byte{1}},
		media.DescriptorV1{Width: 640, Height: 480, FPS: 15},
		media.Deltaframe{Codec: media.CodecH265, Payload: []byte{2}},
	}
	for _, u := range units {
		if err := neg.observe(u); err != nil {
			t.Fatal(err)
		}
	}

	if len(fs.applied) != 1 {
		t.Errorf("applied %d times, want 1", len(fs.applied))
	}
}

func TestNegotiator_GeometryChangeReapplies(t *testing.T) {
	fs := &fakeSink{}
	var commits []sink.Format
	neg := newNegotiator(fs, func(f sink.Format) { commits = append(commits, f) })

	units := []media.Unit{
		media.DescriptorV2{Width: 1920, Height: 1080, FPS: 30},
		media.Keyframe{Codec: media.CodecH264, Payload: []byte{1}},
		media.DescriptorV2{Width: 640, Height: 360, FPS: 15},
	}
	for _, u := range units {
		if err := neg.observe(u); err != nil {
			t.Fatal(err)
		}
	}

	if len(fs.applied) != 2 {
		t.Fatalf("applied %d times, want 2", len(fs.applied))
	}
	second := sink.Format{Width: 640, Height: 360, FPS: 15, Codec: media.CodecH264}
	if fs.applied[1] != second {
		t.Errorf("second apply %v, want %v", fs.applied[1], second)
	}
	if len(commits) != 2 {
		t.Errorf("got %d commit callbacks, want 2", len(commits))
	}
}

func TestNegotiator_CodecChangeReapplies(t *testing.T) {
	fs := &fakeSink{}
	neg := newNegotiator(fs, nil)

	units := []media.Unit{
		media.DescriptorV2{Width: 1280, Height: 720, FPS: 25},
		media.Keyframe{Codec: media.CodecH264, Payload: []byte{1}},
		media.Keyframe{Codec: media.CodecH265, Payload: []byte{2}},
	}
	for _, u := range units {
		if err := neg.observe(u); err != nil {
			t.Fatal(err)
		}
	}

	if len(fs.applied) != 2 {
		t.Fatalf("applied %d times, want 2", len(fs.applied))
	}
	if fs.applied[1].Codec != media.CodecH265 {
		t.Errorf("second apply codec %v, want H265", fs.applied[1].Codec)
	}
}
