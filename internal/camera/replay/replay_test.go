package replay

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/smazurov/camlink/internal/camera"
	"github.com/smazurov/camlink/internal/media"
)

func writeFixture(t *testing.T, units []media.Unit) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream.clr")
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range units {
		if err := w.Append(u); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplay_RoundTrip(t *testing.T) {
	units := []media.Unit{
		media.DescriptorV2{Width: 1920, Height: 1080, FPS: 30},
		media.Keyframe{Codec: media.CodecH264, Payload: []byte{0, 0, 0, 1, 0x65}},
		media.Audio{Payload: []byte{0xFF, 0xF1}},
		media.Deltaframe{Codec: media.CodecH264, Payload: []byte{0, 0, 1, 0x41}},
		media.Metadata{Payload: []byte("motion")},
		media.DescriptorV1{Width: 640, Height: 360, FPS: 15},
	}
	path := writeFixture(t, units)

	s, err := Open(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	for i, want := range units {
		got, err := s.NextUnit(ctx)
		if err != nil {
			t.Fatalf("unit %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("unit %d: got %#v, want %#v", i, got, want)
		}
	}

	if _, err := s.NextUnit(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("after last unit: got %v, want io.EOF", err)
	}
}

func TestReplay_LoopRestartsAtEOF(t *testing.T) {
	units := []media.Unit{
		media.DescriptorV2{Width: 1280, Height: 720, FPS: 25},
		media.Keyframe{Codec: media.CodecH265, Payload: []byte{1, 2, 3}},
	}
	path := writeFixture(t, units)

	s, err := Open(path, Options{Loop: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	for lap := range 3 {
		for i, want := range units {
			got, err := s.NextUnit(ctx)
			if err != nil {
				t.Fatalf("lap %d unit %d: %v", lap, i, err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("lap %d unit %d: got %#v, want %#v", lap, i, got, want)
			}
		}
	}
}

func TestReplay_RejectsWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-replay.toml")
	if err := os.WriteFile(path, []byte("name = \"front\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, Options{}); err == nil {
		t.Fatal("expected error for wrong magic")
	}
}

func TestReplay_CancelledContext(t *testing.T) {
	path := writeFixture(t, []media.Unit{
		media.Keyframe{Codec: media.CodecH264, Payload: []byte{1}},
	})

	s, err := Open(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.NextUnit(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestConnector_RequiresReplayPath(t *testing.T) {
	connect := Connector(Options{})
	if _, err := connect(context.Background(), camera.Target{Name: "front"}); err == nil {
		t.Fatal("expected error for target without replay file")
	}
}

func TestConnector_OpensReplayPath(t *testing.T) {
	path := writeFixture(t, []media.Unit{
		media.DescriptorV2{Width: 640, Height: 480, FPS: 10},
	})

	connect := Connector(Options{})
	sess, err := connect(context.Background(), camera.Target{Name: "front", ReplayPath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()

	if fw, err := sess.Firmware(context.Background()); err != nil || fw == "" {
		t.Errorf("Firmware() = %q, %v", fw, err)
	}
	if clock, err := sess.Clock(context.Background()); err != nil || clock == nil {
		t.Errorf("Clock() = %v, %v; want a set clock", clock, err)
	}
}
