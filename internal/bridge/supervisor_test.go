package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"github.com/smazurov/camlink/internal/camera"
	"github.com/smazurov/camlink/internal/config"
	"github.com/smazurov/camlink/internal/media"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCamera() config.Camera {
	return config.Camera{
		Name:        "front",
		Address:     "192.168.1.10",
		Username:    "admin",
		Stream:      config.RoleMain,
		VideoStream: config.RoleMain,
	}
}

func fastOptions(cam config.Camera, connect camera.Connector, fs FrameSink) SupervisorOptions {
	return SupervisorOptions{
		Camera:     cam,
		Connect:    connect,
		Sink:       fs,
		Logger:     testLogger(),
		MinBackoff: time.Millisecond,
		MaxBackoff: 4 * time.Millisecond,
	}
}

func TestSupervisor_AuthRejectionIsTerminal(t *testing.T) {
	attempts := 0
	connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
		attempts++
		return nil, camera.ErrAuthRejected
	}

	sup := NewSupervisor(fastOptions(testCamera(), connect, &fakeSink{}))
	err := sup.Run(context.Background())
	if !errors.Is(err, camera.ErrAuthRejected) {
		t.Fatalf("got %v, want ErrAuthRejected", err)
	}
	if attempts != 1 {
		t.Errorf("made %d attempts, want 1", attempts)
	}
}

func TestSupervisor_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return nil, camera.ErrAuthRejected
	}

	sup := NewSupervisor(fastOptions(testCamera(), connect, &fakeSink{}))
	err := sup.Run(context.Background())
	if !errors.Is(err, camera.ErrAuthRejected) {
		t.Fatalf("got %v, want ErrAuthRejected after retries", err)
	}
	if attempts != 3 {
		t.Errorf("made %d attempts, want 3", attempts)
	}
}

func TestSupervisor_FatalSinkErrorStopsRetrying(t *testing.T) {
	attempts := 0
	connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
		attempts++
		return &scriptedSession{units: []media.Unit{
			media.DescriptorV2{Width: 1920, Height: 1080, FPS: 30},
			media.Keyframe{Codec: media.CodecH264, Payload: []byte{1}},
		}, err: io.EOF}, nil
	}

	fs := &fakeSink{applyErr: &FatalError{Err: errors.New("device disappeared")}}
	sup := NewSupervisor(fastOptions(testCamera(), connect, fs))
	err := sup.Run(context.Background())
	if !IsFatal(err) {
		t.Fatalf("got %v, want fatal error", err)
	}
	if attempts != 1 {
		t.Errorf("made %d attempts, want 1", attempts)
	}
}

func TestSupervisor_RetriesWhenDeviceRejectsFormat(t *testing.T) {
	attempts := 0
	connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
		attempts++
		if attempts < 3 {
			return &scriptedSession{units: []media.Unit{
				media.DescriptorV2{Width: 1920, Height: 1080, FPS: 30},
				media.Keyframe{Codec: media.CodecH264, Payload: []byte{1}},
			}, err: io.EOF}, nil
		}
		return nil, camera.ErrAuthRejected
	}

	// A format the device refuses is an ordinary failure: reconnect with
	// backoff, because the camera may declare different geometry next time.
	fs := &fakeSink{applyErr: errors.New("invalid argument")}
	sup := NewSupervisor(fastOptions(testCamera(), connect, fs))
	err := sup.Run(context.Background())
	if !errors.Is(err, camera.ErrAuthRejected) {
		t.Fatalf("got %v, want ErrAuthRejected after retries", err)
	}
	if attempts != 3 {
		t.Errorf("made %d attempts, want 3", attempts)
	}
}

func TestSupervisor_LostDeviceIsFatal(t *testing.T) {
	attempts := 0
	connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
		attempts++
		return &scriptedSession{units: []media.Unit{
			media.DescriptorV2{Width: 1920, Height: 1080, FPS: 30},
			media.Keyframe{Codec: media.CodecH264, Payload: []byte{1}},
			media.Keyframe{Codec: media.CodecH264, Payload: []byte{2}},
		}, err: io.EOF}, nil
	}

	fs := &fakeSink{deliverErr: syscall.ENODEV}
	sup := NewSupervisor(fastOptions(testCamera(), connect, fs))
	err := sup.Run(context.Background())
	if !IsFatal(err) {
		t.Fatalf("got %v, want fatal error", err)
	}
	if !errors.Is(err, syscall.ENODEV) {
		t.Errorf("got %v, want ENODEV in chain", err)
	}
	if attempts != 1 {
		t.Errorf("made %d attempts, want 1", attempts)
	}
}

func TestSupervisor_BackoffResetRequiresAuthenticatedAttempt(t *testing.T) {
	t.Run("never connected keeps doubling", func(t *testing.T) {
		attempts := 0
		connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("connection refused")
			}
			return nil, camera.ErrAuthRejected
		}

		sup := NewSupervisor(fastOptions(testCamera(), connect, &fakeSink{}))
		sup.Run(context.Background())

		// Two failed attempts slept 1ms then 2ms; the stored delay doubled
		// past both.
		if got := sup.backoff.cur; got != 4*time.Millisecond {
			t.Errorf("stored delay = %v, want 4ms after two unauthenticated failures", got)
		}
	})

	t.Run("connected then dropped retries at minimum", func(t *testing.T) {
		attempts := 0
		connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
			attempts++
			if attempts < 3 {
				return &scriptedSession{err: io.EOF}, nil
			}
			return nil, camera.ErrAuthRejected
		}

		sup := NewSupervisor(fastOptions(testCamera(), connect, &fakeSink{}))
		sup.Run(context.Background())

		// Each drop happened after login, so the delay was reset to 1ms
		// before doubling; it never climbed.
		if got := sup.backoff.cur; got != 2*time.Millisecond {
			t.Errorf("stored delay = %v, want 2ms after authenticated drops", got)
		}
	})
}

func TestSupervisor_ContextCancelStopsLoop(t *testing.T) {
	connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
		return nil, errors.New("host unreachable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(fastOptions(testCamera(), connect, &fakeSink{}))

	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancel")
	}
}

// manageSession tracks clock management calls.
type manageSession struct {
	scriptedSession
	clock    *time.Time
	setClock []time.Time
	firmware int
}

func (s *manageSession) Clock(_ context.Context) (*time.Time, error) { return s.clock, nil }

func (s *manageSession) SetClock(_ context.Context, at time.Time) error {
	s.setClock = append(s.setClock, at)
	s.clock = &at
	return nil
}

func (s *manageSession) Firmware(_ context.Context) (string, error) {
	s.firmware++
	return "1.0.0", nil
}

func TestSupervisor_ManagingPipelineSetsUnsetClock(t *testing.T) {
	sess := &manageSession{scriptedSession: scriptedSession{err: io.EOF}}
	connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
		return sess, nil
	}

	sup := NewSupervisor(fastOptions(testCamera(), connect, &fakeSink{}))
	sup.streamOnce(context.Background())

	if len(sess.setClock) != 1 {
		t.Errorf("SetClock called %d times, want 1", len(sess.setClock))
	}
	if sess.firmware != 1 {
		t.Errorf("Firmware called %d times, want 1", sess.firmware)
	}
}

func TestSupervisor_NonManagingPipelineLeavesCameraAlone(t *testing.T) {
	cam := testCamera()
	cam.VideoStream = config.RoleSub // primary stream stays mainStream

	sess := &manageSession{scriptedSession: scriptedSession{err: io.EOF}}
	connect := func(_ context.Context, _ camera.Target) (camera.Session, error) {
		return sess, nil
	}

	sup := NewSupervisor(fastOptions(cam, connect, &fakeSink{}))
	sup.streamOnce(context.Background())

	if len(sess.setClock) != 0 {
		t.Errorf("SetClock called %d times, want 0", len(sess.setClock))
	}
	if sess.firmware != 0 {
		t.Errorf("Firmware called %d times, want 0", sess.firmware)
	}
}
