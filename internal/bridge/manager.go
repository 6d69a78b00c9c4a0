package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smazurov/camlink/internal/camera"
	"github.com/smazurov/camlink/internal/config"
	"github.com/smazurov/camlink/internal/events"
	"github.com/smazurov/camlink/internal/sink"
)

// OpenSink opens the output device for a camera entry. Injectable so tests
// can run pipelines without /dev/video nodes.
type OpenSink func(index int, logger *slog.Logger) (FrameSink, error)

// ManagerOptions configure the pipeline manager.
type ManagerOptions struct {
	Connect  camera.Connector
	OpenSink OpenSink // nil means sink.Open
	Bus      *events.Bus
	Recorder DeliveryRecorder
	Logger   *slog.Logger
}

// Manager owns one pipeline goroutine per configured camera entry and
// reconciles the running set against configuration reloads.
type Manager struct {
	connect  camera.Connector
	openSink OpenSink
	bus      *events.Bus
	rec      DeliveryRecorder
	logger   *slog.Logger

	mu        sync.Mutex
	pipelines map[string]*pipeline
	wg        sync.WaitGroup
	ctx       context.Context
}

// pipeline is one running camera-to-device stream.
type pipeline struct {
	cam    config.Camera
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a manager with no pipelines running.
func NewManager(opts ManagerOptions) *Manager {
	open := opts.OpenSink
	if open == nil {
		open = func(index int, logger *slog.Logger) (FrameSink, error) {
			return sink.Open(index, logger)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		connect:   opts.Connect,
		openSink:  open,
		bus:       opts.Bus,
		rec:       opts.Recorder,
		logger:    logger,
		pipelines: make(map[string]*pipeline),
	}
}

// Run starts pipelines for the initial configuration and blocks until the
// context ends and all pipelines have stopped.
func (m *Manager) Run(ctx context.Context, cfg *config.Config) error {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()

	m.Reload(cfg)

	<-ctx.Done()
	m.mu.Lock()
	for _, p := range m.pipelines {
		p.cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
	return ctx.Err()
}

// Reload reconciles running pipelines against a new configuration. Entries
// that are unchanged keep their pipeline, including whatever backoff state
// it has accumulated; removed or modified entries are stopped, and new or
// modified entries are started fresh.
func (m *Manager) Reload(cfg *config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil || m.ctx.Err() != nil {
		return
	}

	want := make(map[string]config.Camera, len(cfg.Cameras))
	for _, cam := range cfg.Cameras {
		want[cam.Name] = cam
	}

	for name, p := range m.pipelines {
		cam, keep := want[name]
		if keep && cam == p.cam {
			continue
		}
		if keep {
			m.logger.Info("Camera configuration changed, restarting stream", "camera", name)
		} else {
			m.logger.Info("Camera removed from configuration, stopping stream", "camera", name)
		}
		p.cancel()
		<-p.done
		delete(m.pipelines, name)
	}

	for name, cam := range want {
		if _, running := m.pipelines[name]; running {
			continue
		}
		m.start(cam)
	}
}

// start launches one pipeline goroutine. Caller holds m.mu.
func (m *Manager) start(cam config.Camera) {
	ctx, cancel := context.WithCancel(m.ctx)
	p := &pipeline{cam: cam, cancel: cancel, done: make(chan struct{})}
	m.pipelines[cam.Name] = p

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(p.done)
		if err := m.runPipeline(ctx, cam); err != nil && ctx.Err() == nil {
			m.logger.Error("Stream stopped permanently",
				"camera", cam.Name, "role", string(cam.VideoStream), "error", err)
		}
	}()
}

// runPipeline opens the entry's output device and supervises the stream on
// it until the pipeline context ends or the failure is permanent.
func (m *Manager) runPipeline(ctx context.Context, cam config.Camera) error {
	fs, err := m.openSink(cam.VideoDevice, m.logger)
	if err != nil {
		return fmt.Errorf("failed to open output device %d: %w", cam.VideoDevice, err)
	}
	if c, ok := fs.(interface{ Close() error }); ok {
		defer c.Close()
	}

	sup := NewSupervisor(SupervisorOptions{
		Camera:   cam,
		Connect:  m.connect,
		Sink:     fs,
		Bus:      m.bus,
		Recorder: m.rec,
		Logger:   m.logger,
	})
	return sup.Run(ctx)
}
