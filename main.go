package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/camlink/cmd"
	"github.com/smazurov/camlink/internal/bridge"
	"github.com/smazurov/camlink/internal/camera"
	"github.com/smazurov/camlink/internal/camera/replay"
	"github.com/smazurov/camlink/internal/config"
	"github.com/smazurov/camlink/internal/events"
	"github.com/smazurov/camlink/internal/logging"
	"github.com/smazurov/camlink/internal/metrics"
	"github.com/smazurov/camlink/internal/version"
)

// Options for the CLI.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"camlink.toml"`

	// Metrics settings
	MetricsEnabled bool   `help:"Serve Prometheus metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`
	MetricsListen  string `help:"Metrics listen address" default:":9157" toml:"metrics.listen" env:"METRICS_LISTEN"`

	// Replay settings
	ReplayInterval string `help:"Frame pacing for replay transports (e.g. 33ms)" default:"0s" toml:"replay.interval" env:"REPLAY_INTERVAL"`
	ReplayLoop     bool   `help:"Loop replay files at end of stream" default:"true" toml:"replay.loop" env:"REPLAY_LOOP"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingBridge string `help:"Bridge logging level" default:"info" toml:"logging.bridge" env:"LOGGING_BRIDGE"`
	LoggingSink   string `help:"Sink logging level" default:"info" toml:"logging.sink" env:"LOGGING_SINK"`
	LoggingConfig string `help:"Config logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

// connector builds the transport dispatcher: entries with a replay file use
// the file transport, everything else needs a camera protocol plugin.
func connector(opts *Options) camera.Connector {
	interval, err := time.ParseDuration(opts.ReplayInterval)
	if err != nil {
		interval = 0
	}
	replayConnect := replay.Connector(replay.Options{
		Interval: interval,
		Loop:     opts.ReplayLoop,
	})
	return func(ctx context.Context, target camera.Target) (camera.Session, error) {
		if target.ReplayPath != "" {
			return replayConnect(ctx, target)
		}
		return nil, fmt.Errorf("no transport for camera %s: set replay_file or build with a protocol plugin", target.Name)
	}
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"bridge": opts.LoggingBridge,
				"sink":   opts.LoggingSink,
				"config": opts.LoggingConfig,
			},
		})

		logger := logging.GetLogger("main")
		logger.Info("Starting camlink", "version", version.String(), "commit", version.GitCommit, "built", version.BuildDate)

		cfg, err := config.Load(opts.Config)
		if err != nil {
			logger.Error("Failed to load config", "path", opts.Config, "error", err)
			os.Exit(1)
		}
		for _, w := range cfg.Warnings() {
			logger.Warn(w)
		}
		if err := cfg.Validate(); err != nil {
			logger.Error("Invalid configuration", "error", err)
			os.Exit(1)
		}

		eventBus := events.New()
		detachMetrics := metrics.Attach(eventBus)

		var metricsServer *metrics.Server
		if opts.MetricsEnabled {
			metricsServer = metrics.NewServer(opts.MetricsListen, logging.GetLogger("metrics"))
		}

		manager := bridge.NewManager(bridge.ManagerOptions{
			Connect:  connector(opts),
			Bus:      eventBus,
			Recorder: metrics.Recorder{},
			Logger:   logging.GetLogger("bridge"),
		})

		watcher := config.NewWatcher(opts.Config, logging.GetLogger("config"))
		watcher.OnReload(manager.Reload)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		hooks.OnStart(func() {
			if metricsServer != nil {
				metricsServer.Start()
			}
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher unavailable, reload disabled", "error", watchErr)
			}

			// Tell systemd we are up; a no-op outside a unit.
			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Debug("sd_notify failed", "error", notifyErr)
			}

			go func() {
				defer close(done)
				if runErr := manager.Run(ctx, cfg); runErr != nil && ctx.Err() == nil {
					logger.Error("Pipeline manager stopped", "error", runErr)
				}
			}()
			<-done
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyStopping); notifyErr != nil {
				logger.Debug("sd_notify failed", "error", notifyErr)
			}

			cancel()
			<-done

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			if metricsServer != nil {
				if stopErr := metricsServer.Stop(); stopErr != nil {
					logger.Warn("Error stopping metrics server", "error", stopErr)
				}
			}
			detachMetrics()
		})
	})

	cli.Root().Use = "camlink"
	cli.Root().Version = version.String()

	cli.Root().AddCommand(cmd.CreateValidateCmd())
	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
