package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/uns-lab/sensorsim/cmd/sensorsim/interactive"
	"github.com/uns-lab/sensorsim/internal/config"
	"github.com/uns-lab/sensorsim/internal/liveness"
	"github.com/uns-lab/sensorsim/pkg/asset"
	"github.com/uns-lab/sensorsim/pkg/discovery"
	caplog "github.com/uns-lab/sensorsim/pkg/log"
	"github.com/uns-lab/sensorsim/pkg/metrics"
	"github.com/uns-lab/sensorsim/pkg/simulation"
	"github.com/uns-lab/sensorsim/pkg/transport"
)

type runOptions struct {
	all         bool
	configPath  string
	envPath     string
	interactive bool
	logLevel    string
	logFormat   string
}

func newRunCommand() *cobra.Command {
	var opts runOptions
	c := &cobra.Command{
		Use:   "run [ASSET]",
		Short: "Simulate one asset, or every asset with --all",
		Long: `Simulate one asset, or every asset with --all.

Each asset publishes its sensor readings every 5 to 10 seconds on
<namespace>/<area>/<asset>/<sensor> until the process is interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var assetID string
			if len(args) > 0 {
				assetID = args[0]
			}
			if assetID != "" && opts.all {
				return errors.New("specify an asset or --all, not both")
			}
			return runSimulation(cmd.Context(), assetID, opts, cmd.ErrOrStderr())
		},
	}

	f := c.Flags()
	f.BoolVar(&opts.all, "all", false, "Simulate every configured asset")
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	f.StringVar(&opts.envPath, "env", ".env", "Environment file (ignored when missing)")
	f.BoolVar(&opts.interactive, "interactive", false, "Start the operator console")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "text", "Log format: text, json")
	return c
}

func runSimulation(ctx context.Context, assetID string, opts runOptions, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts.configPath, opts.envPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	defs, err := cfg.SelectAssets(assetID, opts.all)
	if err != nil {
		if errors.Is(err, asset.ErrNoAssets) || errors.Is(err, asset.ErrUnknownAsset) {
			return fmt.Errorf("%w\navailable assets: %s", err, strings.Join(cfg.Catalog().IDs(), ", "))
		}
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var console *interactive.Console
	var fleet *simulation.Fleet
	logOut := stderr
	if opts.interactive {
		// The console reads fleet status lazily, so the fleet can be set later.
		console, err = interactive.New(statusFunc(func() []simulation.LoopStatus {
			if fleet == nil {
				return nil
			}
			return fleet.Status()
		}))
		if err != nil {
			return err
		}
		// Covers the setup steps below that can fail before Run starts.
		defer console.Close()
		logOut = console.Stdout()
	}

	logger, err := newLogger(logOut, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if cfg.Bus.Host == "" {
		if err := discoverBroker(ctx, cfg, logger); err != nil {
			return err
		}
	}

	capture, closeCapture, err := newCapture(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	var collector metrics.Collector = metrics.NewNop()
	var metricsServer *metrics.Server
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		collector = metrics.NewPrometheus(reg, cfg.Metrics.Namespace)
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, reg, logger)
	}

	qos, err := transport.ParseQoS(cfg.Bus.QoS)
	if err != nil {
		return err
	}

	fleet = simulation.NewFleet(simulation.FleetConfig{
		Assets: defs,
		NewChannel: simulation.NewChannelFactory(simulation.BusConfig{
			Transport:      cfg.TransportOptions(),
			ClientIDPrefix: cfg.Bus.ClientIDPrefix,
			Policy:         cfg.Policy(),
			Backoff:        cfg.Bus.Backoff,
			Logger:         logger,
		}),
		Options: simulation.Options{
			Namespace:   cfg.Namespace,
			IntervalMin: cfg.Simulation.IntervalMin,
			IntervalMax: cfg.Simulation.IntervalMax,
			Encoding:    cfg.Encoding(),
			QoS:         qos,
			Logger:      logger,
			Capture:     capture,
			Metrics:     collector,
		},
	})

	logger.Info("starting simulator",
		slog.String("version", Version),
		slog.String("broker", cfg.TransportOptions().Host),
		slog.String("driver", cfg.Bus.Driver),
		slog.String("reconnect", string(cfg.Policy())),
		slog.Int("assets", len(defs)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The other tasks only stop on cancellation.
		defer cancel()
		return fleet.Run(gctx)
	})
	g.Go(func() error {
		return liveness.NewServer(cfg.Liveness.Addr, logger).Run(gctx)
	})
	if metricsServer != nil {
		g.Go(func() error {
			return metricsServer.Run(gctx)
		})
	}
	if console != nil {
		g.Go(func() error {
			return console.Run(gctx, cancel)
		})
	}

	err = g.Wait()
	logger.Info("simulator stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// statusFunc adapts a function to interactive.StatusSource.
type statusFunc func() []simulation.LoopStatus

func (f statusFunc) Status() []simulation.LoopStatus { return f() }

// discoverBroker fills the broker address from mDNS.
func discoverBroker(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	serviceType, err := cfg.ServiceType()
	if err != nil {
		return err
	}
	browser := discovery.NewBrowser(discovery.BrowserConfig{
		BrowseTimeout: cfg.Bus.Discover.Timeout,
		Interface:     cfg.Bus.Discover.Interface,
	})

	logger.Info("browsing for broker", slog.String("service", serviceType))
	broker, err := browser.FindBroker(ctx, serviceType)
	if err != nil {
		return err
	}

	cfg.Bus.Host = broker.Address()
	cfg.Bus.Port = broker.Port
	if cfg.Bus.TLS.ServerName == "" {
		cfg.Bus.TLS.ServerName = strings.TrimSuffix(broker.Host, ".")
	}
	logger.Info("broker discovered",
		slog.String("instance", broker.Instance),
		slog.String("host", cfg.Bus.Host),
		slog.Int("port", cfg.Bus.Port))
	return nil
}

// newCapture returns the capture logger: the capture file when configured
// plus a debug-level slog mirror.
func newCapture(cfg *config.Config, logger *slog.Logger) (caplog.Logger, func(), error) {
	mirror := caplog.NewSlogAdapter(logger)
	if cfg.Capture.Path == "" {
		return mirror, func() {}, nil
	}

	file, err := caplog.NewFileLogger(cfg.Capture.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	closeFn := func() {
		if n := file.Dropped(); n > 0 {
			logger.Warn("capture events dropped", slog.Int("count", n))
		}
		if err := file.Close(); err != nil {
			logger.Warn("closing capture file", slog.Any("error", err))
		}
	}
	logger.Info("capturing events", slog.String("path", cfg.Capture.Path))
	return caplog.NewMultiLogger(file, mirror), closeFn, nil
}
