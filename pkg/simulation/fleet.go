package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/uns-lab/sensorsim/pkg/asset"
)

// ErrNoChannelFactory is returned when a Fleet has no way to create channels.
var ErrNoChannelFactory = errors.New("simulation: no channel factory")

// FleetConfig configures a Fleet.
type FleetConfig struct {
	// Assets are the resolved definitions, one loop each.
	Assets []asset.Definition

	// NewChannel creates the bus channel of each asset.
	NewChannel ChannelFactory

	// Options are applied to every loop.
	Options Options
}

// Fleet runs one Loop per asset.
type Fleet struct {
	cfg    FleetConfig
	logger *slog.Logger

	mu    sync.RWMutex
	loops []*Loop
}

// NewFleet creates a fleet. Loops are built by Run.
func NewFleet(cfg FleetConfig) *Fleet {
	cfg.Options = cfg.Options.withDefaults()
	assets := make([]asset.Definition, len(cfg.Assets))
	for i, d := range cfg.Assets {
		assets[i] = d.Clone()
	}
	cfg.Assets = assets
	return &Fleet{cfg: cfg, logger: cfg.Options.Logger}
}

// Run starts every loop and blocks until ctx is cancelled and every loop
// has closed its channel. Cancellation is not reported as an error.
func (f *Fleet) Run(ctx context.Context) error {
	if len(f.cfg.Assets) == 0 {
		return asset.ErrNoAssets
	}
	if f.cfg.NewChannel == nil {
		return ErrNoChannelFactory
	}

	loops, err := f.build()
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.loops = loops
	f.mu.Unlock()

	f.logger.Info("fleet started", slog.Int("assets", len(loops)))
	f.cfg.Options.Metrics.SetActiveLoops(len(loops))
	defer f.cfg.Options.Metrics.SetActiveLoops(0)

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range loops {
		g.Go(func() error {
			return l.Run(gctx)
		})
	}

	err = g.Wait()
	f.logger.Info("fleet stopped")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// build creates every loop and its channel. Channels created before a
// factory failure are closed.
func (f *Fleet) build() ([]*Loop, error) {
	loops := make([]*Loop, 0, len(f.cfg.Assets))
	for _, def := range f.cfg.Assets {
		l := NewLoop(def, f.cfg.Options)
		ch, err := f.cfg.NewChannel(def, l.Hooks())
		if err != nil {
			for _, built := range loops {
				built.channel.Close()
			}
			return nil, fmt.Errorf("channel for %s: %w", def.ID, err)
		}
		l.SetChannel(ch)
		loops = append(loops, l)
	}
	return loops, nil
}

// Status returns a snapshot of every loop in catalog order. It is empty
// before Run has built the loops.
func (f *Fleet) Status() []LoopStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]LoopStatus, len(f.loops))
	for i, l := range f.loops {
		out[i] = l.Status()
	}
	return out
}

// Assets returns the definitions the fleet runs.
func (f *Fleet) Assets() []asset.Definition {
	out := make([]asset.Definition, len(f.cfg.Assets))
	for i, d := range f.cfg.Assets {
		out[i] = d.Clone()
	}
	return out
}
