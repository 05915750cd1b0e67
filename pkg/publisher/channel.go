// Package publisher provides the per-asset publish channel: one bus session
// with connection lifecycle management and acknowledged publishes.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/uns-lab/sensorsim/pkg/connection"
	"github.com/uns-lab/sensorsim/pkg/transport"
)

// Channel errors.
var (
	ErrNotConnected = errors.New("channel not connected")
	ErrClosed       = errors.New("channel closed")
)

// Config configures a Channel.
type Config struct {
	// Asset owns the channel; used in logs.
	Asset string

	// Client is the bus session. Required.
	Client transport.Client

	// Policy selects reconnect behaviour. Default: connection.PolicyBackoff.
	Policy connection.Policy

	// Backoff tunes reconnect delays. Zero fields use the defaults.
	Backoff connection.BackoffConfig

	// Logger for operational logging. Default: slog.Default().
	Logger *slog.Logger

	// OnStateChange is told about every connection state transition.
	OnStateChange connection.StateObserver

	// OnReconnect is told before each scheduled reconnect attempt.
	OnReconnect connection.ReconnectObserver
}

// Channel owns one authenticated session to the bus for a single asset.
// Publish may be called concurrently with connection state changes.
type Channel struct {
	asset  string
	client transport.Client
	mgr    *connection.Manager
	logger *slog.Logger

	onStateChange connection.StateObserver

	closeOnce sync.Once
}

// New creates a channel. No network activity happens until Open.
func New(cfg Config) *Channel {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy := cfg.Policy
	if policy == "" {
		policy = connection.PolicyBackoff
	}

	c := &Channel{
		asset:         cfg.Asset,
		client:        cfg.Client,
		logger:        logger.With(slog.String("asset", cfg.Asset)),
		onStateChange: cfg.OnStateChange,
	}

	opts := []connection.Option{
		connection.WithPolicy(policy),
		connection.WithBackoff(cfg.Backoff),
		connection.WithStateObserver(c.stateChanged),
	}
	if cfg.OnReconnect != nil {
		opts = append(opts, connection.WithReconnectObserver(cfg.OnReconnect))
	}
	c.mgr = connection.NewManager(c.client.Connect, opts...)

	// Registered before the first Connect so that no loss goes unnoticed.
	c.client.OnConnectionLost(c.mgr.NotifyConnectionLost)

	return c
}

func (c *Channel) stateChanged(oldState, newState connection.State, err error) {
	switch {
	case oldState == newState:
		c.logger.Warn("reconnect attempt failed",
			slog.String("state", newState.String()),
			slog.Any("error", err))
	case err != nil:
		c.logger.Warn("bus session state changed",
			slog.String("from", oldState.String()),
			slog.String("state", newState.String()),
			slog.Any("error", err))
	default:
		c.logger.Info("bus session state changed",
			slog.String("from", oldState.String()),
			slog.String("state", newState.String()))
	}
	if c.onStateChange != nil {
		c.onStateChange(oldState, newState, err)
	}
}

// Asset returns the owning asset ID.
func (c *Channel) Asset() string {
	return c.asset
}

// Open establishes the session. A failure is logged and returned but the
// channel stays usable: with the backoff policy it keeps reconnecting in
// the background.
func (c *Channel) Open(ctx context.Context) error {
	c.logger.Info("connecting to broker", slog.String("broker", c.client.Broker()))

	err := c.mgr.Connect(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, connection.ErrConnectionClosed):
		return ErrClosed
	case errors.Is(err, connection.ErrAlreadyConnected):
		return nil
	default:
		c.logger.Error("connect failed",
			slog.String("broker", c.client.Broker()),
			slog.String("policy", string(c.mgr.Policy())),
			slog.Any("error", err))
		return fmt.Errorf("open channel for %s: %w", c.asset, err)
	}
}

// Publish sends one payload. It fails fast when the session is not
// connected; there is no retry.
func (c *Channel) Publish(ctx context.Context, topic string, payload []byte, qos transport.QoS) error {
	switch state := c.mgr.State(); state {
	case connection.StateConnected:
	case connection.StateClosed:
		return ErrClosed
	default:
		return fmt.Errorf("%w (%s)", ErrNotConnected, state)
	}

	if err := c.client.Publish(ctx, topic, payload, qos); err != nil {
		if errors.Is(err, transport.ErrNotConnected) {
			return fmt.Errorf("%w: %w", ErrNotConnected, err)
		}
		return err
	}
	return nil
}

// Close stops background reconnects and releases the session. It is
// idempotent and safe to call when Open never ran or failed.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mgr.Close()
		c.client.Disconnect()
		c.logger.Debug("channel closed")
	})
}

// State returns the current connection state.
func (c *Channel) State() connection.State {
	return c.mgr.State()
}

// Connected is closed the first time the session is established.
func (c *Channel) Connected() <-chan struct{} {
	return c.mgr.Connected()
}

// WaitConnected blocks until the first successful connection, ctx is done
// or the channel is closed.
func (c *Channel) WaitConnected(ctx context.Context) error {
	if err := c.mgr.WaitConnected(ctx); err != nil {
		if errors.Is(err, connection.ErrConnectionClosed) {
			return ErrClosed
		}
		return err
	}
	return nil
}

// ReconnectAttempts returns the number of reconnect attempts since the last
// successful connection.
func (c *Channel) ReconnectAttempts() int {
	return c.mgr.BackoffAttempts()
}
