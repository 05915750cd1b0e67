package simulation

import (
	"context"
	"log/slog"

	"github.com/uns-lab/sensorsim/pkg/asset"
	"github.com/uns-lab/sensorsim/pkg/connection"
	"github.com/uns-lab/sensorsim/pkg/publisher"
	"github.com/uns-lab/sensorsim/pkg/transport"
)

// Publisher is the bus channel of one asset.
// Implemented by *publisher.Channel.
type Publisher interface {
	Open(ctx context.Context) error
	Publish(ctx context.Context, topic string, payload []byte, qos transport.QoS) error
	Close()
	State() connection.State
}

var _ Publisher = (*publisher.Channel)(nil)

// ChannelHooks are the observers a Loop wants attached to its channel.
type ChannelHooks struct {
	OnStateChange connection.StateObserver
	OnReconnect   connection.ReconnectObserver
}

// ChannelFactory creates the channel for one asset.
type ChannelFactory func(def asset.Definition, hooks ChannelHooks) (Publisher, error)

// BusConfig holds what NewChannelFactory needs to build channels.
type BusConfig struct {
	// Transport is copied for every asset; ClientID is derived per asset
	// from ClientIDPrefix.
	Transport transport.Options

	// ClientIDPrefix is prepended to the asset ID. Empty means the asset
	// ID alone.
	ClientIDPrefix string

	Policy  connection.Policy
	Backoff connection.BackoffConfig
	Logger  *slog.Logger
}

// NewChannelFactory returns a factory creating one transport client and
// publisher.Channel per asset.
func NewChannelFactory(cfg BusConfig) ChannelFactory {
	return func(def asset.Definition, hooks ChannelHooks) (Publisher, error) {
		opts := cfg.Transport
		opts.ClientID = transport.ClientID(cfg.ClientIDPrefix + def.ID)

		client, err := transport.New(opts)
		if err != nil {
			return nil, err
		}
		return publisher.New(publisher.Config{
			Asset:         def.ID,
			Client:        client,
			Policy:        cfg.Policy,
			Backoff:       cfg.Backoff,
			Logger:        cfg.Logger,
			OnStateChange: hooks.OnStateChange,
			OnReconnect:   hooks.OnReconnect,
		}), nil
	}
}
