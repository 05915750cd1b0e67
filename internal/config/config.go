// Package config loads the simulator configuration.
//
// Sources are applied in increasing precedence: built-in defaults, the YAML
// file, the .env file and finally the process environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uns-lab/sensorsim/pkg/asset"
	"github.com/uns-lab/sensorsim/pkg/connection"
	"github.com/uns-lab/sensorsim/pkg/discovery"
	"github.com/uns-lab/sensorsim/pkg/transport"
	"github.com/uns-lab/sensorsim/pkg/wire"
)

// Defaults.
const (
	DefaultLivenessAddr     = ":5000"
	DefaultMetricsNamespace = "sensorsim"
)

// Config is the root configuration structure.
type Config struct {
	Namespace  string             `yaml:"namespace"`
	Bus        BusConfig          `yaml:"bus"`
	Simulation SimulationConfig   `yaml:"simulation"`
	Liveness   LivenessConfig     `yaml:"liveness"`
	Metrics    MetricsConfig      `yaml:"metrics"`
	Capture    CaptureConfig      `yaml:"capture"`
	Assets     []asset.Definition `yaml:"assets"`
}

// BusConfig configures the message bus session of every asset.
type BusConfig struct {
	Driver         string                   `yaml:"driver"` // "mqtt", "nats"
	Host           string                   `yaml:"host"`
	Port           int                      `yaml:"port"`
	Username       string                   `yaml:"username"`
	Password       string                   `yaml:"password"`
	ClientIDPrefix string                   `yaml:"client_id_prefix"`
	QoS            int                      `yaml:"qos"`
	KeepAlive      time.Duration            `yaml:"keep_alive"`
	ConnectTimeout time.Duration            `yaml:"connect_timeout"`
	PublishTimeout time.Duration            `yaml:"publish_timeout"`
	Reconnect      string                   `yaml:"reconnect"` // "backoff", "none"
	Backoff        connection.BackoffConfig `yaml:"backoff"`
	TLS            transport.TLSConfig      `yaml:"tls"`
	Discover       DiscoverConfig           `yaml:"discover"`
}

// DiscoverConfig configures broker lookup over mDNS when no host is set.
type DiscoverConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout"`
	Interface string        `yaml:"interface"`
}

// SimulationConfig configures the asset loops.
type SimulationConfig struct {
	IntervalMin time.Duration `yaml:"interval_min"`
	IntervalMax time.Duration `yaml:"interval_max"`
	Encoding    string        `yaml:"encoding"` // "json", "cbor"
}

// LivenessConfig configures the liveness endpoint.
type LivenessConfig struct {
	Addr string `yaml:"addr"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// CaptureConfig configures the capture file. An empty Path disables it.
type CaptureConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration. Credentials and the broker
// host have no defaults.
func Default() *Config {
	return &Config{
		Namespace: asset.DefaultNamespace,
		Bus: BusConfig{
			Driver:         transport.DriverMQTT,
			Port:           transport.DefaultPort,
			QoS:            int(transport.QoSAtLeastOnce),
			KeepAlive:      transport.DefaultKeepAlive,
			ConnectTimeout: transport.DefaultConnectTimeout,
			PublishTimeout: transport.DefaultPublishTimeout,
			Reconnect:      string(connection.PolicyBackoff),
			Backoff:        connection.DefaultBackoffConfig(),
			TLS:            transport.TLSConfig{Enabled: true},
			Discover:       DiscoverConfig{Timeout: discovery.BrowseTimeout},
		},
		Simulation: SimulationConfig{
			IntervalMin: 5 * time.Second,
			IntervalMax: 10 * time.Second,
			Encoding:    string(wire.EncodingJSON),
		},
		Liveness: LivenessConfig{Addr: DefaultLivenessAddr},
		Metrics:  MetricsConfig{Namespace: DefaultMetricsNamespace},
		Assets:   asset.DefaultCatalog().Assets,
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.parse(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse returns the defaults overlaid with YAML data.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.parse(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parse(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Catalog returns the configured assets.
func (c *Config) Catalog() asset.Catalog {
	return asset.Catalog{Namespace: c.Namespace, Assets: c.Assets}
}

// Policy returns the reconnect policy. Call Validate first.
func (c *Config) Policy() connection.Policy {
	p, err := connection.ParsePolicy(c.Bus.Reconnect)
	if err != nil {
		return connection.PolicyBackoff
	}
	return p
}

// Encoding returns the payload encoding. Call Validate first.
func (c *Config) Encoding() wire.Encoding {
	enc, err := wire.ParseEncoding(c.Simulation.Encoding)
	if err != nil {
		return wire.EncodingJSON
	}
	return enc
}

// TransportOptions returns the client options shared by all assets. The
// client ID is left empty; it is set per asset.
func (c *Config) TransportOptions() transport.Options {
	return transport.Options{
		Driver:         c.Bus.Driver,
		Host:           c.Bus.Host,
		Port:           c.Bus.Port,
		Username:       c.Bus.Username,
		Password:       c.Bus.Password,
		KeepAlive:      c.Bus.KeepAlive,
		ConnectTimeout: c.Bus.ConnectTimeout,
		PublishTimeout: c.Bus.PublishTimeout,
		TLS:            c.Bus.TLS,
	}
}

// ServiceType returns the mDNS service type used to discover the broker.
func (c *Config) ServiceType() (string, error) {
	return discovery.ServiceTypeFor(c.Bus.Driver, c.Bus.TLS.Enabled)
}
