package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Supported drivers.
const (
	DriverMQTT = "mqtt"
	DriverNATS = "nats"
)

// Default session parameters.
const (
	DefaultPort           = 8883
	DefaultKeepAlive      = 60 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultPublishTimeout = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	ClientID string

	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	PublishTimeout time.Duration

	TLS TLSConfig
}

// withDefaults fills zero durations and the port.
func (o Options) withDefaults() Options {
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = DefaultKeepAlive
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = DefaultPublishTimeout
	}
	return o
}

func (o Options) hostPort() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// New returns a client for the configured driver. An empty driver selects MQTT.
func New(opts Options) (Client, error) {
	switch opts.Driver {
	case "", DriverMQTT:
		return NewMQTTClient(opts)
	case DriverNATS:
		return NewNATSClient(opts)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, opts.Driver)
	}
}

// ClientID returns "<prefix>_sim_<8 hex chars>". Each call yields a new id
// so that restarted simulators never collide with a stale session.
func ClientID(prefix string) string {
	suffix := uuid.New().String()[:8]
	return prefix + "_sim_" + suffix
}
