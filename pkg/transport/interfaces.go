package transport

import (
	"context"
	"errors"
	"fmt"
)

// Transport errors.
var (
	ErrNotConnected   = errors.New("transport not connected")
	ErrPublishTimeout = errors.New("publish timed out")
	ErrConnectTimeout = errors.New("connect timed out")
	ErrInvalidQoS     = errors.New("invalid qos")
	ErrUnknownDriver  = errors.New("unknown bus driver")
)

// QoS is the acknowledgement level requested for a publish.
type QoS byte

const (
	QoSAtMostOnce  QoS = 0
	QoSAtLeastOnce QoS = 1
	QoSExactlyOnce QoS = 2
)

// ParseQoS validates a numeric QoS level.
func ParseQoS(n int) (QoS, error) {
	if n < 0 || n > 2 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQoS, n)
	}
	return QoS(n), nil
}

// Client is a session to a message broker.
// Implemented by MQTTClient and NATSClient.
type Client interface {
	// Connect establishes the session. It returns when the broker accepted
	// the session, ctx is done or the connect timeout elapsed.
	Connect(ctx context.Context) error

	// Publish sends one message and waits for the acknowledgement level
	// given by qos.
	Publish(ctx context.Context, topic string, payload []byte, qos QoS) error

	// Disconnect releases the session. Safe to call when not connected.
	Disconnect()

	// OnConnectionLost registers fn to be called when an established
	// session drops. It must be called before Connect.
	OnConnectionLost(fn func(err error))

	// Broker returns the broker URL.
	Broker() string
}

// Compile-time interface satisfaction checks.
var (
	_ Client = (*MQTTClient)(nil)
	_ Client = (*NATSClient)(nil)
)
