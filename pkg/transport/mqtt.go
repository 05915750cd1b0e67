package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// disconnectQuiesce is how long paho may flush in-flight work on Disconnect,
// in milliseconds.
const disconnectQuiesce = 250

// MQTTClient is a Client backed by Eclipse Paho.
type MQTTClient struct {
	opts   Options
	broker string
	client mqtt.Client

	mu     sync.Mutex
	onLost func(error)
}

// NewMQTTClient creates an MQTT client. No network activity happens until
// Connect.
func NewMQTTClient(opts Options) (*MQTTClient, error) {
	opts = opts.withDefaults()

	tlsConfig, err := NewClientTLSConfig(opts.TLS, opts.Host)
	if err != nil {
		return nil, err
	}

	scheme := "tcp"
	if tlsConfig != nil {
		scheme = "ssl"
	}

	c := &MQTTClient{
		opts:   opts,
		broker: fmt.Sprintf("%s://%s", scheme, opts.hostPort()),
	}

	co := mqtt.NewClientOptions().
		AddBroker(c.broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetKeepAlive(opts.KeepAlive).
		SetConnectTimeout(opts.ConnectTimeout).
		SetWriteTimeout(opts.PublishTimeout).
		SetCleanSession(true).
		// Reconnection is owned by pkg/connection.
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.lost(err)
		})
	if tlsConfig != nil {
		co.SetTLSConfig(tlsConfig)
	}

	c.client = mqtt.NewClient(co)
	return c, nil
}

// Broker returns the broker URL.
func (c *MQTTClient) Broker() string {
	return c.broker
}

// OnConnectionLost registers the connection-lost callback.
func (c *MQTTClient) OnConnectionLost(fn func(err error)) {
	c.mu.Lock()
	c.onLost = fn
	c.mu.Unlock()
}

func (c *MQTTClient) lost(err error) {
	c.mu.Lock()
	fn := c.onLost
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Connect opens the MQTT session.
func (c *MQTTClient) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	token := c.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect %s: %w", c.broker, err)
		}
		return nil
	case <-ctx.Done():
		// Do not leave a session behind if the attempt completes late.
		go func() {
			token.Wait()
			if token.Error() == nil {
				c.client.Disconnect(0)
			}
		}()
		return ctx.Err()
	}
}

// Publish sends one message and waits for the acknowledgement.
func (c *MQTTClient) Publish(ctx context.Context, topic string, payload []byte, qos QoS) error {
	if qos > QoSExactlyOnce {
		return fmt.Errorf("%w: %d", ErrInvalidQoS, qos)
	}
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, byte(qos), false, payload)

	timer := time.NewTimer(c.opts.PublishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", topic, err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %s: %s", ErrPublishTimeout, c.opts.PublishTimeout, topic)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect closes the session if one is open.
func (c *MQTTClient) Disconnect() {
	if c.client.IsConnected() {
		c.client.Disconnect(disconnectQuiesce)
	}
}
