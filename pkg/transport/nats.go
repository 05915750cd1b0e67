package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSClient is a Client backed by nats.go.
type NATSClient struct {
	opts   Options
	broker string
	tls    bool

	mu      sync.Mutex
	conn    *nats.Conn
	closing bool
	onLost  func(error)
}

// NewNATSClient creates a NATS client. No network activity happens until
// Connect.
func NewNATSClient(opts Options) (*NATSClient, error) {
	opts = opts.withDefaults()

	// Validate the TLS files early; the config is rebuilt on Connect.
	tlsConfig, err := NewClientTLSConfig(opts.TLS, opts.Host)
	if err != nil {
		return nil, err
	}

	scheme := "nats"
	if tlsConfig != nil {
		scheme = "tls"
	}

	return &NATSClient{
		opts:   opts,
		broker: fmt.Sprintf("%s://%s", scheme, opts.hostPort()),
		tls:    tlsConfig != nil,
	}, nil
}

// Subject maps a slash-separated topic to a NATS subject.
func Subject(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}

// Broker returns the server URL.
func (c *NATSClient) Broker() string {
	return c.broker
}

// OnConnectionLost registers the connection-lost callback.
func (c *NATSClient) OnConnectionLost(fn func(err error)) {
	c.mu.Lock()
	c.onLost = fn
	c.mu.Unlock()
}

// Connect opens the NATS connection.
func (c *NATSClient) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.opts.ConnectTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	// live is set once the connection is handed over; an attempt abandoned
	// on ctx must not report its own teardown as a lost session.
	var live atomic.Bool
	natsOpts := []nats.Option{
		nats.Name(c.opts.ClientID),
		nats.Timeout(timeout),
		nats.PingInterval(c.opts.KeepAlive),
		nats.NoReconnect(),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if live.Load() {
				c.lost(err)
			}
		}),
	}
	if c.opts.Username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(c.opts.Username, c.opts.Password))
	}
	if c.tls {
		tlsConfig, err := NewClientTLSConfig(c.opts.TLS, c.opts.Host)
		if err != nil {
			return err
		}
		natsOpts = append(natsOpts, nats.Secure(tlsConfig))
	}

	// nats.Connect takes no context, so the dial runs aside and is closed
	// when it finishes after the caller gave up.
	type result struct {
		conn *nats.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := nats.Connect(c.broker, natsOpts...)
		done <- result{conn, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return fmt.Errorf("nats connect %s: %w", c.broker, ctx.Err())
	}

	if res.err != nil {
		err := res.err
		if errors.Is(err, nats.ErrTimeout) {
			err = fmt.Errorf("%w: %w", ErrConnectTimeout, err)
		}
		return fmt.Errorf("nats connect %s: %w", c.broker, err)
	}

	c.mu.Lock()
	c.conn = res.conn
	c.closing = false
	c.mu.Unlock()
	live.Store(true)
	return nil
}

func (c *NATSClient) lost(err error) {
	c.mu.Lock()
	fn := c.onLost
	closing := c.closing
	c.mu.Unlock()
	if closing || fn == nil {
		return
	}
	if err == nil {
		err = nats.ErrConnectionClosed
	}
	fn(err)
}

// Publish sends one message. Any qos above 0 flushes and waits for the
// server's pong, which confirms receipt.
func (c *NATSClient) Publish(ctx context.Context, topic string, payload []byte, qos QoS) error {
	if qos > QoSExactlyOnce {
		return fmt.Errorf("%w: %d", ErrInvalidQoS, qos)
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil || !conn.IsConnected() {
		return ErrNotConnected
	}

	subject := Subject(topic)
	if err := conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	if qos == QoSAtMostOnce {
		return nil
	}

	flushCtx, cancel := context.WithTimeout(ctx, c.opts.PublishTimeout)
	defer cancel()
	if err := conn.FlushWithContext(flushCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w after %s: %s", ErrPublishTimeout, c.opts.PublishTimeout, subject)
		}
		return fmt.Errorf("nats flush %s: %w", subject, err)
	}
	return nil
}

// Disconnect closes the connection if one is open.
func (c *NATSClient) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.closing = true
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}
