package transport

import (
	"context"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachable points at a port nothing listens on so connects fail fast.
func unreachable(driver string) Options {
	return Options{
		Driver:         driver,
		Host:           "127.0.0.1",
		Port:           1,
		ClientID:       "test_sim_00000000",
		ConnectTimeout: 2 * time.Second,
		PublishTimeout: time.Second,
	}
}

func TestParseQoS(t *testing.T) {
	for n := 0; n <= 2; n++ {
		qos, err := ParseQoS(n)
		require.NoError(t, err)
		assert.Equal(t, QoS(n), qos)
	}

	_, err := ParseQoS(3)
	assert.ErrorIs(t, err, ErrInvalidQoS)
	_, err = ParseQoS(-1)
	assert.ErrorIs(t, err, ErrInvalidQoS)
}

func TestClientID(t *testing.T) {
	id := ClientID("Fraesmaschine_01")
	assert.Regexp(t, regexp.MustCompile(`^Fraesmaschine_01_sim_[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, ClientID("Fraesmaschine_01"))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "LH.LBC.Biberach.Logistik.Verpackungslinie_07.BeltSpeed",
		Subject("LH/LBC/Biberach/Logistik/Verpackungslinie_07/BeltSpeed"))
}

func TestNew(t *testing.T) {
	t.Run("DefaultDriverIsMQTT", func(t *testing.T) {
		c, err := New(Options{Host: "broker.test"})
		require.NoError(t, err)
		assert.IsType(t, &MQTTClient{}, c)
		assert.Equal(t, "tcp://broker.test:8883", c.Broker())
	})

	t.Run("MQTTWithTLS", func(t *testing.T) {
		c, err := New(Options{Driver: DriverMQTT, Host: "broker.test", Port: 8884, TLS: TLSConfig{Enabled: true}})
		require.NoError(t, err)
		assert.Equal(t, "ssl://broker.test:8884", c.Broker())
	})

	t.Run("NATS", func(t *testing.T) {
		c, err := New(Options{Driver: DriverNATS, Host: "broker.test", Port: 4222})
		require.NoError(t, err)
		assert.IsType(t, &NATSClient{}, c)
		assert.Equal(t, "nats://broker.test:4222", c.Broker())
	})

	t.Run("NATSWithTLS", func(t *testing.T) {
		c, err := New(Options{Driver: DriverNATS, Host: "broker.test", Port: 4222, TLS: TLSConfig{Enabled: true}})
		require.NoError(t, err)
		assert.Equal(t, "tls://broker.test:4222", c.Broker())
	})

	t.Run("IPv6Host", func(t *testing.T) {
		c, err := New(Options{Host: "::1", Port: 1883})
		require.NoError(t, err)
		assert.Equal(t, "tcp://[::1]:1883", c.Broker())
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := New(Options{Driver: "amqp", Host: "broker.test"})
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})

	t.Run("BadTLSFiles", func(t *testing.T) {
		_, err := New(Options{Host: "broker.test", TLS: TLSConfig{Enabled: true, CertFile: "only-cert.pem"}})
		assert.Error(t, err)
	})
}

func TestMQTTClient(t *testing.T) {
	t.Run("PublishNotConnected", func(t *testing.T) {
		c, err := NewMQTTClient(unreachable(DriverMQTT))
		require.NoError(t, err)

		err = c.Publish(context.Background(), "a/b", []byte("{}"), QoSAtLeastOnce)
		assert.ErrorIs(t, err, ErrNotConnected)
	})

	t.Run("PublishInvalidQoS", func(t *testing.T) {
		c, err := NewMQTTClient(unreachable(DriverMQTT))
		require.NoError(t, err)

		err = c.Publish(context.Background(), "a/b", nil, QoS(3))
		assert.ErrorIs(t, err, ErrInvalidQoS)
	})

	t.Run("ConnectRefused", func(t *testing.T) {
		c, err := NewMQTTClient(unreachable(DriverMQTT))
		require.NoError(t, err)

		err = c.Connect(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tcp://127.0.0.1:1")

		// Never connected, so this must be a no-op.
		c.Disconnect()
	})

	t.Run("ConnectCancelled", func(t *testing.T) {
		c, err := NewMQTTClient(unreachable(DriverMQTT))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, c.Connect(ctx), context.Canceled)
	})
}

func TestNATSClient(t *testing.T) {
	t.Run("PublishNotConnected", func(t *testing.T) {
		c, err := NewNATSClient(unreachable(DriverNATS))
		require.NoError(t, err)

		err = c.Publish(context.Background(), "a/b", []byte("{}"), QoSAtMostOnce)
		assert.ErrorIs(t, err, ErrNotConnected)
	})

	t.Run("ConnectRefused", func(t *testing.T) {
		c, err := NewNATSClient(unreachable(DriverNATS))
		require.NoError(t, err)

		lost := false
		c.OnConnectionLost(func(error) { lost = true })

		err = c.Connect(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nats://127.0.0.1:1")
		assert.False(t, lost)

		c.Disconnect()
	})

	t.Run("ConnectCancelled", func(t *testing.T) {
		c, err := NewNATSClient(unreachable(DriverNATS))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, c.Connect(ctx), context.Canceled)
	})
}

// silentListener accepts TCP connections and never speaks, so a client
// handshake stalls until its own timeout.
func silentListener(t *testing.T) *net.TCPAddr {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				_ = c.Close()
			}
		}()
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
		}
	}()
	return ln.Addr().(*net.TCPAddr)
}

func TestNATSConnectHonoursContext(t *testing.T) {
	addr := silentListener(t)
	opts := unreachable(DriverNATS)
	opts.Port = addr.Port
	opts.ConnectTimeout = 5 * time.Second

	c, err := NewNATSClient(opts)
	require.NoError(t, err)

	lost := make(chan error, 1)
	c.OnConnectionLost(func(err error) { lost <- err })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	err = c.Connect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)

	select {
	case err := <-lost:
		t.Fatalf("abandoned connect reported a lost session: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}
