package publisher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uns-lab/sensorsim/pkg/connection"
	"github.com/uns-lab/sensorsim/pkg/transport"
	"github.com/uns-lab/sensorsim/pkg/transport/mocks"
)

var fastBackoff = connection.BackoffConfig{Initial: time.Millisecond, Max: 5 * time.Millisecond, Multiplier: 2}

// newMockClient returns a client mock with the calls every channel makes.
func newMockClient(t *testing.T) (*mocks.MockClient, *func(error)) {
	client := mocks.NewMockClient(t)
	lost := new(func(error))
	client.EXPECT().OnConnectionLost(mock.Anything).Run(func(fn func(err error)) {
		*lost = fn
	}).Return().Once()
	client.EXPECT().Broker().Return("ssl://broker.test:8883").Maybe()
	return client, lost
}

func TestChannelOpenPublishClose(t *testing.T) {
	client, _ := newMockClient(t)
	client.EXPECT().Connect(mock.Anything).Return(nil).Once()
	client.EXPECT().Publish(mock.Anything, "root/area/Line_01/Status", []byte(`{"value":"Running"}`), transport.QoSAtLeastOnce).
		Return(nil).Once()
	client.EXPECT().Disconnect().Return().Once()

	ch := New(Config{Asset: "Line_01", Client: client})
	assert.Equal(t, "Line_01", ch.Asset())
	assert.Equal(t, connection.StateDisconnected, ch.State())

	require.NoError(t, ch.Open(context.Background()))
	assert.Equal(t, connection.StateConnected, ch.State())
	select {
	case <-ch.Connected():
	default:
		t.Fatal("Connected() not closed after Open")
	}

	err := ch.Publish(context.Background(), "root/area/Line_01/Status", []byte(`{"value":"Running"}`), transport.QoSAtLeastOnce)
	require.NoError(t, err)

	ch.Close()
	ch.Close()
	assert.Equal(t, connection.StateClosed, ch.State())

	err = ch.Publish(context.Background(), "root/area/Line_01/Status", nil, transport.QoSAtLeastOnce)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, ch.Open(context.Background()), ErrClosed)
	assert.ErrorIs(t, ch.WaitConnected(context.Background()), ErrClosed)
}

func TestChannelOpenFailureWithoutReconnect(t *testing.T) {
	refused := errors.New("connection refused")
	client, _ := newMockClient(t)
	client.EXPECT().Connect(mock.Anything).Return(refused).Once()
	client.EXPECT().Disconnect().Return().Once()

	ch := New(Config{Asset: "A", Client: client, Policy: connection.PolicyNone})
	defer ch.Close()

	err := ch.Open(context.Background())
	assert.ErrorIs(t, err, refused)
	assert.Equal(t, connection.StateDisconnected, ch.State())

	// Fails fast without touching the transport.
	err = ch.Publish(context.Background(), "t", []byte("x"), transport.QoSAtMostOnce)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestChannelOpenFailureReconnects(t *testing.T) {
	var calls atomic.Int32
	client, _ := newMockClient(t)
	client.EXPECT().Connect(mock.Anything).RunAndReturn(func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("not authorized")
		}
		return nil
	})
	client.EXPECT().Disconnect().Return().Once()

	var reconnects atomic.Int32
	ch := New(Config{
		Asset:       "A",
		Client:      client,
		Backoff:     fastBackoff,
		OnReconnect: func(int, time.Duration) { reconnects.Add(1) },
	})
	defer ch.Close()

	require.Error(t, ch.Open(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ch.WaitConnected(ctx))
	assert.Equal(t, connection.StateConnected, ch.State())
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int32(2), reconnects.Load())
	assert.Zero(t, ch.ReconnectAttempts())
}

func TestChannelConnectionLost(t *testing.T) {
	client, lost := newMockClient(t)
	client.EXPECT().Connect(mock.Anything).Return(nil).Once()
	client.EXPECT().Disconnect().Return().Once()

	var mu sync.Mutex
	var transitions []connection.State
	ch := New(Config{
		Asset:  "A",
		Client: client,
		Policy: connection.PolicyNone,
		OnStateChange: func(_, newState connection.State, _ error) {
			mu.Lock()
			transitions = append(transitions, newState)
			mu.Unlock()
		},
	})
	defer ch.Close()

	require.NoError(t, ch.Open(context.Background()))
	require.NotNil(t, *lost)

	(*lost)(errors.New("EOF"))
	assert.Equal(t, connection.StateDisconnected, ch.State())

	err := ch.Publish(context.Background(), "t", []byte("x"), transport.QoSAtLeastOnce)
	assert.ErrorIs(t, err, ErrNotConnected)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []connection.State{
		connection.StateConnecting,
		connection.StateConnected,
		connection.StateDisconnected,
	}, transitions)
}

func TestChannelPublishErrors(t *testing.T) {
	client, _ := newMockClient(t)
	client.EXPECT().Connect(mock.Anything).Return(nil).Once()
	client.EXPECT().Publish(mock.Anything, "dropped", mock.Anything, mock.Anything).
		Return(transport.ErrNotConnected).Once()
	client.EXPECT().Publish(mock.Anything, "slow", mock.Anything, mock.Anything).
		Return(transport.ErrPublishTimeout).Once()
	client.EXPECT().Disconnect().Return().Once()

	ch := New(Config{Asset: "A", Client: client})
	defer ch.Close()
	require.NoError(t, ch.Open(context.Background()))

	err := ch.Publish(context.Background(), "dropped", []byte("x"), transport.QoSAtLeastOnce)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, err, transport.ErrNotConnected)

	err = ch.Publish(context.Background(), "slow", []byte("x"), transport.QoSAtLeastOnce)
	assert.ErrorIs(t, err, transport.ErrPublishTimeout)
}

func TestChannelCloseBeforeOpen(t *testing.T) {
	client, _ := newMockClient(t)
	client.EXPECT().Disconnect().Return().Once()

	ch := New(Config{Asset: "A", Client: client})
	ch.Close()

	assert.Equal(t, connection.StateClosed, ch.State())
	assert.ErrorIs(t, ch.Open(context.Background()), ErrClosed)
}
