package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Connection errors.
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrAlreadyConnected = errors.New("already connected")
	ErrUnknownPolicy    = errors.New("unknown reconnect policy")
)

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no active connection.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateReconnecting indicates automatic reconnection is in progress.
	StateReconnecting

	// StateClosed indicates the connection manager has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Policy selects what happens after a failed attempt or a lost session.
type Policy string

const (
	// PolicyBackoff retries with exponential backoff until connected or closed.
	PolicyBackoff Policy = "backoff"

	// PolicyNone never retries.
	PolicyNone Policy = "none"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyBackoff, PolicyNone:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("%w %q (want %q or %q)", ErrUnknownPolicy, s, PolicyBackoff, PolicyNone)
	}
}

// ConnectFunc is called to establish a connection.
// It should return nil on success or an error on failure.
type ConnectFunc func(ctx context.Context) error

// StateObserver is told about every state transition. It is called without
// the manager lock held and must not block.
type StateObserver func(oldState, newState State, err error)

// ReconnectObserver is told before each reconnect attempt is scheduled.
type ReconnectObserver func(attempt int, delay time.Duration)

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy sets the reconnect policy. The default is PolicyBackoff.
func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithBackoff sets the backoff parameters.
func WithBackoff(cfg BackoffConfig) Option {
	return func(m *Manager) { m.backoff = NewBackoffWithConfig(cfg) }
}

// WithAttemptTimeout bounds each reconnect attempt. The default is 30s.
func WithAttemptTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.attemptTimeout = d
		}
	}
}

// WithStateObserver registers a transition observer.
func WithStateObserver(fn StateObserver) Option {
	return func(m *Manager) { m.onStateChange = fn }
}

// WithReconnectObserver registers a reconnect observer.
func WithReconnectObserver(fn ReconnectObserver) Option {
	return func(m *Manager) { m.onReconnecting = fn }
}

// Manager manages connection lifecycle with optional automatic reconnection.
type Manager struct {
	mu sync.RWMutex

	state     State
	connectFn ConnectFunc
	policy    Policy
	backoff   *Backoff

	attemptTimeout time.Duration

	// ctx is cancelled by Close and stops the reconnect loop.
	ctx    context.Context
	cancel context.CancelFunc

	// wg tracks the reconnect loop. It is only added to under mu while
	// the state is not StateClosed, so Close never races with Add.
	wg          sync.WaitGroup
	loopStarted bool
	reconnectCh chan struct{}

	// connected is closed on the first transition to StateConnected.
	connected     chan struct{}
	connectedOnce sync.Once

	onStateChange  StateObserver
	onReconnecting ReconnectObserver
}

// NewManager creates a new connection manager.
func NewManager(connectFn ConnectFunc, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		state:          StateDisconnected,
		connectFn:      connectFn,
		policy:         PolicyBackoff,
		backoff:        NewBackoff(),
		attemptTimeout: 30 * time.Second,
		ctx:            ctx,
		cancel:         cancel,
		reconnectCh:    make(chan struct{}, 1),
		connected:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true if currently connected.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Policy returns the reconnect policy.
func (m *Manager) Policy() Policy {
	return m.policy
}

// Connected returns a channel that is closed the first time the manager
// reaches StateConnected. It is never closed if that never happens.
func (m *Manager) Connected() <-chan struct{} {
	return m.connected
}

// WaitConnected blocks until the first successful connection, ctx is done,
// or the manager is closed.
func (m *Manager) WaitConnected(ctx context.Context) error {
	select {
	case <-m.connected:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return ErrConnectionClosed
	}
}

// Connect makes one connection attempt. On failure with PolicyBackoff the
// manager moves to StateReconnecting and keeps retrying in the background;
// the error of the first attempt is still returned.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosed:
		m.mu.Unlock()
		return ErrConnectionClosed
	}
	old := m.state
	m.state = StateConnecting
	m.mu.Unlock()
	m.notify(old, StateConnecting, nil)

	err := m.connectFn(ctx)
	if err != nil {
		m.fail(StateConnecting, err)
		return err
	}

	if !m.markConnected(StateConnecting) {
		return ErrConnectionClosed
	}
	return nil
}

// NotifyConnectionLost should be called when the transport reports that an
// established session dropped.
func (m *Manager) NotifyConnectionLost(err error) {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.fail(StateConnected, err)
}

// Close shuts down the manager and stops any reconnection. It is safe to
// call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	old := m.state
	m.state = StateClosed
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	m.notify(old, StateClosed, nil)
}

// BackoffAttempts returns the current number of reconnection attempts.
func (m *Manager) BackoffAttempts() int {
	return m.backoff.Attempts()
}

// fail moves from the expected state to StateReconnecting or
// StateDisconnected depending on the policy.
func (m *Manager) fail(from State, err error) {
	next := StateDisconnected
	if m.policy == PolicyBackoff {
		next = StateReconnecting
	}

	m.mu.Lock()
	if m.state != from {
		m.mu.Unlock()
		return
	}
	m.state = next
	if next == StateReconnecting {
		m.startReconnectLoopLocked()
	}
	m.mu.Unlock()
	m.notify(from, next, err)

	if next == StateReconnecting {
		m.triggerReconnect()
	}
}

// markConnected completes a successful attempt unless the manager was
// closed meanwhile.
func (m *Manager) markConnected(from State) bool {
	m.mu.Lock()
	if m.state != from {
		m.mu.Unlock()
		return false
	}
	m.state = StateConnected
	m.backoff.Reset()
	m.mu.Unlock()

	m.connectedOnce.Do(func() { close(m.connected) })
	m.notify(from, StateConnected, nil)
	return true
}

func (m *Manager) notify(old, next State, err error) {
	if m.onStateChange != nil {
		m.onStateChange(old, next, err)
	}
}

// startReconnectLoopLocked starts the reconnect loop on first use. The
// caller holds mu and has checked that the manager is not closed.
func (m *Manager) startReconnectLoopLocked() {
	if m.loopStarted {
		return
	}
	m.loopStarted = true
	m.wg.Add(1)
	go m.reconnectLoop()
}

// triggerReconnect signals that reconnection should be attempted.
func (m *Manager) triggerReconnect() {
	select {
	case m.reconnectCh <- struct{}{}:
	default:
		// Already pending
	}
}

func (m *Manager) reconnectLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.reconnectCh:
			m.attemptReconnect()
		}
	}
}

// attemptReconnect retries with backoff until connected or closed.
func (m *Manager) attemptReconnect() {
	for {
		if m.State() != StateReconnecting {
			return
		}

		delay := m.backoff.Next()
		if m.onReconnecting != nil {
			m.onReconnecting(m.backoff.Attempts(), delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if m.State() != StateReconnecting {
			return
		}

		ctx, cancel := context.WithTimeout(m.ctx, m.attemptTimeout)
		err := m.connectFn(ctx)
		cancel()

		if err == nil {
			m.markConnected(StateReconnecting)
			return
		}
		m.notify(StateReconnecting, StateReconnecting, err)
	}
}
