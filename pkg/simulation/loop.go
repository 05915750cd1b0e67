package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/uns-lab/sensorsim/pkg/asset"
	"github.com/uns-lab/sensorsim/pkg/connection"
	caplog "github.com/uns-lab/sensorsim/pkg/log"
	"github.com/uns-lab/sensorsim/pkg/metrics"
	"github.com/uns-lab/sensorsim/pkg/sensor"
	"github.com/uns-lab/sensorsim/pkg/transport"
	"github.com/uns-lab/sensorsim/pkg/wire"
)

// Default tick interval bounds.
const (
	DefaultIntervalMin = 5 * time.Second
	DefaultIntervalMax = 10 * time.Second
)

// ErrNoChannel is returned by Run when no channel was attached.
var ErrNoChannel = errors.New("simulation: loop has no channel")

// Loop states recorded in the capture log.
const (
	loopRunning = "RUNNING"
	loopStopped = "STOPPED"
)

// Options are the settings shared by every loop of a fleet.
type Options struct {
	// Namespace is the topic root.
	Namespace string

	// IntervalMin and IntervalMax bound the sleep between ticks.
	IntervalMin time.Duration
	IntervalMax time.Duration

	// Encoding of published payloads. Default: JSON.
	Encoding wire.Encoding

	// QoS requested for every publish.
	QoS transport.QoS

	// Rand drives value generation and tick intervals.
	// Default: the process-wide source.
	Rand sensor.Rand

	// Logger for operational logging. Default: slog.Default().
	Logger *slog.Logger

	// Capture receives the capture log. Default: NoopLogger.
	Capture caplog.Logger

	// Metrics receives measurements. Default: no-op.
	Metrics metrics.Collector

	// Now stamps readings. Default: time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Namespace == "" {
		o.Namespace = asset.DefaultNamespace
	}
	if o.IntervalMin <= 0 {
		o.IntervalMin = DefaultIntervalMin
	}
	if o.IntervalMax < o.IntervalMin {
		o.IntervalMax = o.IntervalMin
	}
	if o.Encoding == "" {
		o.Encoding = wire.EncodingJSON
	}
	if o.Rand == nil {
		o.Rand = sensor.ProcessRand()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Capture == nil {
		o.Capture = caplog.NoopLogger{}
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// LoopStatus is a point-in-time view of one loop.
type LoopStatus struct {
	Asset     string
	Area      string
	State     connection.State
	Running   bool
	Ticks     int64
	Published int64
	Failed    int64
	Skipped   int64
	LastTick  time.Time
	SessionID string
}

// Loop drives one asset.
type Loop struct {
	def     asset.Definition
	opts    Options
	gen     *sensor.Generator
	logger  *slog.Logger
	session *caplog.Session
	channel Publisher

	running   atomic.Bool
	ticks     atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
	lastTick  atomic.Int64
}

// NewLoop creates a loop for def. The channel is attached with SetChannel
// or by the Fleet; the loop's Hooks should be installed on it.
func NewLoop(def asset.Definition, opts Options) *Loop {
	opts = opts.withDefaults()
	def = def.Clone()
	return &Loop{
		def:     def,
		opts:    opts,
		gen:     sensor.NewGenerator(opts.Rand),
		logger:  opts.Logger.With(slog.String("asset", def.ID), slog.String("area", def.Area)),
		session: caplog.NewSession(opts.Capture, def.ID, def.Area),
	}
}

// SetChannel attaches the channel. It must be called before Run.
func (l *Loop) SetChannel(ch Publisher) {
	l.channel = ch
}

// Hooks returns the channel observers feeding this loop's capture session
// and metrics.
func (l *Loop) Hooks() ChannelHooks {
	return ChannelHooks{
		OnStateChange: func(oldState, newState connection.State, err error) {
			if oldState == newState {
				l.session.Error(caplog.LayerTransport, err, "reconnect")
				return
			}
			l.session.ConnectionState(oldState.String(), newState.String(), err)
			l.opts.Metrics.RecordConnectionState(l.def.ID, newState.String())
		},
		OnReconnect: func(attempt int, delay time.Duration) {
			l.logger.Info("reconnect scheduled",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
			l.opts.Metrics.RecordReconnectAttempt(l.def.ID, delay)
		},
	}
}

// Asset returns the loop's asset definition.
func (l *Loop) Asset() asset.Definition {
	return l.def.Clone()
}

// Run opens the channel and ticks until ctx is cancelled. The channel is
// always closed before Run returns. The return value is ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	if l.channel == nil {
		return ErrNoChannel
	}
	l.running.Store(true)
	l.session.LoopState("", loopRunning, "")
	l.logger.Info("simulation started",
		slog.Int("sensors", len(l.def.Sensors)),
		slog.String("session", l.session.ID()))

	defer func() {
		l.channel.Close()
		l.running.Store(false)
		l.session.LoopState(loopRunning, loopStopped, context.Cause(ctx).Error())
		l.logger.Info("simulation stopped",
			slog.Int64("ticks", l.ticks.Load()),
			slog.Int64("published", l.published.Load()),
			slog.Int64("failed", l.failed.Load()))
	}()

	if unknown := l.def.UnknownSensors(); len(unknown) > 0 {
		l.logger.Warn("unknown sensors will be skipped", slog.Any("sensors", unknown))
	}

	// The channel logs the failure; the loop keeps ticking so publishes
	// resume once a reconnect succeeds.
	if err := l.channel.Open(ctx); err != nil {
		l.session.Error(caplog.LayerTransport, err, "open")
	}

	// Owned by this goroutine only.
	st := sensor.NewState()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.tick(ctx, st)
		if err := sleep(ctx, l.nextInterval()); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// tick publishes one reading per known sensor. It returns the number of
// publish attempts.
func (l *Loop) tick(ctx context.Context, st *sensor.State) int {
	l.logger.Info("sending readings", slog.Time("tick", l.opts.Now()))

	attempts := 0
	for _, name := range l.def.Sensors {
		if ctx.Err() != nil {
			return attempts
		}

		r, ok := l.gen.Read(name, st)
		if !ok {
			l.skipped.Add(1)
			l.opts.Metrics.RecordSkipped(l.def.ID, name)
			continue
		}

		attempts++
		l.publish(ctx, r)
	}

	l.ticks.Add(1)
	l.lastTick.Store(l.opts.Now().UnixNano())
	l.opts.Metrics.RecordTick(l.def.ID)
	return attempts
}

func (l *Loop) publish(ctx context.Context, r sensor.Reading) {
	topic := l.def.Topic(l.opts.Namespace, r.Sensor)
	r.Timestamp = l.opts.Now()

	payload, err := wire.Encode(l.opts.Encoding, r)
	if err != nil {
		l.failed.Add(1)
		l.session.Error(caplog.LayerWire, err, "encode "+topic)
		l.logger.Error("encode failed", slog.String("topic", topic), slog.Any("error", err))
		return
	}

	start := time.Now()
	err = l.channel.Publish(ctx, topic, payload, l.opts.QoS)
	latency := time.Since(start)

	l.session.Publish(caplog.PublishEvent{
		Topic:    topic,
		Sensor:   r.Sensor,
		Payload:  payload,
		Encoding: string(l.opts.Encoding),
		QoS:      uint8(l.opts.QoS),
		Latency:  latency,
	}, err)
	l.opts.Metrics.RecordPublish(l.def.ID, r.Sensor, err, latency)

	if err != nil {
		l.failed.Add(1)
		l.logger.Warn("publish failed", slog.String("topic", topic), slog.Any("error", err))
		return
	}
	l.published.Add(1)
	if l.logger.Enabled(ctx, slog.LevelDebug) && l.opts.Encoding == wire.EncodingJSON {
		l.logger.Debug("published", slog.String("topic", topic), slog.String("payload", string(payload)))
	}
}

// nextInterval draws the sleep before the next tick.
func (l *Loop) nextInterval() time.Duration {
	span := int64(l.opts.IntervalMax - l.opts.IntervalMin)
	if span <= 0 {
		return l.opts.IntervalMin
	}
	return l.opts.IntervalMin + time.Duration(l.opts.Rand.Int64N(span+1))
}

// Status returns a snapshot of the loop's counters.
func (l *Loop) Status() LoopStatus {
	s := LoopStatus{
		Asset:     l.def.ID,
		Area:      l.def.Area,
		State:     connection.StateDisconnected,
		Running:   l.running.Load(),
		Ticks:     l.ticks.Load(),
		Published: l.published.Load(),
		Failed:    l.failed.Load(),
		Skipped:   l.skipped.Load(),
		SessionID: l.session.ID(),
	}
	if l.channel != nil {
		s.State = l.channel.State()
	}
	if ns := l.lastTick.Load(); ns != 0 {
		s.LastTick = time.Unix(0, ns)
	}
	return s
}
