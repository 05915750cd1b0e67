package metrics

import "time"

// NopMetrics discards all measurements.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements Collector.
var _ Collector = (*NopMetrics)(nil)

// NewNop creates a no-op collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordTick discards the tick.
func (n *NopMetrics) RecordTick(_ /* asset */ string) {}

// RecordPublish discards the publish.
func (n *NopMetrics) RecordPublish(_ /* asset */, _ /* sensor */ string, _ error, _ time.Duration) {}

// RecordSkipped discards the skip.
func (n *NopMetrics) RecordSkipped(_ /* asset */, _ /* sensor */ string) {}

// RecordConnectionState discards the state.
func (n *NopMetrics) RecordConnectionState(_ /* asset */, _ /* state */ string) {}

// RecordReconnectAttempt discards the attempt.
func (n *NopMetrics) RecordReconnectAttempt(_ /* asset */ string, _ time.Duration) {}

// SetActiveLoops discards the count.
func (n *NopMetrics) SetActiveLoops(_ int) {}
