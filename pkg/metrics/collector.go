// Package metrics records simulator activity for Prometheus.
package metrics

import "time"

// Collector receives simulator measurements. Implementations must be safe
// for concurrent use by all asset loops.
type Collector interface {
	// RecordTick counts one completed tick of an asset loop.
	RecordTick(asset string)

	// RecordPublish records one publish attempt and how long it took.
	RecordPublish(asset, sensor string, err error, latency time.Duration)

	// RecordSkipped counts a sensor that produced no value.
	RecordSkipped(asset, sensor string)

	// RecordConnectionState tracks the current bus session state of an asset.
	RecordConnectionState(asset, state string)

	// RecordReconnectAttempt counts a scheduled reconnect and its delay.
	RecordReconnectAttempt(asset string, delay time.Duration)

	// SetActiveLoops sets the number of running asset loops.
	SetActiveLoops(n int)
}
