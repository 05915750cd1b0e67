package log

import (
	"time"
)

// Event is one entry of the capture log.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies one run of one asset loop (UUID).
	SessionID string `cbor:"2,keyasint"`

	// AssetID is the simulated asset.
	AssetID string `cbor:"3,keyasint"`

	// Area is the asset's area label.
	Area string `cbor:"4,keyasint,omitempty"`

	// Layer where the event was captured.
	Layer Layer `cbor:"5,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"6,keyasint"`

	// Type-specific payload (one of these will be set).
	Publish     *PublishEvent     `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Layer indicates which part of the simulator captured the event.
type Layer uint8

const (
	// LayerTransport is the bus session.
	LayerTransport Layer = 0
	// LayerWire is payload encoding.
	LayerWire Layer = 1
	// LayerSimulation is the asset loop.
	LayerSimulation Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSimulation:
		return "SIMULATION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPublish indicates a reading publish attempt.
	CategoryPublish Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPublish:
		return "PUBLISH"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PublishEvent captures one reading handed to the bus.
type PublishEvent struct {
	// Topic the reading was published on.
	Topic string `cbor:"1,keyasint"`

	// Sensor is the configured sensor name.
	Sensor string `cbor:"2,keyasint"`

	// Payload is the encoded reading.
	Payload []byte `cbor:"3,keyasint,omitempty"`

	// Encoding is "json" or "cbor".
	Encoding string `cbor:"4,keyasint,omitempty"`

	// QoS is the requested acknowledgement level.
	QoS uint8 `cbor:"5,keyasint"`

	// Outcome of the publish.
	Outcome Outcome `cbor:"6,keyasint"`

	// Latency from hand-off to acknowledgement (or failure).
	// Stored as nanoseconds.
	Latency time.Duration `cbor:"7,keyasint,omitempty"`

	// Reason for a failure.
	Reason string `cbor:"8,keyasint,omitempty"`
}

// Outcome is the result of a publish attempt.
type Outcome uint8

const (
	// OutcomeDelivered means the broker acknowledged the message.
	OutcomeDelivered Outcome = 0
	// OutcomeFailed means the message was dropped.
	OutcomeFailed Outcome = 1
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "DELIVERED"
	case OutcomeFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection and loop lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a bus session state change.
	StateEntityConnection StateEntity = 0
	// StateEntityLoop indicates an asset loop started or stopped.
	StateEntityLoop StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityLoop:
		return "LOOP"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
