// Package transport provides the message bus clients used by the simulator.
//
// A Client owns one session to a broker. Two drivers are available:
//   - mqtt: Eclipse Paho, publishes with QoS 0, 1 or 2
//   - nats: nats.go, topics become subjects ("a/b/c" -> "a.b.c")
//
// # Session
//
//	┌────────────────────────────────┐
//	│   JSON / CBOR reading payload  │
//	├────────────────────────────────┤
//	│        MQTT 3.1.1 / NATS       │
//	├────────────────────────────────┤
//	│     TLS (ssl:// or tls://)     │
//	├────────────────────────────────┤
//	│              TCP               │
//	└────────────────────────────────┘
//
// Drivers never reconnect on their own. A lost session is reported through
// OnConnectionLost and the owner decides what to do (see pkg/connection).
//
// # Acknowledgement
//
// Publish returns once the broker acknowledged the message at the requested
// level or PublishTimeout elapsed. For NATS any level above 0 performs a
// flush round trip.
package transport
