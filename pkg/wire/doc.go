// Package wire encodes readings into the payloads published on the bus.
//
// The default encoding is JSON with three keys:
//
//	{"value": 83.41, "unit": "°C", "timestamp": "2025-03-01T10:15:02.118+01:00"}
//
// "unit" is omitted for unit-less sensors. "timestamp" is RFC 3339 with
// millisecond precision, taken when the reading is published.
//
// CBOR (RFC 8949) is available as a compact alternative using the same keys.
package wire
