// Package discovery finds the message broker via mDNS/DNS-SD.
//
// Brokers commonly announce themselves with one of these service types:
//
//   - _mqtt._tcp: MQTT over plain TCP
//   - _secure-mqtt._tcp: MQTT over TLS
//   - _nats._tcp: NATS
//
// Discovery only fills in host and port when none are configured; the bus
// credentials always come from configuration.
package discovery
