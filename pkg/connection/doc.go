// Package connection manages the lifecycle of one bus session.
//
// A Manager wraps a connect function and tracks the session state:
//
//	DISCONNECTED -> CONNECTING -> CONNECTED -> CLOSED
//	                    |             |
//	                    v             v
//	              RECONNECTING <------+   (PolicyBackoff)
//	                    |
//	                    +--> CONNECTED | CLOSED
//
// With PolicyNone a failed attempt or a lost session returns to DISCONNECTED
// and nothing is retried.
//
// # Reconnection Strategy
//
// With PolicyBackoff, reconnect attempts are spaced with exponential backoff:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Continue at 60s until successful
//  5. Reset to 1s on successful reconnection
//
// # Jitter
//
// Many assets usually share one broker, so delays are spread:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
package connection
