// Package asset defines the simulated assets and the topics their readings
// are published under.
//
// Topics follow a fixed four-level layout:
//
//	<namespace>/<area>/<asset-id>/<sensor>
//
// The namespace may itself contain several levels (for example
// "LH/LBC/Biberach"). Topic derivation is a pure function of its inputs so
// subscribers can route by prefix.
package asset
