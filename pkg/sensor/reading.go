package sensor

import "time"

// Reading is a single generated value, ready to be encoded and published.
type Reading struct {
	// Sensor is the configured sensor name; it is the last topic segment.
	Sensor string

	// Value is a float64, int64 or string.
	Value any

	// Unit is empty when the kind has none.
	Unit string

	// Timestamp is set when the reading is published.
	Timestamp time.Time
}

// Read generates a Reading for the named sensor. ok is false for unknown
// names. The timestamp is left zero; the publisher stamps it.
func (g *Generator) Read(name string, st *State) (Reading, bool) {
	v, unit, ok := g.Generate(name, st)
	if !ok {
		return Reading{}, false
	}
	return Reading{Sensor: name, Value: v, Unit: unit}, true
}
