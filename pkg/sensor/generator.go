package sensor

import "math"

// rule describes how values for one kind are produced.
type rule struct {
	unit     string
	stateful bool
	generate func(r Rand, st *State) any
}

var rules = map[Kind]rule{
	KindTemperature: {unit: UnitCelsius, generate: uniform(80.0, 95.0, 2)},
	KindPressure:    {unit: UnitBar, generate: uniform(5.0, 5.5, 2)},
	KindVibration: {unit: UnitMillimeterPerSec, generate: func(r Rand, _ *State) any {
		v := between(r, 0.1, 0.5)
		if r.Float64() < 0.05 {
			v += 1.5
		}
		return Round(v, 3)
	}},
	KindStatus: {generate: func(r Rand, _ *State) any {
		switch p := r.Float64(); {
		case p < 0.90:
			return StatusRunning
		case p < 0.98:
			return StatusIdle
		default:
			return StatusError
		}
	}},
	KindPartsCounter: {unit: UnitPieces, stateful: true, generate: func(_ Rand, st *State) any {
		return st.Increment(CounterPartsProduced)
	}},
	KindBeltSpeed: {unit: UnitMeterPerSec, generate: uniform(1.5, 1.8, 2)},
	KindPackagesPerMinute: {unit: UnitPackagesPerMin, generate: func(r Rand, _ *State) any {
		return int64(18 + r.IntN(5))
	}},
	KindBatteryLevel: {unit: UnitPercent, generate: uniform(70.0, 99.9, 1)},
	KindPositionX:    {unit: UnitMeter, generate: uniform(10.0, 500.0, 2)},
	KindPositionY:    {unit: UnitMeter, generate: uniform(10.0, 800.0, 2)},
}

func between(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func uniform(lo, hi float64, decimals int) func(Rand, *State) any {
	return func(r Rand, _ *State) any {
		return Round(between(r, lo, hi), decimals)
	}
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// Generator produces sensor values.
type Generator struct {
	rng Rand
}

// NewGenerator returns a Generator drawing from rng.
// A nil rng uses the process-wide source.
func NewGenerator(rng Rand) *Generator {
	if rng == nil {
		rng = ProcessRand()
	}
	return &Generator{rng: rng}
}

// Generate returns a value and unit for the named sensor. Values are float64,
// int64 or string. The unit is empty for unit-less kinds. ok is false for
// unknown names, and for stateful kinds such as PartsCounter when st is nil;
// st is left untouched in both cases.
func (g *Generator) Generate(name string, st *State) (value any, unit string, ok bool) {
	kind, ok := Resolve(name)
	if !ok {
		return nil, "", false
	}
	r := rules[kind]
	if r.stateful && st == nil {
		return nil, "", false
	}
	return r.generate(g.rng, st), r.unit, true
}
