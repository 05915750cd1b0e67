package sensor

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand returns the same draws on every call.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(int) int { return r.n }
func (r fixedRand) Int64N(int64) int64 { return int64(r.n) }

func TestGenerateRanges(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(1, 2)))

	tests := []struct {
		kind     Kind
		lo, hi   float64
		unit     string
		decimals int
	}{
		{KindTemperature, 80.0, 95.0, UnitCelsius, 2},
		{KindPressure, 5.0, 5.5, UnitBar, 2},
		{KindVibration, 0.1, 2.0, UnitMillimeterPerSec, 3},
		{KindBeltSpeed, 1.5, 1.8, UnitMeterPerSec, 2},
		{KindBatteryLevel, 70.0, 99.9, UnitPercent, 1},
		{KindPositionX, 10.0, 500.0, UnitMeter, 2},
		{KindPositionY, 10.0, 800.0, UnitMeter, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			st := NewState()
			for i := 0; i < 500; i++ {
				v, unit, ok := g.Generate(string(tt.kind), st)
				require.True(t, ok)
				assert.Equal(t, tt.unit, unit)

				f, isFloat := v.(float64)
				require.True(t, isFloat, "value %v is %T", v, v)
				assert.GreaterOrEqual(t, f, tt.lo)
				assert.LessOrEqual(t, f, tt.hi)
				assert.Equal(t, Round(f, tt.decimals), f)
			}
		})
	}
}

func TestGenerateVibrationSpike(t *testing.T) {
	t.Run("NoSpike", func(t *testing.T) {
		g := NewGenerator(fixedRand{f: 0.5})
		v, _, _ := g.Generate(string(KindVibration), NewState())
		assert.Equal(t, 0.3, v)
	})

	t.Run("Spike", func(t *testing.T) {
		g := NewGenerator(fixedRand{f: 0.0})
		v, _, _ := g.Generate(string(KindVibration), NewState())
		assert.Equal(t, 1.6, v)
	})
}

func TestGenerateStatus(t *testing.T) {
	tests := []struct {
		draw float64
		want string
	}{
		{0.0, StatusRunning},
		{0.899, StatusRunning},
		{0.90, StatusIdle},
		{0.979, StatusIdle},
		{0.98, StatusError},
		{0.999, StatusError},
	}
	for _, tt := range tests {
		g := NewGenerator(fixedRand{f: tt.draw})
		v, unit, ok := g.Generate(string(KindStatus), NewState())
		require.True(t, ok)
		assert.Equal(t, tt.want, v, "draw %v", tt.draw)
		assert.Empty(t, unit)
	}
}

func TestGenerateStatusDistribution(t *testing.T) {
	g := NewGenerator(nil)
	seen := map[any]int{}
	for i := 0; i < 5000; i++ {
		v, _, _ := g.Generate(string(KindStatus), NewState())
		seen[v]++
	}
	for v := range seen {
		assert.Contains(t, []any{StatusRunning, StatusIdle, StatusError}, v)
	}
	assert.Greater(t, seen[StatusRunning], seen[StatusIdle])
}

func TestGeneratePackagesPerMinute(t *testing.T) {
	g := NewGenerator(nil)
	for i := 0; i < 500; i++ {
		v, unit, ok := g.Generate(string(KindPackagesPerMinute), NewState())
		require.True(t, ok)
		assert.Equal(t, UnitPackagesPerMin, unit)
		n, isInt := v.(int64)
		require.True(t, isInt)
		assert.GreaterOrEqual(t, n, int64(18))
		assert.LessOrEqual(t, n, int64(22))
	}
}

func TestGeneratePartsCounter(t *testing.T) {
	g := NewGenerator(nil)

	t.Run("StartsAtOne", func(t *testing.T) {
		st := NewState()
		assert.Equal(t, int64(0), st.Counter(CounterPartsProduced))
		v, unit, ok := g.Generate(string(KindPartsCounter), st)
		require.True(t, ok)
		assert.Equal(t, int64(1), v)
		assert.Equal(t, UnitPieces, unit)
	})

	t.Run("Monotonic", func(t *testing.T) {
		st := NewState()
		var last int64
		for i := 0; i < 100; i++ {
			v, _, _ := g.Generate(string(KindPartsCounter), st)
			n := v.(int64)
			assert.Equal(t, last+1, n)
			last = n
		}
	})

	t.Run("IndependentStates", func(t *testing.T) {
		a, b := NewState(), NewState()
		for i := 0; i < 5; i++ {
			g.Generate(string(KindPartsCounter), a)
		}
		v, _, _ := g.Generate(string(KindPartsCounter), b)
		assert.Equal(t, int64(1), v)
		assert.Equal(t, int64(5), a.Counter(CounterPartsProduced))
	})
}

func TestGenerateUnknown(t *testing.T) {
	g := NewGenerator(nil)
	st := NewState()
	v, unit, ok := g.Generate("Humidity", st)
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Empty(t, unit)
	assert.Empty(t, st.Counters())
}

func TestGenerateNilState(t *testing.T) {
	g := NewGenerator(nil)

	v, unit, ok := g.Generate("PartsCounter", nil)
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Empty(t, unit)

	_, ok = g.Read("PartsCounter", nil)
	assert.False(t, ok)

	// Stateless kinds never touch the state.
	_, unit, ok = g.Generate("Temperature", nil)
	assert.True(t, ok)
	assert.Equal(t, UnitCelsius, unit)
}

func TestGenerateAliases(t *testing.T) {
	g := NewGenerator(nil)
	st := NewState()

	v, unit, ok := g.Generate("Teilezaehler", st)
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, UnitPieces, unit)

	_, unit, ok = g.Generate("Temperatur", st)
	require.True(t, ok)
	assert.Equal(t, UnitCelsius, unit)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.13, Round(0.125, 2))
	assert.Equal(t, -0.13, Round(-0.125, 2))
	assert.Equal(t, 2.5, Round(2.45, 1))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, -3.0, Round(-2.5, 0))
}

func TestRead(t *testing.T) {
	g := NewGenerator(fixedRand{f: 0.99})
	r, ok := g.Read("Status", NewState())
	require.True(t, ok)
	assert.Equal(t, "Status", r.Sensor)
	assert.Equal(t, StatusError, r.Value)
	assert.Empty(t, r.Unit)
	assert.True(t, r.Timestamp.IsZero())

	_, ok = g.Read("Nope", NewState())
	assert.False(t, ok)
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 10)
	assert.Equal(t, KindBatteryLevel, kinds[0])
	assert.Equal(t, UnitCelsius, KindTemperature.Unit())
	assert.Empty(t, KindStatus.Unit())
	assert.True(t, Known("Position_X"))
	assert.False(t, Known("position_x"))
}
