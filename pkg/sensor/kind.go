package sensor

import "sort"

// Kind is a canonical sensor kind name.
type Kind string

// Canonical sensor kinds.
const (
	KindTemperature       Kind = "Temperature"
	KindPressure          Kind = "Pressure"
	KindVibration         Kind = "Vibration"
	KindStatus            Kind = "Status"
	KindPartsCounter      Kind = "PartsCounter"
	KindBeltSpeed         Kind = "BeltSpeed"
	KindPackagesPerMinute Kind = "PackagesPerMinute"
	KindBatteryLevel      Kind = "BatteryLevel"
	KindPositionX         Kind = "PositionX"
	KindPositionY         Kind = "PositionY"
)

// Units.
const (
	UnitCelsius          = "°C"
	UnitBar              = "bar"
	UnitMillimeterPerSec = "mm/s"
	UnitPieces           = "pieces"
	UnitMeterPerSec      = "m/s"
	UnitPackagesPerMin   = "pkg/min"
	UnitPercent          = "%"
	UnitMeter            = "m"
)

// Status values.
const (
	StatusRunning = "Running"
	StatusIdle    = "Idle"
	StatusError   = "Error"
)

// aliases maps the sensor names used by the first generation of asset
// catalogs onto canonical kinds. Topics keep the configured name.
var aliases = map[string]Kind{
	"Temperatur":          KindTemperature,
	"Druck":               KindPressure,
	"Teilezaehler":        KindPartsCounter,
	"Bandgeschwindigkeit": KindBeltSpeed,
	"Pakete_pro_Minute":   KindPackagesPerMinute,
	"Batteriestatus":      KindBatteryLevel,
	"Position_X":          KindPositionX,
	"Position_Y":          KindPositionY,
}

// Resolve maps a configured sensor name to its canonical kind.
// The second return value is false for unknown names.
func Resolve(name string) (Kind, bool) {
	k := Kind(name)
	if _, ok := rules[k]; ok {
		return k, true
	}
	if k, ok := aliases[name]; ok {
		return k, true
	}
	return "", false
}

// Known reports whether name resolves to a sensor kind.
func Known(name string) bool {
	_, ok := Resolve(name)
	return ok
}

// Kinds returns all canonical kinds in alphabetical order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(rules))
	for k := range rules {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Unit returns the unit of a kind, or "" for unit-less and unknown kinds.
func (k Kind) Unit() string {
	if r, ok := rules[k]; ok {
		return r.unit
	}
	return ""
}
