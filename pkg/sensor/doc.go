// Package sensor generates synthetic sensor values for simulated assets.
//
// Each sensor kind has a fixed value rule: a uniform draw from a range rounded
// to a fixed precision, a categorical draw, or a per-asset counter. Stateful
// kinds read and update a State that belongs to exactly one asset.
//
// # Kinds
//
//	Temperature        [80.0, 95.0]  2 decimals  °C
//	Pressure           [5.0, 5.5]    2 decimals  bar
//	Vibration          [0.1, 0.5]    +1.5 spike (5%), 3 decimals  mm/s
//	Status             Running 90% / Idle 8% / Error 2%
//	PartsCounter       counter +1    pieces
//	BeltSpeed          [1.5, 1.8]    2 decimals  m/s
//	PackagesPerMinute  18..22        pkg/min
//	BatteryLevel       [70.0, 99.9]  1 decimal   %
//	PositionX          [10.0, 500.0] 2 decimals  m
//	PositionY          [10.0, 800.0] 2 decimals  m
//
// Unknown kinds produce no value. Callers skip them without treating it as
// an error.
package sensor
