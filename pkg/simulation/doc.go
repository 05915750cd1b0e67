// Package simulation runs the asset fleet.
//
// Each configured asset gets one Loop bound to its own Publisher. A Loop
// owns its sensor.State exclusively, so loops share no mutable state and
// need no locking between them. Fleet starts the loops under one errgroup
// and waits for all of them to finish their shutdown once the context is
// cancelled.
//
// # Tick
//
// On every tick a Loop walks the asset's sensors in configured order:
//
//	generate -> encode -> publish -> record
//
// Unknown sensors are skipped. A failed publish is logged, counted and
// dropped; the remaining sensors of the tick are still published. After the
// tick the loop sleeps a random interval in [IntervalMin, IntervalMax].
package simulation
