// Package viz animates a grain burn in the terminal.
//
// [Model] steps a simulation on every tick and draws the outer boundary,
// the initial port, a contour every few steps and the current port on a
// Braille [Canvas], next to a thrust chart and the latest snapshot.
// [Picker] lists the presets and starts a [Model] for the chosen one.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the burn
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[ ]   - Step back/forward through recorded snapshots
package viz
