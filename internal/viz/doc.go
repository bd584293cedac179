// Package viz is the terminal live view of a vehicle run.
//
// It is built on Bubble Tea:
//
//   - [Menu]: preset picker
//   - [Dashboard]: top-down track view with telemetry and parameter tuning
//   - [Canvas]: Braille pixel canvas, addressed in world metres through a [Viewport]
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Reset run and parameters
//	Tab    - Select parameter, +/- to tune it
//	z/Z    - Zoom
//	[ ]    - Replay history
//	Arrows - Steer and throttle (manual driver only)
//	?      - Help overlay
package viz
