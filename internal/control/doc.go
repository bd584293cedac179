// Package control provides driver input sources and yaw-moment controllers
// for the vehicle models.
//
// Drivers compute the steering and throttle command for each tick from the
// current state:
//
//   - [Constant]: fixed command
//   - [Manual]: command set from outside (keyboard, remote)
//   - [Script]: piecewise constant commands over time
//   - [SineSteer]: sinusoidal steering sweep
//   - [Cruise]: PID speed hold with fixed steering
//   - [Skidpad]: constant-radius circle at a target speed
//   - [LaneKeep]: state-feedback steering onto a lateral offset
//
// [TorqueVectoring] implements [vehicle.YawMomentController].
//
// # Usage
//
//	drv := control.NewCruise(control.NewPID(0.4, 0.05, 0, 15), 0)
//	sim := sim.New(model, drv)
//	// Driver.Input is called each tick
package control
