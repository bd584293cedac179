// Package analysis post-processes recorded runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: frequency content of a
//     trace, e.g. the yaw-rate response to a sine steer
//   - [Gain]: amplitude ratio of two traces at a frequency
//   - [NewPhasePlane]: sideslip against yaw rate, the usual handling
//     stability plot
//
// A slalom response is read like this:
//
//	yaw := analysis.Trace(res.States, func(s vehicle.State) float64 { return s.R })
//	f, _ := analysis.DominantFrequency(yaw, dt)
package analysis
