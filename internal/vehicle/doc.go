// Package vehicle implements the single-track ("bicycle") vehicle state
// integrator.
//
// Each call to [Model.Advance] computes, in order: the normal load, the
// slip angles (through a [SlipAngleProvider]), the lateral tire forces per
// axle, the drivetrain force, the stabilizing yaw moment (through a
// [YawMomentController]), the rigid-body derivative, one integrator step and
// the low-speed kinematic correction. The result is validated before it is
// returned.
//
//   - [Bicycle]: blends the dynamic and kinematic predictions by speed
//   - [NewDynamic]: force-based model only
//   - [NewKinematic]: no-slip geometric model only
//
// # Example
//
//	model := vehicle.NewBicycle(vehicle.DefaultParams())
//	next, err := model.Advance(state, vehicle.Input{Delta: 0.1, DC: 0.3}, 0.01)
//	if errors.Is(err, vehicle.ErrInvalidState) {
//	    // keep state, reset or halt
//	}
//
// # Thread Safety
//
// Advance never mutates its arguments. A model instance may hold integrator
// scratch buffers, so one instance must not be advanced from two goroutines
// at once; give each vehicle its own instance.
package vehicle
