// Package dynamo provides the numeric primitives shared by the vehicle models
// and the steppers.
//
//   - [State]: flat state vector
//   - [Control]: flat control vector
//   - [System]: ODE right-hand side (dX/dt = f(X, u, t))
//   - [Integrator]: one fixed step of a numerical scheme
//   - [Configurable]: named scalar parameters, used by sweeps
//
// Vehicle models convert their typed state to and from [State] so any
// [Integrator] can advance them.
package dynamo
