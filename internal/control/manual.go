package control

import (
	"sync"

	"github.com/samber/lo"
	"github.com/san-kum/vehsim/internal/vehicle"
)

// Manual passes an externally set command to the vehicle.
// Used for keyboard driving in the live view.
type Manual struct {
	mu       sync.Mutex
	in       vehicle.Input
	maxSteer float64
}

func NewManual(maxSteer float64) *Manual {
	return &Manual{maxSteer: maxSteer}
}

// Set replaces the current command.
func (m *Manual) Set(in vehicle.Input) {
	m.mu.Lock()
	m.in = in
	m.mu.Unlock()
}

// Nudge adds to the current command, saturating steering at the configured
// lock and throttle at [-1, 1].
func (m *Manual) Nudge(dDelta, dDC float64) vehicle.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.in.Delta = lo.Clamp(m.in.Delta+dDelta, -m.maxSteer, m.maxSteer)
	m.in.DC = lo.Clamp(m.in.DC+dDC, -1.0, 1.0)
	return m.in
}

// Center returns the steering to straight ahead and releases the throttle.
func (m *Manual) Center() {
	m.Set(vehicle.Input{})
}

func (m *Manual) Input(s vehicle.State, t float64) vehicle.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.in
}
