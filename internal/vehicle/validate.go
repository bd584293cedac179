package vehicle

import (
	"math"
)

// Check reports the first state field that is non-finite or outside the
// limits.
func (l Limits) Check(s State) error {
	if i := s.Vector().FirstNonFinite(); i >= 0 {
		f := s.fields()[i]
		return &StepError{Field: f.name, Value: f.value, Wrapped: ErrInvalidState}
	}
	if l.MaxSpeed > 0 {
		if v := s.Speed(); v > l.MaxSpeed {
			return &StepError{Field: "speed", Value: v, Wrapped: ErrInvalidState}
		}
	}
	if l.MaxYawRate > 0 && math.Abs(s.R) > l.MaxYawRate {
		return &StepError{Field: "r", Value: s.R, Wrapped: ErrInvalidState}
	}
	return nil
}
