package vehicle_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vehsim/internal/vehicle"
)

var _ = Describe("Forces", func() {
	var params vehicle.Params

	BeforeEach(func() {
		params = vehicle.DefaultParams()
	})

	Describe("normal load", func() {
		It("grows with the square of speed", func() {
			rest := vehicle.NormalForce(params, vehicle.State{})
			Expect(rest).To(Equal(params.Inertia.G * params.Inertia.M))

			fast := vehicle.NormalForce(params, vehicle.State{VX: 10})
			Expect(fast - rest).To(BeNumerically("~", params.Aero.CDown*100, 1e-9))
		})
	})

	Describe("tire curve", func() {
		It("never exceeds the peak-force constant", func() {
			fz := vehicle.NormalForce(params, vehicle.State{VX: 20})
			fraction := params.FrontLoadFraction()
			wheelBound := math.Abs(params.Tire.D) * vehicle.WheelLoad(fz, fraction)
			axleBound := math.Abs(params.Tire.D) * fraction * fz

			slips := []float64{-1e6, -50, math.Pi, -math.Pi, 1e6}
			for s := -3.0; s <= 3.0; s += 0.01 {
				slips = append(slips, s)
			}
			for _, slip := range slips {
				Expect(math.Abs(vehicle.WheelLateralForce(params.Tire, slip, fz, fraction))).
					To(BeNumerically("<=", wheelBound+1e-9), "slip %v", slip)
				Expect(math.Abs(vehicle.AxleLateralForce(params.Tire, slip, fz, fraction))).
					To(BeNumerically("<=", axleBound+1e-9), "slip %v", slip)
			}
		})

		It("is zero without slip and odd in slip", func() {
			Expect(params.Tire.LateralFriction(0)).To(BeZero())
			Expect(params.Tire.LateralFriction(0.05)).To(BeNumerically("~", -params.Tire.LateralFriction(-0.05), 1e-15))
		})

		It("saturates for large slip", func() {
			small := math.Abs(params.Tire.LateralFriction(0.01))
			peak := math.Abs(params.Tire.LateralFriction(0.15))
			Expect(peak).To(BeNumerically(">", small))
			Expect(peak).To(BeNumerically("<=", math.Abs(params.Tire.D)))
		})
	})

	Describe("drivetrain", func() {
		DescribeTable("drops braking while stationary or reversing",
			func(vx float64) {
				s := vehicle.State{VX: vx}
				Expect(vehicle.EffectiveDutyCycle(s, vehicle.Input{DC: -0.5})).To(BeZero())
				Expect(vehicle.LongitudinalForce(params, s, vehicle.Input{DC: -0.5})).
					To(Equal(vehicle.LongitudinalForce(params, s, vehicle.Input{DC: 0})))
			},
			Entry("stationary", 0.0),
			Entry("rolling backward", -1.0),
		)

		It("keeps braking while rolling forward", func() {
			s := vehicle.State{VX: 2}
			Expect(vehicle.EffectiveDutyCycle(s, vehicle.Input{DC: -0.5})).To(Equal(-0.5))
		})

		It("increases strictly with throttle", func() {
			s := vehicle.State{VX: 8}
			prev := vehicle.LongitudinalForce(params, s, vehicle.Input{DC: 0})
			for dc := 0.1; dc <= 1.0; dc += 0.1 {
				fx := vehicle.LongitudinalForce(params, s, vehicle.Input{DC: dc})
				Expect(fx).To(BeNumerically(">", prev))
				prev = fx
			}
		})

		It("applies rolling resistance unless the car is at rest", func() {
			Expect(vehicle.RollingResistance(params, vehicle.State{VX: 0})).To(BeZero())
			Expect(vehicle.RollingResistance(params, vehicle.State{VX: -2})).To(Equal(params.DriveTrain.Cr0))
			Expect(vehicle.LongitudinalForce(params, vehicle.State{VX: -2}, vehicle.Input{})).
				To(BeNumerically("~", -params.Aero.CDrag*4-params.DriveTrain.Cr0, 1e-12))
			Expect(vehicle.RollingResistance(params, vehicle.State{VX: 0.1})).To(Equal(params.DriveTrain.Cr0))
		})
	})

	Describe("slip angles", func() {
		It("is zero at rest and opposes steering when rolling straight", func() {
			slip := vehicle.NewGeometricSlip(params.Kinematic)
			f, r := slip.SlipAngles(vehicle.State{}, 0)
			Expect(f).To(BeZero())
			Expect(r).To(BeZero())

			f, r = slip.SlipAngles(vehicle.State{VX: 10}, 0.1)
			Expect(f).To(BeNumerically("~", -0.1, 1e-15))
			Expect(r).To(BeZero())
		})
	})
})
