package vehicle_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vehsim/internal/integrators"
	"github.com/san-kum/vehsim/internal/vehicle"
)

type fixedSlip struct{ front, rear float64 }

func (f fixedSlip) SlipAngles(vehicle.State, float64) (float64, float64) { return f.front, f.rear }

type constantMoment float64

func (c constantMoment) YawMoment(vehicle.Params, vehicle.State, vehicle.Input) float64 {
	return float64(c)
}

var _ = Describe("Bicycle", func() {
	var (
		params vehicle.Params
		model  *vehicle.Bicycle
	)

	BeforeEach(func() {
		params = vehicle.DefaultParams()
		model = vehicle.NewBicycle(params)
	})

	Describe("determinism", func() {
		It("returns bit-identical states for identical calls", func() {
			s := vehicle.State{X: 1, Y: -2, Yaw: 0.3, VX: 7, VY: 0.4, R: 0.2}
			in := vehicle.Input{Delta: 0.08, DC: 0.4}

			first, err := model.Advance(s, in, 0.01)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 5; i++ {
				again, err := model.Advance(s, in, 0.01)
				Expect(err).NotTo(HaveOccurred())
				Expect(again).To(Equal(first))
			}
		})

		It("does not modify the state it was given", func() {
			s := vehicle.State{VX: 4, VY: 0.1, R: 0.05}
			before := s
			_, err := model.Advance(s, vehicle.Input{Delta: 0.1, DC: 0.2}, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(before))
		})
	})

	Describe("zero-input stationarity", func() {
		DescribeTable("leaves a stationary vehicle at rest",
			func(dt float64) {
				s := vehicle.State{AX: 0.3, AY: -0.2}
				next, err := model.Advance(s, vehicle.Input{}, dt)
				Expect(err).NotTo(HaveOccurred())

				Expect(next.VX).To(BeZero())
				Expect(next.VY).To(BeZero())
				Expect(next.R).To(BeZero())
				Expect(next.AX).To(Equal(0.3))
				Expect(next.AY).To(Equal(-0.2))
				Expect(next.X).To(BeZero())
				Expect(next.Y).To(BeZero())
				Expect(next.Yaw).To(BeZero())
			},
			Entry("small step", 0.001),
			Entry("nominal step", 0.01),
			Entry("large step", 0.5),
		)
	})

	Describe("low-speed convergence", func() {
		DescribeTable("follows the no-slip prediction below the blend onset",
			func(vx float64) {
				delta := 0.2
				s := vehicle.State{VX: vx}
				next, err := model.Advance(s, vehicle.Input{Delta: delta, DC: 0.1}, 0.01)
				Expect(err).NotTo(HaveOccurred())

				k := params.Kinematic
				Expect(next.VY).To(BeNumerically("~", math.Tan(delta)*next.VX*k.LR/k.L(), 1e-12))
				Expect(next.R).To(BeNumerically("~", math.Tan(delta)*next.VX/k.L(), 1e-12))
			},
			Entry("1.0", 1.0),
			Entry("0.5", 0.5),
			Entry("0.1", 0.1),
		)

		It("weights the dynamic model by zero at standstill", func() {
			Expect(vehicle.KinematicBlend(0)).To(BeZero())
			Expect(vehicle.KinematicBlend(1.5)).To(BeZero())
			Expect(vehicle.KinematicBlend(2.5)).To(BeNumerically("~", 0.5, 1e-15))
		})
	})

	Describe("high-speed convergence", func() {
		It("uses the full dynamic model from 3.5 upwards", func() {
			Expect(vehicle.KinematicBlend(3.5)).To(Equal(1.0))
			Expect(vehicle.KinematicBlend(40)).To(Equal(1.0))
		})

		DescribeTable("matches the pure dynamic model exactly",
			func(s vehicle.State) {
				in := vehicle.Input{Delta: 0.05, DC: 0.3}
				blended, err := model.Advance(s, in, 0.01)
				Expect(err).NotTo(HaveOccurred())
				dynamic, err := vehicle.NewDynamic(params).Advance(s, in, 0.01)
				Expect(err).NotTo(HaveOccurred())
				Expect(blended).To(Equal(dynamic))
			},
			Entry("at the threshold", vehicle.State{VX: 3.5}),
			Entry("with lateral motion", vehicle.State{VX: 3, VY: 2, R: 0.1}),
			Entry("at speed", vehicle.State{VX: 20, VY: -0.3, R: 0.4, Yaw: 1.2}),
		)
	})

	Describe("straight-line acceleration", func() {
		It("only changes v_x and the position along the heading", func() {
			s := vehicle.State{VX: 5}
			in := vehicle.Input{Delta: 0, DC: 0.3}
			dt := 0.01

			next, err := model.Advance(s, in, dt)
			Expect(err).NotTo(HaveOccurred())

			fx := vehicle.LongitudinalForce(params, s, in)
			Expect(fx).To(BeNumerically(">", 0))
			Expect(next.VX).To(BeNumerically("~", 5+fx/params.MLon()*dt, 1e-12))
			Expect(next.Yaw).To(BeZero())
			Expect(next.VY).To(BeZero())
			Expect(next.R).To(BeZero())
			Expect(next.X).To(BeNumerically("~", 0.05, 1e-12))
			Expect(next.Y).To(BeZero())
		})
	})

	Describe("fault injection", func() {
		It("rejects the state produced by a massless vehicle", func() {
			params.Inertia.M = 0
			degenerate := vehicle.NewBicycle(params)

			_, err := degenerate.Advance(vehicle.State{VX: 5}, vehicle.Input{DC: 0.3}, 0.01)
			Expect(err).To(MatchError(vehicle.ErrInvalidState))

			var stepErr *vehicle.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(math.IsNaN(stepErr.Value) || math.IsInf(stepErr.Value, 0)).To(BeTrue())
		})

		It("rejects states beyond the speed limit", func() {
			params.Limits.MaxSpeed = 5
			limited := vehicle.NewBicycle(params)

			_, err := limited.Advance(vehicle.State{VX: 4.99}, vehicle.Input{DC: 1}, 0.1)
			Expect(err).To(MatchError(vehicle.ErrInvalidState))
			Expect(err.Error()).To(ContainSubstring("speed"))
		})

		DescribeTable("rejects non-positive steps before integrating",
			func(dt float64) {
				_, err := model.Advance(vehicle.State{VX: 5}, vehicle.Input{}, dt)
				Expect(err).To(MatchError(vehicle.ErrInvalidInput))
			},
			Entry("zero", 0.0),
			Entry("negative", -0.01),
			Entry("NaN", math.NaN()),
		)

		It("propagates extreme but finite commands", func() {
			_, err := model.Advance(vehicle.State{VX: 10}, vehicle.Input{Delta: 3, DC: 40}, 0.01)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("extension points", func() {
		It("applies a substituted yaw moment controller", func() {
			s := vehicle.State{VX: 10}
			dt := 0.01

			base, err := model.Advance(s, vehicle.Input{}, dt)
			Expect(err).NotTo(HaveOccurred())

			tv := vehicle.NewBicycle(params, vehicle.WithYawMomentController(constantMoment(220)))
			moved, err := tv.Advance(s, vehicle.Input{}, dt)
			Expect(err).NotTo(HaveOccurred())

			Expect(moved.R - base.R).To(BeNumerically("~", 220/params.Inertia.Iz*dt, 1e-12))
		})

		It("uses the slip angles of a substituted provider", func() {
			m := vehicle.NewBicycle(params, vehicle.WithSlipAngleProvider(fixedSlip{front: -0.05}))
			f := m.Forces(vehicle.State{VX: 10}, vehicle.Input{})
			Expect(f.AlphaF).To(Equal(-0.05))
			Expect(f.FyF).NotTo(BeZero())
			Expect(f.FyR).To(BeZero())
		})

		It("accepts an alternative stepper", func() {
			rk := vehicle.NewBicycle(params, vehicle.WithIntegrator(integrators.NewRK4()))
			s := vehicle.State{VX: 12, R: 0.1}
			next, err := rk.Advance(s, vehicle.Input{Delta: 0.05, DC: 0.2}, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.X).To(BeNumerically(">", 0))
		})
	})

	Describe("rear axle load", func() {
		It("reuses the front fraction unless the axle split is enabled", func() {
			Expect(params.RearLoadFraction()).To(Equal(params.FrontLoadFraction()))

			params.Kinematic.AxleLoadSplit = true
			Expect(params.RearLoadFraction()).To(BeNumerically("~", 1-params.Kinematic.WFront, 1e-15))
		})

		It("loads both axles equally for equal slip in the reference configuration", func() {
			m := vehicle.NewBicycle(params, vehicle.WithSlipAngleProvider(fixedSlip{front: 0.03, rear: 0.03}))
			f := m.Forces(vehicle.State{VX: 8}, vehicle.Input{})
			Expect(f.FyF).To(Equal(f.FyR))
		})
	})

	Describe("kinematic model", func() {
		It("keeps the no-slip ratio between lateral velocity and yaw rate at speed", func() {
			km := vehicle.NewKinematic(params)
			next, err := km.Advance(vehicle.State{VX: 15}, vehicle.Input{Delta: 0.1, DC: 0.2}, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.VY / next.R).To(BeNumerically("~", params.Kinematic.LR, 1e-9))
		})
	})

	Describe("cornering", func() {
		It("turns towards positive steering", func() {
			s := vehicle.State{VX: 10}
			in := vehicle.Input{Delta: 0.1, DC: 0.05}
			var err error
			for i := 0; i < 200; i++ {
				s, err = model.Advance(s, in, 0.01)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.R).To(BeNumerically(">", 0))
			Expect(s.Yaw).To(BeNumerically(">", 0))
			Expect(s.Y).To(BeNumerically(">", 0))
		})
	})
})
