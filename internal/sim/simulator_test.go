package sim_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

// rollingModel moves forward at VX and rejects the calls listed in fail.
type rollingModel struct {
	calls int
	fail  map[int]bool
}

func (m *rollingModel) Advance(s vehicle.State, in vehicle.Input, dt float64) (vehicle.State, error) {
	m.calls++
	if m.fail[m.calls] {
		return vehicle.State{}, &vehicle.StepError{Field: "vx", Value: math.NaN(), Wrapped: vehicle.ErrInvalidState}
	}
	s.X += s.VX * dt
	s.VX += in.DC * dt
	return s, nil
}

func (m *rollingModel) Params() vehicle.Params { return vehicle.DefaultParams() }

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                                  { return "count" }
func (c *countingMetric) Observe(vehicle.State, vehicle.Input, float64) { c.n++ }
func (c *countingMetric) Value() float64                                { return float64(c.n) }
func (c *countingMetric) Reset()                                        { c.n = 0 }

type resettingDriver struct {
	resets int
}

func (d *resettingDriver) Input(vehicle.State, float64) vehicle.Input { return vehicle.Input{DC: 1} }
func (d *resettingDriver) Reset()                                     { d.resets++ }

var _ = Describe("Simulator", func() {
	var (
		ctx context.Context
		cfg sim.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = sim.Config{Dt: 0.1, Duration: 1.0}
	})

	It("records every tick", func() {
		s := sim.New(&rollingModel{}, control.NewConstant(0, 0))
		res, err := s.Run(ctx, vehicle.State{VX: 2}, cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.ID).NotTo(BeEmpty())
		Expect(res.States).To(HaveLen(11))
		Expect(res.Times).To(HaveLen(11))
		Expect(res.Inputs).To(HaveLen(10))
		Expect(res.StepsTaken).To(Equal(10))
		Expect(res.Times[10]).To(BeNumerically("~", 1.0, 1e-12))
		Expect(res.Final().X).To(BeNumerically("~", 2.0, 1e-9))
		Expect(res.Distance()).To(BeNumerically("~", 2.0, 1e-9))
	})

	It("collects metrics once per tick", func() {
		s := sim.New(&rollingModel{}, control.NewConstant(0, 0))
		m := &countingMetric{}
		s.AddMetric(m)

		res, err := s.Run(ctx, vehicle.State{}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 10.0))
	})

	DescribeTable("rejects bad run configuration",
		func(c sim.Config) {
			s := sim.New(&rollingModel{}, control.NewConstant(0, 0))
			_, err := s.Run(ctx, vehicle.State{}, c)
			Expect(errors.Is(err, vehicle.ErrInvalidInput)).To(BeTrue())
		},
		Entry("zero dt", sim.Config{Dt: 0, Duration: 1}),
		Entry("negative dt", sim.Config{Dt: -0.1, Duration: 1}),
		Entry("NaN dt", sim.Config{Dt: math.NaN(), Duration: 1}),
		Entry("zero duration", sim.Config{Dt: 0.1}),
		Entry("negative max failures", sim.Config{Dt: 0.1, Duration: 1, MaxFailures: -1}),
	)

	It("stops when a stop condition fires", func() {
		s := sim.New(&rollingModel{}, control.NewConstant(0, 0))
		s.AddStopCondition(sim.StopAtDistance(0.9))

		res, err := s.Run(ctx, vehicle.State{VX: 2}, sim.Config{Dt: 0.1, Duration: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stopped).To(BeTrue())
		Expect(res.StepsTaken).To(Equal(5))
	})

	It("honours cancellation", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		s := sim.New(&rollingModel{}, control.NewConstant(0, 0))
		res, err := s.Run(cctx, vehicle.State{}, cfg)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(BeZero())
	})

	Describe("recovery", func() {
		It("halts on the first rejected step and keeps the partial result", func() {
			s := sim.New(&rollingModel{fail: map[int]bool{4: true}}, control.NewConstant(0, 0))

			res, err := s.Run(ctx, vehicle.State{VX: 1}, cfg)
			Expect(errors.Is(err, vehicle.ErrInvalidState)).To(BeTrue())

			var serr sim.SimError
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.Step).To(Equal(3))
			Expect(res.StepsTaken).To(Equal(3))
			Expect(res.Failures).To(Equal(1))
			Expect(res.Final().X).To(BeNumerically("~", 0.3, 1e-9))
		})

		It("holds the last accepted state", func() {
			s := sim.New(&rollingModel{fail: map[int]bool{4: true, 5: true}}, control.NewConstant(0, 0))
			cfg.Recovery = sim.RecoveryHold
			cfg.MaxFailures = 3

			res, err := s.Run(ctx, vehicle.State{VX: 1}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Failures).To(Equal(2))
			Expect(res.StepsTaken).To(Equal(10))
			Expect(res.States[4]).To(Equal(res.States[3]))
			Expect(res.States[5]).To(Equal(res.States[3]))
			Expect(res.Final().X).To(BeNumerically("~", 0.8, 1e-9))
		})

		It("gives up after too many consecutive failures", func() {
			s := sim.New(&rollingModel{fail: map[int]bool{2: true, 3: true, 4: true}}, control.NewConstant(0, 0))
			cfg.Recovery = sim.RecoveryHold
			cfg.MaxFailures = 3

			res, err := s.Run(ctx, vehicle.State{VX: 1}, cfg)
			Expect(errors.Is(err, vehicle.ErrInvalidState)).To(BeTrue())
			Expect(res.Failures).To(Equal(3))
		})

		It("restarts from the initial state and resets the driver", func() {
			d := &resettingDriver{}
			s := sim.New(&rollingModel{fail: map[int]bool{6: true}}, d)
			cfg.Recovery = sim.RecoveryReset

			x0 := vehicle.State{X: -5}
			res, err := s.Run(ctx, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.States[6]).To(Equal(x0))
			Expect(d.resets).To(Equal(1))
		})

		It("restarts a skidpad driver with a clean speed loop", func() {
			k := vehicle.DefaultParams().Kinematic
			driver := control.NewSkidpad(k, 9.125, control.NewPID(0.01, 0.01, 0, 10))
			s := sim.New(&rollingModel{fail: map[int]bool{300: true}}, driver)
			cfg = sim.Config{Dt: 0.1, Duration: 40, Recovery: sim.RecoveryReset}

			x0 := vehicle.State{}
			res, err := s.Run(ctx, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Failures).To(Equal(1))
			Expect(res.States[300]).To(Equal(x0))

			fresh := control.NewSkidpad(k, 9.125, control.NewPID(0.01, 0.01, 0, 10))
			Expect(res.Inputs[300]).To(Equal(fresh.Input(x0, 0)))
			Expect(res.Inputs[299]).NotTo(Equal(res.Inputs[300]))
		})
	})

	It("drives the bicycle model through the acceleration run", func() {
		s := sim.New(vehicle.NewBicycle(vehicle.DefaultParams()), control.NewConstant(0, 1))
		s.AddStopCondition(sim.StopAtDistance(75))

		res, err := s.Run(ctx, vehicle.State{}, sim.Config{Dt: 0.01, Duration: 20})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stopped).To(BeTrue())
		Expect(res.Final().X).To(BeNumerically(">=", 75))
		Expect(res.Final().Y).To(BeNumerically("~", 0, 1e-9))
	})

	It("reports rejected steps from the callback loop", func() {
		s := sim.New(&rollingModel{fail: map[int]bool{3: true}}, control.NewConstant(0, 0))
		seen := 0
		err := s.RunWithCallback(ctx, vehicle.State{}, cfg, func(vehicle.State, vehicle.Input, float64) bool {
			seen++
			return true
		})
		Expect(errors.Is(err, vehicle.ErrInvalidState)).To(BeTrue())
		Expect(seen).To(Equal(2))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent members", func() {
		var built atomic.Int32
		factory := func(i int) (*sim.Simulator, vehicle.State, error) {
			built.Add(1)
			return sim.New(&rollingModel{}, control.NewConstant(0, 0)), vehicle.State{VX: float64(i)}, nil
		}

		e := sim.NewEnsemble(factory, 4)
		e.SetWorkers(2)
		results, err := e.Run(context.Background(), sim.Config{Dt: 0.1, Duration: 1})

		Expect(err).NotTo(HaveOccurred())
		Expect(built.Load()).To(Equal(int32(4)))
		Expect(results).To(HaveLen(4))
		for i, r := range results {
			Expect(r.Final().X).To(BeNumerically("~", float64(i), 1e-9))
		}
	})

	It("joins member errors", func() {
		factory := func(i int) (*sim.Simulator, vehicle.State, error) {
			if i == 1 {
				return nil, vehicle.State{}, errors.New("boom")
			}
			return sim.New(&rollingModel{}, control.NewConstant(0, 0)), vehicle.State{}, nil
		}

		results, err := sim.NewEnsemble(factory, 3).Run(context.Background(), sim.Config{Dt: 0.1, Duration: 1})
		Expect(err).To(MatchError(ContainSubstring("boom")))
		Expect(results[1]).To(BeNil())
		Expect(results[0]).NotTo(BeNil())
	})

	It("keeps each member's run error", func() {
		factory := func(i int) (*sim.Simulator, vehicle.State, error) {
			fail := map[int]bool{}
			if i == 2 {
				fail[3] = true
			}
			return sim.New(&rollingModel{fail: fail}, control.NewConstant(0, 0)), vehicle.State{}, nil
		}

		members := sim.NewEnsemble(factory, 3).RunMembers(context.Background(), sim.Config{Dt: 0.1, Duration: 1})
		Expect(members).To(HaveLen(3))
		Expect(members[0].Err).NotTo(HaveOccurred())
		Expect(members[1].Err).NotTo(HaveOccurred())

		var serr sim.SimError
		Expect(errors.As(members[2].Err, &serr)).To(BeTrue())
		Expect(serr.Step).To(Equal(2))
		Expect(errors.Is(members[2].Err, vehicle.ErrInvalidState)).To(BeTrue())
		Expect(members[2].Result.Failures).To(Equal(1))
	})
})

var _ = Describe("ParseRecovery", func() {
	DescribeTable("parses policy names",
		func(name string, want sim.Recovery) {
			got, err := sim.ParseRecovery(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
			Expect(got.String()).To(Equal(map[sim.Recovery]string{
				sim.RecoveryHalt: "halt", sim.RecoveryHold: "hold", sim.RecoveryReset: "reset",
			}[want]))
		},
		Entry("default", "", sim.RecoveryHalt),
		Entry("halt", "halt", sim.RecoveryHalt),
		Entry("hold", "HOLD", sim.RecoveryHold),
		Entry("reset", "reset", sim.RecoveryReset),
	)

	It("rejects unknown names", func() {
		_, err := sim.ParseRecovery("retry")
		Expect(err).To(HaveOccurred())
	})
})
