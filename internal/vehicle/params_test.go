package vehicle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/vehicle"
)

var _ = Describe("Params", func() {
	It("accepts the defaults", func() {
		Expect(vehicle.DefaultParams().Validate()).To(Succeed())
	})

	DescribeTable("rejects degenerate blocks",
		func(name string, value float64) {
			p := vehicle.DefaultParams()
			Expect(p.SetParam(name, value)).To(Succeed())
			Expect(p.Validate()).To(MatchError(dynamo.ErrParameterBounds))
		},
		Entry("massless", "m", 0.0),
		Entry("no yaw inertia", "I_z", -1.0),
		Entry("negative drag", "c_drag", -0.1),
		Entry("front fraction above one", "w_front", 1.2),
		Entry("negative speed limit", "max_speed", -1.0),
	)

	It("round-trips named parameters", func() {
		p := vehicle.DefaultParams()
		Expect(p.SetParam("cm1", 4200)).To(Succeed())
		Expect(p.DriveTrain.Cm1).To(Equal(4200.0))
		Expect(p.GetParams()).To(HaveKeyWithValue("cm1", 4200.0))
		Expect(p.GetParams()).To(HaveLen(len(vehicle.ParamNames())))
	})

	It("reports unknown names", func() {
		p := vehicle.DefaultParams()
		Expect(p.SetParam("warp_factor", 9)).To(MatchError(dynamo.ErrUnknownParam))
	})

	It("derives the wheelbase and longitudinal mass", func() {
		p := vehicle.DefaultParams()
		p.DriveTrain.MLonAdd = 10
		Expect(p.Kinematic.L()).To(BeNumerically("~", p.Kinematic.LF+p.Kinematic.LR, 1e-15))
		Expect(p.MLon()).To(Equal(p.Inertia.M + 10))
	})
})
