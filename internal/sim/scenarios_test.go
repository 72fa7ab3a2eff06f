package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/grain"
	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/sim"
)

func port(r float64) geom.Polygon {
	return geom.NewPolygon(geom.Circle(r2.Vec{}, r, 128))
}

func spec(outer float64) *grain.Spec {
	return &grain.Spec{
		Outer:        port(outer),
		Length:       0.3302,
		Density:      975,
		A:            0.0004,
		N:            0.37,
		Isp:          180,
		OxidizerFlow: 1.279,
		Scale:        grain.DefaultScale,
	}
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with a 10 mm port in a 50 mm grain", func() {
		var result *sim.Result

		BeforeEach(func() {
			var err error
			result, err = sim.New(spec(50), nil).Run(ctx, port(10), sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
		})

		It("completes the full fire time", func() {
			Expect(result.Status).To(Equal(sim.Completed))
			Expect(result.Series).To(HaveLen(57))
			Expect(result.Series[56].Time).To(BeNumerically("~", 5.619, 1e-12))
		})

		It("grows the port monotonically", func() {
			for i := 1; i < len(result.Series); i++ {
				Expect(result.Series[i].PortArea).To(BeNumerically(">", result.Series[i-1].PortArea))
				Expect(result.Series[i].FuelArea).To(BeNumerically("<", result.Series[i-1].FuelArea))
			}
		})

		It("never gains fuel mass", func() {
			for i, s := range result.Series {
				Expect(s.RemainingFuelMass).To(BeNumerically(">=", 0))
				Expect(s.TotalMassFlow).To(BeNumerically(">=", 0))
				if i > 0 {
					Expect(s.RemainingFuelMass).To(BeNumerically("<=", result.Series[i-1].RemainingFuelMass))
				}
			}
		})

		It("produces thrust within the range set by Isp", func() {
			floor := 1.279 * 180 * propulsion.G0
			for _, s := range result.Series {
				Expect(s.Thrust).To(BeNumerically(">", floor))
				Expect(s.Thrust).To(BeNumerically("<", floor*1.4))
				Expect(s.RegressionRate).To(BeNumerically(">", 0.002))
				Expect(s.RegressionRate).To(BeNumerically("<", 0.015))
			}
		})

		It("slows regression as the port opens", func() {
			first, last := result.Series[0], result.Series[len(result.Series)-1]
			Expect(last.RegressionRate).To(BeNumerically("<", first.RegressionRate))
			Expect(last.MassFlux).To(BeNumerically("<", first.MassFlux))
		})
	})

	Context("when the boundary equals the port", func() {
		It("burns out before the first step", func() {
			result, err := sim.New(spec(10), nil).Run(ctx, port(10), sim.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(sim.BurnedOut))
			Expect(result.Series).To(BeEmpty())
			Expect(result.FailedStep).To(Equal(0))
		})
	})

	Context("without oxidizer flow", func() {
		It("keeps every quantity constant", func() {
			s := spec(50)
			s.OxidizerFlow = 0
			result, err := sim.New(s, nil).Run(ctx, port(10), sim.Config{FireTime: 1, IterationsPerSecond: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(sim.Completed))

			first := result.Series[0]
			Expect(first.Thrust).To(BeZero())
			Expect(first.OFRatio).To(BeZero())
			for _, st := range result.Series[1:] {
				st.Step, st.Time = first.Step, first.Time
				Expect(st).To(Equal(first))
			}
		})
	})

	Context("with a degraded port", func() {
		It("fails with a degenerate geometry error", func() {
			bad := geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}}}
			result, err := sim.New(spec(50), nil).Run(ctx, bad, sim.DefaultConfig())

			Expect(errors.Is(err, geom.ErrDegenerateGeometry)).To(BeTrue())
			Expect(result.Status).To(Equal(sim.Failed))
			var stepErr *sim.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Kind()).To(Equal("degenerate_geometry"))
		})
	})

	Context("with two adjacent ports", func() {
		It("merges them into one port as the web burns through", func() {
			twin := geom.NewPolygon(
				geom.Circle(r2.Vec{X: -8}, 5, 64),
				geom.Circle(r2.Vec{X: 8}, 5, 64),
			)
			cfg := sim.Config{FireTime: 1, IterationsPerSecond: 10, RecordOutlines: true}
			result, err := sim.New(spec(50), nil).Run(ctx, twin, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Outlines[0].Rings).To(HaveLen(2))
			Expect(result.Outlines[len(result.Outlines)-1].Rings).To(HaveLen(1))
		})
	})
})
