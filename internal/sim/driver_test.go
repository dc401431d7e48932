package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cellsolver/internal/models"
	"github.com/san-kum/cellsolver/internal/sim"
)

func params(t1, step, resultStep float64) sim.Parameters {
	p := sim.DefaultParameters()
	p.Integration.Interval = []float64{0, t1}
	p.Integration.StepSize = step
	p.Result.StepSize = resultStep
	return p
}

func floatsMin(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	return floats.Min(v)
}

var _ = Describe("Run", func() {
	Context("with the sawtooth model", func() {
		var m *sim.Model

		BeforeEach(func() {
			var err error
			m, err = sim.Bind(models.SimpleODEDescriptor())
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("stays within [1, 2] for every solver",
			func(solver string) {
				res, err := sim.Run(m, params(4, 0.001, 0.01), sim.Options{Solver: solver})
				Expect(err).NotTo(HaveOccurred())

				a, ok := res.Series.Channel("single_independent_ode.A")
				Expect(ok).To(BeTrue())
				for _, v := range a {
					Expect(v).To(BeNumerically(">=", 1-1e-9))
					Expect(v).To(BeNumerically("<=", 2+0.011))
				}
				Expect(res.Summary.Resets).To(BeNumerically(">=", 3))
			},
			Entry("euler", "euler"),
			Entry("dopri5", "dopri5"),
			Entry("bs23", "bs23"),
			Entry("rk4", "rk4"),
			Entry("dop853", "dop853"),
			Entry("vode", "vode"),
		)

		It("reports the variable of integration", func() {
			res, err := sim.Run(m, params(1, 0.01, 0.1), sim.Options{Solver: sim.SolverEuler})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Series.Title).To(Equal("simple_ode"))
			Expect(res.Series.XInfo.Name).To(Equal("time"))
			Expect(res.Series.XInfo.Units).To(Equal("second"))
		})

		It("rejects an unknown solver without running", func() {
			res, err := sim.Run(m, params(1, 0.01, 0.1), sim.Options{Solver: "bogus"})
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(sim.ErrUnknownSolver))
		})
	})

	Context("with the squid axon model", func() {
		var m *sim.Model

		BeforeEach(func() {
			var err error
			m, err = sim.Bind(models.HodgkinHuxleyDescriptor())
			Expect(err).NotTo(HaveOccurred())
		})

		It("fires an action potential after the stimulus", func() {
			res, err := sim.Run(m, params(30, 0.01, 0.1), sim.Options{Solver: sim.SolverEuler})
			Expect(err).NotTo(HaveOccurred())

			v, ok := res.Series.Channel("membrane.V")
			Expect(ok).To(BeTrue())
			for i, x := range res.Series.X {
				if x < 10 {
					Expect(math.Abs(v[i])).To(BeNumerically("<", 2))
				}
			}
			Expect(floatsMin(v)).To(BeNumerically("<", -80))
		})

		It("agrees between fixed and adaptive solvers", func() {
			p := params(20, 0.01, 0.1)
			fixed, err := sim.Run(m, p, sim.Options{Solver: sim.SolverEuler})
			Expect(err).NotTo(HaveOccurred())

			p.Integration.StepSize = 0.05
			adaptive, err := sim.Run(m, p, sim.Options{Solver: "dopri5"})
			Expect(err).NotTo(HaveOccurred())

			Expect(adaptive.Series.X).To(HaveLen(fixed.Series.Len()))
			a, _ := adaptive.Series.Channel("membrane.V")
			f, _ := fixed.Series.Channel("membrane.V")
			for i, x := range adaptive.Series.X {
				Expect(x).To(BeNumerically("~", fixed.Series.X[i], 1e-9))
				if x < 10 {
					Expect(a[i]).To(BeNumerically("~", f[i], 0.1))
				}
			}
			Expect(floatsMin(a)).To(BeNumerically("<", -80))
			Expect(floatsMin(f)).To(BeNumerically("<", -80))
		})

		It("reports only included channels", func() {
			p := params(5, 0.01, 0.5)
			p.Result.Config.ParameterIncludes = []string{"membrane.V", "sodium_channel.i_Na"}
			res, err := sim.Run(m, p, sim.Options{Solver: sim.SolverEuler})
			Expect(err).NotTo(HaveOccurred())

			ids := []string{}
			for _, c := range res.Series.Channels {
				ids = append(ids, c.ID())
			}
			Expect(ids).To(ConsistOf("membrane.V", "sodium_channel.i_Na"))
			Expect(res.Series.Y).To(HaveLen(2))
		})

		It("drops excluded channels", func() {
			p := params(5, 0.01, 0.5)
			p.Result.Config.ParameterExcludes = []string{"membrane.V"}
			res, err := sim.Run(m, p, sim.Options{Solver: sim.SolverEuler})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Series.Channels).To(HaveLen(21))
			_, ok := res.Series.Channel("membrane.V")
			Expect(ok).To(BeFalse())
		})
	})

	Context("with an externally driven model", func() {
		It("requires a provider", func() {
			m, err := sim.Bind(models.HHExternalDescriptor())
			Expect(err).NotTo(HaveOccurred())

			res, err := sim.Run(m, params(5, 0.01, 0.5), sim.Options{Solver: sim.SolverEuler})
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(sim.ErrExternalVariable))
		})

		It("counts spikes with resets and external input together", func() {
			m, err := sim.Bind(models.LIFDescriptor())
			Expect(err).NotTo(HaveOccurred())

			res, err := sim.Run(m, params(100, 0.01, 0.1), sim.Options{
				Solver:   "bs23",
				Provider: models.DefaultInputCurrent(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Summary.Strategy).To(Equal("bs23+resets+external"))
			Expect(res.Summary.Resets).To(BeNumerically(">", 2))
			Expect(res.Summary.ExternalUpdates).To(BeNumerically(">", 0))
		})
	})

	Context("with a batch of runs", func() {
		It("matches sequential runs", func() {
			m, err := sim.Bind(models.HodgkinHuxleyDescriptor())
			Expect(err).NotTo(HaveOccurred())

			jobs := []sim.Job{}
			for _, solver := range sim.KnownSolvers() {
				jobs = append(jobs, sim.Job{
					Name:    solver,
					Params:  params(15, 0.02, 0.5),
					Options: sim.Options{Solver: solver},
				})
			}

			results, err := sim.RunMany(m, jobs)
			Expect(err).NotTo(HaveOccurred())
			for i, job := range jobs {
				want, err := sim.Run(m, job.Params, job.Options)
				Expect(err).NotTo(HaveOccurred())
				Expect(results[i].Series).To(Equal(want.Series))
			}
		})
	})
})
