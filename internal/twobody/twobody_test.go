package twobody_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/twobody"
)

func equalMasses() (twobody.Body, twobody.Body) {
	return twobody.Body{Mass: 5, Position: dynamo.State{0, 0}, Velocity: dynamo.State{0.5, 0}},
		twobody.Body{Mass: 5, Position: dynamo.State{1, 1}, Velocity: dynamo.State{-0.5, 0}}
}

var _ = Describe("System", func() {
	var sys *twobody.System

	BeforeEach(func() {
		b1, b2 := equalMasses()
		var err error
		sys, err = twobody.New(b1, b2, 0.1)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("rejects non-positive masses", func() {
			b1, b2 := equalMasses()
			b1.Mass = 0
			_, err := twobody.New(b1, b2, 0.1)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))

			b1.Mass, b2.Mass = 5, -1
			_, err = twobody.New(b1, b2, 0.1)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("rejects vectors of mixed dimension", func() {
			b1, b2 := equalMasses()
			b2.Velocity = dynamo.State{-0.5, 0, 0}
			_, err := twobody.New(b1, b2, 0.1)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("does not alias caller vectors", func() {
			b1, b2 := equalMasses()
			s, err := twobody.New(b1, b2, 0.1)
			Expect(err).NotTo(HaveOccurred())
			b2.Position[0] = 42
			Expect(s.InitialState()[1]).To(Equal(1.0))
		})
	})

	It("builds the relative initial state", func() {
		Expect(sys.StateDim()).To(Equal(5))
		Expect(sys.InitialState()).To(Equal(dynamo.State{0, 1, 1, -1, 0}))
		Expect(sys.Mu()).To(BeNumerically("~", 1.0, 1e-15))
	})

	It("evaluates inverse-square gravity", func() {
		x := dynamo.State{0, 3, 4, 0.25, -0.5}
		d := sys.Derivative().Derive(x)

		mu := sys.Mu()
		Expect(d).To(HaveLen(5))
		Expect(d[1]).To(Equal(0.25))
		Expect(d[2]).To(Equal(-0.5))
		Expect(d[3]).To(BeNumerically("~", -mu*3/125, 1e-15))
		Expect(d[4]).To(BeNumerically("~", -mu*4/125, 1e-15))
		Expect(dynamo.Eval(sys.Derivative(), x)[0]).To(Equal(1.0))
	})

	It("moves the barycentre uniformly", func() {
		a, b := sys.CenterOfMassMotion()
		Expect(a).To(Equal(dynamo.State{0, 0}))
		Expect(b).To(Equal(dynamo.State{0.5, 0.5}))
	})

	Describe("Reader", func() {
		It("recovers the initial body positions", func() {
			p := sys.Reader().Read(sys.InitialState())
			Expect(p.Body1).To(Equal(dynamo.State{0, 0}))
			Expect(p.Body2).To(Equal(dynamo.State{1, 1}))
		})

		It("weights the split by the opposite mass", func() {
			r := twobody.NewReader(dynamo.State{1, 0}, dynamo.State{0, 0}, 1, 3)
			p := r.Read(dynamo.State{2, 4, 0, 0, 0})

			Expect(p.Time).To(Equal(2.0))
			Expect(p.Body1[0]).To(BeNumerically("~", 2-4*0.75, 1e-15))
			Expect(p.Body2[0]).To(BeNumerically("~", 2+4*0.25, 1e-15))
			Expect(p.Body2.Sub(p.Body1)).To(Equal(dynamo.State{4, 0}))
		})

		It("reads propagator output with a padded tail", func() {
			p := sys.Reader().Read(dynamo.State{0, 1, 1, 0, 0})
			Expect(p.Body2.Sub(p.Body1)).To(Equal(dynamo.State{1, 1}))
			Expect(p.String()).To(Equal("0,0,1,1"))
		})
	})

	Describe("the equal-mass scenario under RK4", func() {
		var states []dynamo.State

		BeforeEach(func() {
			rk := integrators.NewRK4(sys.Derivative(), sys.InitialState(), 0.001)
			var err error
			states, err = dynamo.Take(rk, 2000)
			Expect(err).NotTo(HaveOccurred())
		})

		It("stays finite and bounded", func() {
			Expect(states).To(HaveLen(2000))
			for _, x := range states {
				Expect(x.IsValid()).To(BeTrue())
				Expect(dynamo.Abs(x[1:3])).To(BeNumerically("<", 5))
				Expect(dynamo.Abs(x[1:3])).To(BeNumerically(">", 0.1))
			}
			Expect(states[len(states)-1][0]).To(BeNumerically("~", 2.0, 1e-9))
		})

		It("conserves orbital energy", func() {
			e0 := sys.Energy(sys.InitialState())
			for _, x := range states {
				Expect(math.Abs(sys.Energy(x)-e0) / math.Abs(e0)).To(BeNumerically("<", 1e-9))
			}
		})

		It("keeps the barycentre between the bodies", func() {
			reader := sys.Reader()
			for i := 0; i < len(states); i += 100 {
				p := reader.Read(states[i])
				mid := p.Body1.Add(p.Body2).Scale(0.5)
				Expect(mid[0]).To(BeNumerically("~", 0.5, 1e-12))
				Expect(mid[1]).To(BeNumerically("~", 0.5, 1e-12))
			}
		})
	})
})
