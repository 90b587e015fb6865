package sir_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/epicell/sir"
)

var _ = Describe("State", func() {
	var base sir.State

	BeforeEach(func() {
		base = sir.State{
			Population:   1000,
			AgeFractions: []float64{0.25, 0.75},
			Susceptible:  0.9,
			Infected:     0.1,
			Recovered:    0,
		}
	})

	It("should start fully susceptible by default", func() {
		s := sir.DefaultState()

		Expect(s.Population).To(BeZero())
		Expect(s.AgeFractions).To(Equal([]float64{0, 0, 0, 0, 0}))
		Expect(s.Susceptible).To(Equal(1.0))
		Expect(s.Infected).To(BeZero())
		Expect(s.Recovered).To(BeZero())
	})

	It("should treat identical values as equal", func() {
		other := base.Clone()

		Expect(sir.StatesEqual(base, other)).To(BeTrue())
	})

	It("should treat values computed differently but stored equal as equal", func() {
		other := base.Clone()
		other.Susceptible = 1 - 0.1
		other.Infected = 0.05 * 2

		Expect(sir.StatesEqual(base, other)).To(BeTrue())
	})

	DescribeTable("should detect differences",
		func(change func(s *sir.State)) {
			other := base.Clone()
			change(&other)

			Expect(sir.StatesEqual(base, other)).To(BeFalse())
			Expect(sir.StatesEqual(other, base)).To(BeFalse())
		},
		Entry("population", func(s *sir.State) { s.Population++ }),
		Entry("susceptible", func(s *sir.State) { s.Susceptible = 0.89 }),
		Entry("infected", func(s *sir.State) { s.Infected = 0.11 }),
		Entry("recovered", func(s *sir.State) { s.Recovered = 0.01 }),
		Entry("age fraction", func(s *sir.State) { s.AgeFractions[1] = 0.7 }),
		Entry("number of age groups", func(s *sir.State) {
			s.AgeFractions = append(s.AgeFractions, 0)
		}),
	)

	It("should never order one state before another", func() {
		other := base.Clone()
		other.Infected = 0.5

		Expect(sir.CompareForDelayOrdering(base, other)).To(BeFalse())
		Expect(sir.CompareForDelayOrdering(other, base)).To(BeFalse())
		Expect(sir.CompareForDelayOrdering(base, base)).To(BeFalse())
	})

	It("should format the state", func() {
		Expect(sir.FormatState(base)).To(Equal("<1000,0.25,0.75,0.9,0.1,0>"))
		Expect(base.String()).To(Equal(sir.FormatState(base)))
	})

	It("should format a state without age groups", func() {
		s := sir.State{Population: 10, Susceptible: 1}

		Expect(sir.FormatState(s)).To(Equal("<10,1,0,0>"))
	})

	It("should clone without sharing age fractions", func() {
		c := base.Clone()
		c.AgeFractions[0] = 1

		Expect(base.AgeFractions[0]).To(Equal(0.25))
	})
})
