package sir_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/epicell/sir"
)

var _ = Describe("Codec", func() {
	Context("state", func() {
		It("should decode a JSON state", func() {
			s, err := sir.ParseState([]byte(`{
				"population": 1000,
				"age_divided_populations": [0.3, 0.7],
				"susceptible": 0.9,
				"infected": 0.1,
				"recovered": 0
			}`))

			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(sir.State{
				Population:   1000,
				AgeFractions: []float64{0.3, 0.7},
				Susceptible:  0.9,
				Infected:     0.1,
				Recovered:    0,
			}))
		})

		It("should accept integer typed records", func() {
			s, err := sir.DecodeState(map[string]any{
				"population":              int(20),
				"age_divided_populations": []any{int(1)},
				"susceptible":             int(1),
				"infected":                int64(0),
				"recovered":               uint64(0),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(s.Population).To(Equal(uint32(20)))
			Expect(s.AgeFractions).To(Equal([]float64{1}))
			Expect(s.Susceptible).To(Equal(1.0))
		})

		DescribeTable("should report each missing field",
			func(field string) {
				record := sir.EncodeState(sir.DefaultState())
				delete(record, field)

				_, err := sir.DecodeState(record)

				Expect(errors.Is(err, sir.ErrMissingField)).To(BeTrue())

				var decodeErr *sir.DecodeError
				Expect(errors.As(err, &decodeErr)).To(BeTrue())
				Expect(decodeErr.Record).To(Equal("state"))
				Expect(decodeErr.Field).To(Equal(field))
			},
			Entry("population", sir.FieldPopulation),
			Entry("age fractions", sir.FieldAgeFractions),
			Entry("susceptible", sir.FieldSusceptible),
			Entry("infected", sir.FieldInfected),
			Entry("recovered", sir.FieldRecovered),
		)

		DescribeTable("should reject invalid populations",
			func(population any) {
				record := sir.EncodeState(sir.DefaultState())
				record[sir.FieldPopulation] = population

				_, err := sir.DecodeState(record)

				Expect(err).To(MatchError(sir.ErrInvalidField))
			},
			Entry("negative", -1.0),
			Entry("fractional", 10.5),
			Entry("too large", float64(math.MaxUint32)+1),
			Entry("text", "1000"),
		)

		It("should reject fractions that are not numbers", func() {
			record := sir.EncodeState(sir.DefaultState())
			record[sir.FieldAgeFractions] = []any{0.5, "half"}

			_, err := sir.DecodeState(record)

			Expect(err).To(MatchError(sir.ErrInvalidField))
			Expect(err.Error()).To(ContainSubstring("element 1"))
		})

		DescribeTable("should reject numbers that are not finite",
			func(field string, value any) {
				record := sir.EncodeState(sir.DefaultState())
				record[field] = value

				_, err := sir.DecodeState(record)

				Expect(err).To(MatchError(sir.ErrInvalidField))

				var decodeErr *sir.DecodeError
				Expect(errors.As(err, &decodeErr)).To(BeTrue())
				Expect(decodeErr.Field).To(Equal(field))
			},
			Entry("NaN infected", sir.FieldInfected, math.NaN()),
			Entry("infinite susceptible", sir.FieldSusceptible, math.Inf(1)),
			Entry("NaN in a typed list",
				sir.FieldAgeFractions, []float64{0.5, math.NaN()}),
			Entry("infinity in a list",
				sir.FieldAgeFractions, []any{math.Inf(-1)}),
		)

		It("should reject malformed JSON", func() {
			_, err := sir.ParseState([]byte(`{"population":`))

			var decodeErr *sir.DecodeError
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
		})

		It("should round trip bit for bit", func() {
			s := sir.State{
				Population:   4294967295,
				AgeFractions: []float64{0.1, 0.2, 1.0 / 3.0, 0.3666666666666667},
				Susceptible:  0.1 + 0.2,
				Infected:     math.SmallestNonzeroFloat64,
				Recovered:    0.7 - 0.1,
			}

			data, err := sir.MarshalState(s)
			Expect(err).NotTo(HaveOccurred())

			back, err := sir.ParseState(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(back).To(Equal(s))
			Expect(sir.StatesEqual(back, s)).To(BeTrue())

			direct, err := sir.DecodeState(sir.EncodeState(s))
			Expect(err).NotTo(HaveOccurred())
			Expect(direct).To(Equal(s))
		})
	})

	Context("vicinity", func() {
		It("should round trip", func() {
			v := sir.NewVicinity([]float64{0.5, 1.0 / 7.0}, []float64{0.25, 0})

			data, err := sir.MarshalVicinity(v)
			Expect(err).NotTo(HaveOccurred())

			back, err := sir.ParseVicinity(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(back).To(Equal(v))
		})

		It("should require movement", func() {
			_, err := sir.ParseVicinity([]byte(`{"connection": [1]}`))

			Expect(err).To(MatchError(sir.ErrMissingField))
			Expect(err.Error()).To(ContainSubstring(`"movement"`))
		})

		It("should default to one empty age group", func() {
			Expect(sir.DefaultVicinity()).To(Equal(
				sir.NewVicinity([]float64{0}, []float64{0})))
		})
	})

	Context("config", func() {
		It("should round trip", func() {
			c := sir.NewConfig([]float64{0.6, 0.35}, []float64{0.4, 0.1})

			data, err := sir.MarshalConfig(c)
			Expect(err).NotTo(HaveOccurred())

			back, err := sir.ParseConfig(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(back).To(Equal(c))
		})

		It("should use the defaults when the record is absent", func() {
			c, err := sir.DecodeConfigOrDefault(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(Equal(sir.DefaultConfig()))

			c, err = sir.ParseConfig([]byte(`null`))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Virulence).To(Equal([]float64{0.6}))
			Expect(c.Recovery).To(Equal([]float64{0.4}))
		})

		It("should require both fields of a present record", func() {
			_, err := sir.DecodeConfigOrDefault(map[string]any{
				"virulence": []any{0.6},
			})

			Expect(err).To(MatchError(sir.ErrMissingField))
		})
	})
})
