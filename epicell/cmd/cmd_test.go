package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"

	"github.com/sarchlab/epicell/sir"
)

func execute(args ...string) (string, error) {
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

var _ = Describe("Commands", func() {
	AfterEach(func() {
		for _, c := range rootCmd.Commands() {
			c.Flags().VisitAll(func(f *pflag.Flag) {
				Expect(f.Value.Set(f.DefValue)).To(Succeed())
				f.Changed = false
			})
		}

		rootCmd.SetIn(nil)
	})

	It("should print the version", func() {
		out, err := execute("version")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("epicell version " + Version + "\n"))
	})

	Context("step", func() {
		It("should compute one transition", func() {
			out, err := execute("step", "testdata/cell.json")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("<1000,1,0.87,0.09,0.04> delay 1\n"))
		})

		It("should print JSON", func() {
			out, err := execute("step", "--json", "testdata/cell.json")
			Expect(err).NotTo(HaveOccurred())

			rsp := map[string]any{}
			Expect(json.Unmarshal([]byte(out), &rsp)).To(Succeed())
			Expect(rsp["delay"]).To(Equal(1.0))
			Expect(rsp["state"]).To(HaveKeyWithValue(sir.FieldInfected, 0.09))
		})

		It("should read from stdin", func() {
			rootCmd.SetIn(strings.NewReader(`{
				"state": {"population": 10, "age_divided_populations": [1],
					"susceptible": 1, "infected": 0, "recovered": 0}}`))

			out, err := execute("step", "-")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("<10,1,1,0,0> delay 1\n"))
		})

		It("should report contract violations", func() {
			_, err := execute("step", "testdata/empty.json")

			Expect(err).To(MatchError(sir.ErrContractViolation))
		})

		It("should report missing fields", func() {
			rootCmd.SetIn(strings.NewReader(`{"state": {"population": 10}}`))

			_, err := execute("step", "-")

			Expect(err).To(MatchError(sir.ErrMissingField))
		})

		It("should report a missing state", func() {
			rootCmd.SetIn(strings.NewReader(`{"neighbors": []}`))

			_, err := execute("step", "-")

			Expect(err).To(MatchError(sir.ErrMissingField))
		})
	})

	Context("run", func() {
		scenarioFile := filepath.Join("..", "..", "scenario", "testdata",
			"outbreak.yaml")

		It("should run a scenario", func() {
			out, err := execute("run", "--end-time", "3", scenarioFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HavePrefix("time "))
			Expect(out).To(ContainSubstring("cells 9, population 900"))
		})

		It("should log states", func() {
			out, err := execute("run", "--end-time", "1", "--log-states",
				scenarioFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(
				"0.0000000000, (1,1), <100,0.5,0.5,0.7,0.3,0>"))
		})

		It("should record states", func() {
			output := filepath.Join(GinkgoT().TempDir(), "run")

			_, err := execute("run", "--end-time", "1", "--record",
				"--output", output, scenarioFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(output + ".sqlite3").To(BeAnExistingFile())
		})

		It("should reject an output without recording", func() {
			_, err := execute("run", "--output", "x", scenarioFile)

			Expect(err).To(MatchError(ContainSubstring("--record")))
		})

		It("should reject a negative end time", func() {
			_, err := execute("run", "--end-time", "-1", scenarioFile)

			Expect(err).To(HaveOccurred())
		})

		It("should take defaults from the environment", func() {
			GinkgoT().Setenv("EPICELL_END_TIME", "abc")

			_, err := execute("run", scenarioFile)

			Expect(err).To(MatchError(ContainSubstring("EPICELL_END_TIME")))
		})

		It("should fail on missing scenarios", func() {
			_, err := execute("run", "missing.yaml")

			Expect(err).To(HaveOccurred())
		})
	})

	It("should name environment variables after flags", func() {
		Expect(envName("monitor-port")).To(Equal("EPICELL_MONITOR_PORT"))
	})
})
