package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/epicell/scenario"
	"github.com/sarchlab/epicell/sim"
	"github.com/sarchlab/epicell/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run the simulation of a scenario file.",
	Long: "`run <scenario>` loads a YAML or JSON scenario, runs it until no " +
		"cell changes or until the end time, and prints a summary of the " +
		"final states.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scenario.Load(args[0])
		if err != nil {
			return err
		}

		builder, err := runBuilder(cmd)
		if err != nil {
			return err
		}

		s := builder.Build()
		defer s.Terminate()

		s.RegisterSpace(sc.Build(s.GetEngine(), s.EndTime()))

		err = s.Run()
		if err != nil {
			return err
		}

		sum := s.Summary()
		fmt.Fprintf(cmd.OutOrStdout(),
			"time %.2f, cells %d, population %d, "+
				"susceptible %.4f, infected %.4f, recovered %.4f\n",
			s.GetEngine().CurrentTime(), sum.Cells, sum.Population,
			sum.Susceptible, sum.Infected, sum.Recovered)

		return nil
	},
}

func runBuilder(cmd *cobra.Command) (simulation.Builder, error) {
	flags := cmd.Flags()
	b := simulation.MakeBuilder()

	endTime, err := flags.GetFloat64("end-time")
	if err != nil {
		return b, err
	}

	if endTime < 0 {
		return b, fmt.Errorf("end time %f is negative", endTime)
	}

	b = b.WithEndTime(sim.VTime(endTime))

	record, _ := flags.GetBool("record")
	output, _ := flags.GetString("output")

	switch {
	case record:
		b = b.WithOutputFileName(output)
	case output != "":
		return b, errors.New("--output requires --record")
	default:
		b = b.WithoutRecording()
	}

	monitor, _ := flags.GetBool("monitor")
	port, _ := flags.GetInt("monitor-port")
	openBrowser, _ := flags.GetBool("open-browser")

	switch {
	case monitor:
		b = b.WithMonitorPort(port)
		if openBrowser {
			b = b.WithBrowser()
		}
	case port != 0 || openBrowser:
		return b, errors.New("--monitor-port and --open-browser require --monitor")
	default:
		b = b.WithoutMonitoring()
	}

	logEvents, _ := flags.GetBool("log-events")
	if logEvents {
		b = b.WithEventLogger(log.New(os.Stderr, "", 0))
	}

	logStates, _ := flags.GetBool("log-states")
	if logStates {
		b = b.WithStateLogger(log.New(cmd.OutOrStdout(), "", 0))
	}

	return b, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64("end-time", 0,
		"Stop publishing states after this time. 0 runs until no cell changes.")
	runCmd.Flags().Bool("record", false,
		"Record every cell state into a SQLite database.")
	runCmd.Flags().String("output", "",
		"Name of the database, without the .sqlite3 extension.")
	runCmd.Flags().Bool("monitor", false,
		"Serve the monitoring web page during the simulation.")
	runCmd.Flags().Int("monitor-port", 0,
		"Port of the monitoring server. 0 picks a random port.")
	runCmd.Flags().Bool("open-browser", false,
		"Open the monitoring page in a browser.")
	runCmd.Flags().Bool("log-events", false,
		"Print every event to stderr.")
	runCmd.Flags().Bool("log-states", false,
		"Print every cell state.")
}
