package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/epicell/sir"
)

type stepNeighbor struct {
	State    json.RawMessage `json:"state"`
	Vicinity json.RawMessage `json:"vicinity"`
}

type stepInput struct {
	State     json.RawMessage `json:"state"`
	Config    json.RawMessage `json:"config"`
	Neighbors []stepNeighbor  `json:"neighbors"`
}

type stepOutput struct {
	State map[string]any `json:"state"`
	Text  string         `json:"text"`
	Delay float64        `json:"delay"`
}

var stepCmd = &cobra.Command{
	Use:   "step <cell.json>",
	Short: "Compute a single transition of a cell.",
	Long: "`step <cell.json>` reads a cell state, an optional config, and " +
		"the states and vicinities of the neighbors, then prints the next " +
		"state and its output delay. Use - to read from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		current, neighbors, cfg, err := decodeStep(data)
		if err != nil {
			return err
		}

		next, err := sir.Step(current, neighbors, cfg)
		if err != nil {
			return err
		}

		out := stepOutput{
			State: sir.EncodeState(next),
			Text:  sir.FormatState(next),
			Delay: sir.OutputDelay(next),
		}

		jsonOut, _ := cmd.Flags().GetBool("json")
		if jsonOut {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(out)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s delay %g\n", out.Text, out.Delay)

		return nil
	},
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	return os.ReadFile(path)
}

func decodeStep(data []byte) (sir.State, []sir.Neighbor, sir.Config, error) {
	var in stepInput

	err := json.Unmarshal(data, &in)
	if err != nil {
		return sir.State{}, nil, sir.Config{}, err
	}

	if in.State == nil {
		return sir.State{}, nil, sir.Config{},
			&sir.DecodeError{Record: "cell", Field: "state", Err: sir.ErrMissingField}
	}

	current, err := sir.ParseState(in.State)
	if err != nil {
		return sir.State{}, nil, sir.Config{}, err
	}

	cfg := sir.DefaultConfig()
	if in.Config != nil {
		cfg, err = sir.ParseConfig(in.Config)
		if err != nil {
			return sir.State{}, nil, sir.Config{}, err
		}
	}

	neighbors := make([]sir.Neighbor, 0, len(in.Neighbors))
	for i, n := range in.Neighbors {
		s, err := sir.ParseState(n.State)
		if err != nil {
			return sir.State{}, nil, sir.Config{},
				fmt.Errorf("neighbor %d: %w", i, err)
		}

		v, err := sir.ParseVicinity(n.Vicinity)
		if err != nil {
			return sir.State{}, nil, sir.Config{},
				fmt.Errorf("neighbor %d: %w", i, err)
		}

		neighbors = append(neighbors, sir.Neighbor{State: s, Vicinity: v})
	}

	return current, neighbors, cfg, nil
}

func init() {
	rootCmd.AddCommand(stepCmd)

	stepCmd.Flags().Bool("json", false, "Print the next state as JSON.")
}
