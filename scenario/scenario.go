// Package scenario loads epidemic scenarios and builds the cell spaces they
// describe.
//
// A scenario is a YAML or JSON document:
//
//	shape: [3, 3]
//	wrapped: false
//	default_state: {population: 100, age_divided_populations: [1], ...}
//	default_config: {virulence: [0.6], recovery: [0.4]}
//	neighborhood:
//	  - type: moore
//	    range: 1
//	    vicinity: {connection: [1], movement: [0.5]}
//	cells:
//	  "1,1": {state: {...}, config: {...}}
//
// Every position of the grid gets a cell. Cells listed under cells override
// the default state or configuration. The neighborhoods are applied in
// order, so a later neighborhood replaces the vicinity an earlier one set.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/epicell/celldevs"
	"github.com/sarchlab/epicell/pandemic"
	"github.com/sarchlab/epicell/sim"
	"github.com/sarchlab/epicell/sir"
)

// ErrInvalidScenario is wrapped by the errors of malformed scenarios.
var ErrInvalidScenario = errors.New("invalid scenario")

// Neighborhood types.
const (
	TypeMoore      = "moore"
	TypeVonNeumann = "von_neumann"
	TypeRelative   = "relative"
)

const defaultRange = 1

// A Neighborhood connects every cell to the cells at the given offsets.
type Neighborhood struct {
	Offsets  []celldevs.Offset
	Vicinity sir.Vicinity
}

// A CellOverride replaces the default state or configuration of a cell. Nil
// fields keep the defaults.
type CellOverride struct {
	State  *sir.State
	Config *sir.Config
}

// A Scenario is a decoded scenario file.
type Scenario struct {
	Shape         celldevs.Shape
	Wrapped       bool
	DefaultState  sir.State
	DefaultConfig sir.Config
	Neighborhoods []Neighborhood
	Cells         map[celldevs.Coord]CellOverride
}

type document struct {
	Shape         []int                   `yaml:"shape"`
	Wrapped       bool                    `yaml:"wrapped"`
	DefaultState  map[string]any          `yaml:"default_state"`
	DefaultConfig map[string]any          `yaml:"default_config"`
	Neighborhood  []neighborhoodDocument  `yaml:"neighborhood"`
	Cells         map[string]cellDocument `yaml:"cells"`
}

type neighborhoodDocument struct {
	Type      string         `yaml:"type"`
	Range     *int           `yaml:"range"`
	Neighbors [][]int        `yaml:"neighbors"`
	Vicinity  map[string]any `yaml:"vicinity"`
}

type cellDocument struct {
	State  map[string]any `yaml:"state"`
	Config map[string]any `yaml:"config"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Parse decodes a scenario from YAML or JSON.
func Parse(data []byte) (*Scenario, error) {
	var doc document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	return doc.decode()
}

func (d *document) decode() (*Scenario, error) {
	s := &Scenario{
		Wrapped: d.Wrapped,
		Cells:   make(map[celldevs.Coord]CellOverride),
	}

	if len(d.Shape) != 2 || d.Shape[0] <= 0 || d.Shape[1] <= 0 {
		return nil, fmt.Errorf("%w: shape must be two positive integers, got %v",
			ErrInvalidScenario, d.Shape)
	}

	s.Shape = celldevs.Shape{Width: d.Shape[0], Height: d.Shape[1]}

	if d.DefaultState == nil {
		return nil, fmt.Errorf("%w: default_state is missing",
			ErrInvalidScenario)
	}

	var err error

	s.DefaultState, err = sir.DecodeState(d.DefaultState)
	if err != nil {
		return nil, fmt.Errorf("default_state: %w", err)
	}

	s.DefaultConfig, err = sir.DecodeConfigOrDefault(d.DefaultConfig)
	if err != nil {
		return nil, fmt.Errorf("default_config: %w", err)
	}

	for i, nd := range d.Neighborhood {
		n, err := nd.decode()
		if err != nil {
			return nil, fmt.Errorf("neighborhood %d: %w", i, err)
		}

		s.Neighborhoods = append(s.Neighborhoods, n)
	}

	for key, cd := range d.Cells {
		c, err := celldevs.ParseCoord(key)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %q: %v", ErrInvalidScenario, key, err)
		}

		if !s.Shape.Contains(c) {
			return nil, fmt.Errorf("%w: cell %s is outside of the %dx%d grid",
				ErrInvalidScenario, c, s.Shape.Width, s.Shape.Height)
		}

		o, err := cd.decode()
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", c, err)
		}

		s.Cells[c] = o
	}

	return s, nil
}

func (nd neighborhoodDocument) decode() (Neighborhood, error) {
	n := Neighborhood{}

	if nd.Vicinity == nil {
		return n, fmt.Errorf("%w: vicinity is missing", ErrInvalidScenario)
	}

	v, err := sir.DecodeVicinity(nd.Vicinity)
	if err != nil {
		return n, err
	}

	n.Vicinity = v

	r := defaultRange
	if nd.Range != nil {
		r = *nd.Range
	}

	if r < 0 {
		return n, fmt.Errorf("%w: range %d is negative", ErrInvalidScenario, r)
	}

	switch nd.Type {
	case TypeMoore:
		n.Offsets = celldevs.MooreNeighborhood(r)
	case TypeVonNeumann:
		n.Offsets = celldevs.VonNeumannNeighborhood(r)
	case TypeRelative:
		for _, pair := range nd.Neighbors {
			if len(pair) != 2 {
				return n, fmt.Errorf("%w: relative neighbor %v is not a pair",
					ErrInvalidScenario, pair)
			}

			n.Offsets = append(n.Offsets,
				celldevs.Offset{DX: pair[0], DY: pair[1]})
		}
	default:
		return n, fmt.Errorf("%w: unknown neighborhood type %q",
			ErrInvalidScenario, nd.Type)
	}

	return n, nil
}

func (cd cellDocument) decode() (CellOverride, error) {
	o := CellOverride{}

	if cd.State != nil {
		s, err := sir.DecodeState(cd.State)
		if err != nil {
			return o, err
		}

		o.State = &s
	}

	if cd.Config != nil {
		c, err := sir.DecodeConfig(cd.Config)
		if err != nil {
			return o, err
		}

		o.Config = &c
	}

	return o, nil
}

// StateOf returns the initial state of the cell at the given position.
func (s *Scenario) StateOf(c celldevs.Coord) sir.State {
	if o, ok := s.Cells[c]; ok && o.State != nil {
		return o.State.Clone()
	}

	return s.DefaultState.Clone()
}

// ConfigOf returns the configuration of the cell at the given position.
func (s *Scenario) ConfigOf(c celldevs.Coord) sir.Config {
	if o, ok := s.Cells[c]; ok && o.Config != nil {
		return *o.Config
	}

	return s.DefaultConfig
}

// Build creates a space with one cell per grid position. Cells are named by
// their coordinates. Cells that share the default configuration share a
// model.
func (s *Scenario) Build(engine sim.Engine, endTime sim.VTime) *pandemic.Space {
	space := pandemic.NewSpace(engine, endTime)
	defaultModel := pandemic.NewModel(s.DefaultConfig)

	for _, c := range s.Shape.Coords() {
		model := defaultModel
		if o, ok := s.Cells[c]; ok && o.Config != nil {
			model = pandemic.NewModel(*o.Config)
		}

		space.AddCell(c.ID(), s.StateOf(c), model)
	}

	for _, c := range s.Shape.Coords() {
		for _, n := range s.Neighborhoods {
			for _, o := range n.Offsets {
				neighbor, ok := s.Shape.Resolve(c, o, s.Wrapped)
				if !ok {
					continue
				}

				space.Connect(c.ID(), neighbor.ID(),
					sir.NewVicinity(n.Vicinity.Connection, n.Vicinity.Movement))
			}
		}
	}

	return space
}

// OverriddenCells returns the positions with overrides, row by row.
func (s *Scenario) OverriddenCells() []celldevs.Coord {
	coords := make([]celldevs.Coord, 0, len(s.Cells))
	for c := range s.Cells {
		coords = append(coords, c)
	}

	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}

		return coords[i].X < coords[j].X
	})

	return coords
}
