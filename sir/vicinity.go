package sir

// Vicinity describes how a neighbor influences a cell, per age group.
// Connection is how strongly the neighbor reaches the cell and Movement is
// the share of the neighbor's population that moves.
type Vicinity struct {
	Connection []float64
	Movement   []float64
}

// DefaultVicinity returns a vicinity with a single zero-weight age group.
func DefaultVicinity() Vicinity {
	return Vicinity{
		Connection: []float64{0},
		Movement:   []float64{0},
	}
}

// NewVicinity creates a vicinity. The weights are copied.
func NewVicinity(connection, movement []float64) Vicinity {
	return Vicinity{
		Connection: append([]float64(nil), connection...),
		Movement:   append([]float64(nil), movement...),
	}
}

// Neighbor is the last known state of a neighbor together with the vicinity
// of the edge towards it.
type Neighbor struct {
	State    State
	Vicinity Vicinity
}
