package celldevs

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is the position of a cell on a two-dimensional grid.
type Coord struct {
	X, Y int
}

// ID returns the cell ID of the position, formatted as (x,y).
func (c Coord) ID() CellID {
	return CellID(c.String())
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns the position moved by the offset.
func (c Coord) Add(o Offset) Coord {
	return Coord{X: c.X + o.DX, Y: c.Y + o.DY}
}

// ParseCoord reads a position written as "x,y" or "(x,y)".
func ParseCoord(s string) (Coord, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "(")
	trimmed = strings.TrimSuffix(trimmed, ")")

	parts := strings.Split(trimmed, ",")
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("invalid coordinate %q", s)
	}

	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}

	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}

	return Coord{X: x, Y: y}, nil
}

// Offset is a relative position between a cell and a neighbor.
type Offset struct {
	DX, DY int
}

// Shape is the size of a grid.
type Shape struct {
	Width, Height int
}

// Contains tells if the position is inside the grid.
func (s Shape) Contains(c Coord) bool {
	return c.X >= 0 && c.X < s.Width && c.Y >= 0 && c.Y < s.Height
}

// Coords lists every position of the grid, row by row.
func (s Shape) Coords() []Coord {
	coords := make([]Coord, 0, s.Width*s.Height)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			coords = append(coords, Coord{X: x, Y: y})
		}
	}

	return coords
}

// Resolve returns the position of the neighbor at the offset. On a wrapped
// grid, positions that leave one border come back from the opposite border.
// Otherwise, false is returned for positions outside the grid.
func (s Shape) Resolve(c Coord, o Offset, wrapped bool) (Coord, bool) {
	n := c.Add(o)

	if wrapped {
		n.X = mod(n.X, s.Width)
		n.Y = mod(n.Y, s.Height)

		return n, true
	}

	return n, s.Contains(n)
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}

	return m
}

// MooreNeighborhood returns the offsets within the given Chebyshev distance,
// including the cell itself.
func MooreNeighborhood(r int) []Offset {
	offsets := make([]Offset, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			offsets = append(offsets, Offset{DX: dx, DY: dy})
		}
	}

	return offsets
}

// VonNeumannNeighborhood returns the offsets within the given Manhattan
// distance, including the cell itself.
func VonNeumannNeighborhood(r int) []Offset {
	offsets := make([]Offset, 0)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if abs(dx)+abs(dy) <= r {
				offsets = append(offsets, Offset{DX: dx, DY: dy})
			}
		}
	}

	return offsets
}

func abs(a int) int {
	if a < 0 {
		return -a
	}

	return a
}
