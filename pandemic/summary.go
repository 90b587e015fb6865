package pandemic

// Summary aggregates the states of many cells. Fractions are weighted by the
// population of each cell.
type Summary struct {
	Cells       int     `json:"cells"`
	Population  uint64  `json:"population"`
	Susceptible float64 `json:"susceptible"`
	Infected    float64 `json:"infected"`
	Recovered   float64 `json:"recovered"`
}

// Summarize aggregates the current states of the cells. Cells without
// population are counted but do not weigh on the fractions.
func Summarize(cells []*Cell) Summary {
	sum := Summary{Cells: len(cells)}

	var s, i, r float64
	for _, c := range cells {
		state := c.State()
		pop := float64(state.Population)

		sum.Population += uint64(state.Population)
		s += state.Susceptible * pop
		i += state.Infected * pop
		r += state.Recovered * pop
	}

	if sum.Population == 0 {
		return sum
	}

	total := float64(sum.Population)
	sum.Susceptible = s / total
	sum.Infected = i / total
	sum.Recovered = r / total

	return sum
}
