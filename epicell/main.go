// Command epicell runs age-stratified SIR epidemic simulations on cell grids.
package main

import "github.com/sarchlab/epicell/epicell/cmd"

func main() {
	cmd.Execute()
}
