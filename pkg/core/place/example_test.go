package place_test

import (
	"fmt"

	"github.com/matzehuels/tracklayout/pkg/core/place"
)

func ExamplePack() {
	p := place.Pack([]place.Interval{
		{ID: "del1", Start: 0, Width: 10},
		{ID: "del2", Start: 5, Width: 10},
		{ID: "dup1", Start: 20, Width: 10},
	})

	fmt.Println("rows:", p.Rows)
	for _, id := range p.Order {
		fmt.Printf("%s -> row %d\n", id, p.Row[id])
	}
	// Output:
	// rows: 2
	// del1 -> row 0
	// del2 -> row 1
	// dup1 -> row 0
}

func ExampleRelax() {
	r := place.Relax([]place.Point{
		{ID: "bnd1", Ideal: 100, Radius: 20},
		{ID: "bnd2", Ideal: 102, Radius: 20},
	}, 500)

	for _, id := range r.Order {
		fmt.Printf("%s at %.0f\n", id, r.X[id])
	}
	fmt.Printf("displacement %.0f\n", r.Displacement)
	// Output:
	// bnd1 at 81
	// bnd2 at 121
	// displacement 38
}
