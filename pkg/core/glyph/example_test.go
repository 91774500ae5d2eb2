package glyph_test

import (
	"fmt"

	"github.com/matzehuels/tracklayout/pkg/core/glyph"
)

func ExampleSizer_Size() {
	s, _ := glyph.New(glyph.Options{BaseRadius: 6})

	for _, w := range []int{1, 10, 100} {
		r, _ := s.Size(w, 100)
		fmt.Printf("weight %3d -> radius %.2f\n", w, r)
	}
	// Output:
	// weight   1 -> radius 6.00
	// weight  10 -> radius 9.40
	// weight 100 -> radius 13.42
}
