package layout_test

import (
	"fmt"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
)

func ExampleController_Run() {
	c := layout.New(layout.WithRowHeight(10))

	items := []layout.Item{
		{ID: "cnv1", Kind: layout.KindInterval, IdealStart: 0, IdealStop: 10},
		{ID: "cnv2", Kind: layout.KindInterval, IdealStart: 5, IdealStop: 15},
		{ID: "bnd1", Kind: layout.KindPoint, IdealX: 100, Weight: 1},
		{ID: "bnd2", Kind: layout.KindPoint, IdealX: 102, Weight: 1},
	}

	res, err := c.Run(items, layout.Canvas{Width: 500})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, p := range res.Placements {
		fmt.Printf("%-5s %-8s x=%5.1f extent=%4.1f row=%d\n", p.ID, p.Kind, p.X, p.Extent, p.Row)
	}
	fmt.Printf("rows=%d height=%.0f\n", res.Rows, res.Height)
	// Output:
	// cnv1  interval x=  0.0 extent=10.0 row=0
	// cnv2  interval x=  5.0 extent=10.0 row=1
	// bnd1  point    x= 94.0 extent= 7.0 row=0
	// bnd2  point    x=108.0 extent= 7.0 row=0
	// rows=2 height=34
}

func ExampleController_Machine() {
	c := layout.New()
	items := []layout.Item{{ID: "sv1", Kind: layout.KindPoint, IdealX: 40, Weight: 5}}
	canvas := layout.Canvas{Width: 200}

	if _, err := c.Machine().Apply("sv1", 5, mode.Expand); err != nil {
		fmt.Println(err)
		return
	}

	// The pinned mode survives every later pass.
	for range 2 {
		res, _ := c.Run(items, canvas)
		p, _ := res.Lookup("sv1")
		fmt.Println(p.Mode, p.Pinned)
	}
	// Output:
	// expanded true
	// expanded true
}
