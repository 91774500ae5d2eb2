package sink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/render/sink"
)

func ExampleRenderSVG() {
	items := []layout.Item{
		{ID: "cnv1", Kind: layout.KindInterval, IdealStart: 10, IdealStop: 90},
		{ID: "bnd1", IdealX: 50, Weight: 3},
	}
	res, _ := layout.New().Run(items, layout.Canvas{Width: 200})

	svg := string(sink.RenderSVG(res, sink.WithLabels()))

	fmt.Println("SVG starts with:", svg[:4])
	fmt.Println("Contains viewBox:", strings.Contains(svg, "viewBox"))
	fmt.Println("Points:", strings.Count(svg, `class="item point"`))
	// Output:
	// SVG starts with: <svg
	// Contains viewBox: true
	// Points: 1
}

func ExampleRenderJSON() {
	items := []layout.Item{
		{ID: "a", Kind: layout.KindInterval, IdealStart: 0, IdealStop: 20},
		{ID: "b", Kind: layout.KindInterval, IdealStart: 10, IdealStop: 30},
	}
	res, _ := layout.New().Run(items, layout.Canvas{Width: 100})

	data, _ := sink.RenderJSON(res, sink.WithJSONCompact())
	fmt.Println(strings.Contains(string(data), `"row_ids":{"0":["a"],"1":["b"]}`))
	// Output:
	// true
}
