package place

// Interval is a bar occupying [Start, Start+Width) in pixels.
type Interval struct {
	ID    string
	Start float64
	Width float64
}

// End returns the first pixel right of the bar.
func (iv Interval) End() float64 { return iv.Start + iv.Width }

// Packing is the result of Pack.
type Packing struct {
	Rows  int            // number of rows opened
	Row   map[string]int // row per item id
	Order []string       // ids in placement order
}

// PackOption configures Pack.
type PackOption func(*packConfig)

type packConfig struct {
	gap float64
}

// WithGap keeps at least px pixels between neighbours in the same row.
func WithGap(px float64) PackOption {
	return func(c *packConfig) { c.gap = max(0, px) }
}

// Pack assigns every interval to the first row it fits in, scanning items
// by ascending start. Item ids must be unique.
//
// The row count is not guaranteed minimal but the packing is always valid
// and deterministic, and costs O(n·rows).
func Pack(items []Interval, opts ...PackOption) Packing {
	var cfg packConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p := Packing{
		Row:   make(map[string]int, len(items)),
		Order: make([]string, 0, len(items)),
	}

	var rowEdge []float64
	for _, i := range sortedIndex(items, func(iv Interval) float64 { return iv.Start }) {
		iv := items[i]

		row := -1
		for r, edge := range rowEdge {
			if edge+cfg.gap <= iv.Start+eps {
				row = r
				break
			}
		}
		if row < 0 {
			row = len(rowEdge)
			rowEdge = append(rowEdge, 0)
		}

		rowEdge[row] = iv.End()
		p.Row[iv.ID] = row
		p.Order = append(p.Order, iv.ID)
	}

	p.Rows = len(rowEdge)
	return p
}
