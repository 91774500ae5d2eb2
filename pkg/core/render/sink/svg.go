package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	"github.com/matzehuels/tracklayout/pkg/fonts"
)

const itemInteractionCSS = `
    .item { transition: stroke-width 0.2s ease, opacity 0.2s ease; }
    .item.highlight { stroke-width: 2.5; }
    .track.focus .item:not(.highlight) { opacity: 0.35; }
    .item-label { pointer-events: none; }`

const itemInteractionJS = `
    const track = document.querySelector('.track');
    function highlight(id) {
      track.classList.add('focus');
      document.querySelectorAll('.item').forEach(el => el.classList.toggle('highlight', el.dataset.item === id));
    }
    function clearHighlight() {
      track.classList.remove('focus');
      document.querySelectorAll('.item').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.item').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.item));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// Palette holds the colours used by [RenderSVG].
type Palette struct {
	Background string
	Interval   string
	Point      string
	Expanded   string
	Swarm      string
	Stroke     string
	Text       string
}

// DefaultPalette returns the built-in colours.
func DefaultPalette() Palette {
	return Palette{
		Background: "#ffffff",
		Interval:   "#9ecae1",
		Point:      "#fd8d3c",
		Expanded:   "#e6550d",
		Swarm:      "#636363",
		Stroke:     "#333333",
		Text:       "#222222",
	}
}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	palette     Palette
	labels      bool
	interaction bool
	margin      float64
}

func WithLabels() SVGOption           { return func(r *svgRenderer) { r.labels = true } }
func WithInteraction() SVGOption      { return func(r *svgRenderer) { r.interaction = true } }
func WithPalette(p Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }
func WithMargin(px float64) SVGOption { return func(r *svgRenderer) { r.margin = max(0, px) } }

// RenderSVG draws res as a standalone SVG document.
//
// Items are drawn in placement order, intervals first so discs sit on top.
// The result is not modified and the call is safe for concurrent use.
func RenderSVG(res *layout.Result, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	totalWidth := res.Width + 2*r.margin
	totalHeight := math.Max(res.Height, 1) + 2*r.margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		totalWidth, totalHeight, totalWidth, totalHeight)

	if r.interaction {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", itemInteractionCSS)
	}
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.palette.Background)
	fmt.Fprintf(&buf, `  <g class="track" transform="translate(%.1f,%.1f)">`+"\n", r.margin, r.margin)

	for _, p := range res.Intervals() {
		r.renderInterval(&buf, res, p)
	}
	for _, p := range res.Points() {
		r.renderPoint(&buf, res, p)
	}

	buf.WriteString("  </g>\n")
	if r.interaction {
		fmt.Fprintf(&buf, "  <script><![CDATA[%s\n  ]]></script>\n", itemInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{palette: DefaultPalette()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// =============================================================================
// Intervals
// =============================================================================

func (r svgRenderer) renderInterval(buf *bytes.Buffer, res *layout.Result, p layout.Placement) {
	h := res.RowHeight * 0.8
	id := escapeXML(p.ID)
	fmt.Fprintf(buf, `    <rect class="item interval" id="item-%s" data-item="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="0.5">`,
		id, id, p.X, p.Y-h/2, p.Extent, h, r.palette.Interval, r.palette.Stroke)
	fmt.Fprintf(buf, "<title>%s</title></rect>\n", escapeXML(displayName(p)))
	if r.labels && p.Label != "" {
		r.renderLabel(buf, p.X+p.Extent+2, p.Y, p.Label, "start")
	}
}

// =============================================================================
// Points
// =============================================================================

func (r svgRenderer) renderPoint(buf *bytes.Buffer, res *layout.Result, p layout.Placement) {
	id := escapeXML(p.ID)
	fill := r.palette.Point
	if p.Mode != mode.Collapsed {
		fill = r.palette.Expanded
		// Stem through the point band marks an opened glyph.
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			p.X, res.PointTop, p.X, res.PointTop+res.PointHeight, r.palette.Stroke)
	}

	fmt.Fprintf(buf, `    <g class="item point" id="item-%s" data-item="%s" data-mode="%s" stroke="%s" stroke-width="1">`+"\n",
		id, id, p.Mode, r.palette.Stroke)
	fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s</title></circle>`+"\n",
		p.X, p.Y, p.Extent, fill, escapeXML(displayName(p)))
	if p.Weight > 1 && r.labels {
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.1f" fill="%s" stroke="none">%d</text>`+"\n",
			p.X, p.Y, escapeXML(fonts.FontFamily), math.Min(fonts.DefaultSize, p.Extent), r.palette.Text, p.Weight)
	}
	if p.Mode == mode.SampleSpread {
		r.renderSwarm(buf, p)
	}
	buf.WriteString("    </g>\n")

	if r.labels && p.Label != "" {
		r.renderLabel(buf, p.X+p.Extent+2, p.Y-p.Extent, p.Label, "start")
	}
}

func (r svgRenderer) renderSwarm(buf *bytes.Buffer, p layout.Placement) {
	if len(p.Swarm) == 0 {
		return
	}
	fmt.Fprintf(buf, `      <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-dasharray="2,2"/>`+"\n",
		p.X, p.Y+p.Extent, p.X, p.SwarmTop)
	dot := swarmDotRadius(p)
	for _, s := range p.Swarm {
		fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="none"/>`+"\n",
			p.X+s.DX, p.SwarmTop+s.DY, dot, r.palette.Swarm)
	}
}

// swarmDotRadius picks a dot size that keeps the swarm inside its band.
func swarmDotRadius(p layout.Placement) float64 {
	const maxDot = 2.5
	if p.SwarmHeight <= 0 {
		return maxDot
	}
	return math.Min(maxDot, p.SwarmHeight/4)
}

func (r svgRenderer) renderLabel(buf *bytes.Buffer, x, y float64, label, anchor string) {
	fmt.Fprintf(buf, `    <text class="item-label" x="%.2f" y="%.2f" text-anchor="%s" dominant-baseline="central" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
		x, y, anchor, escapeXML(fonts.FontFamily), fonts.DefaultSize, r.palette.Text, escapeXML(label))
}

func displayName(p layout.Placement) string {
	if p.Label != "" {
		return p.Label
	}
	return p.ID
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
