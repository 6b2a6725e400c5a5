// Package plot renders benchmark measurements as log-log SVG charts.
//
// One chart is produced per (operation, key order) pair: a line series per
// container type, decade tick marks on both axes, and O(1) / O(log n) /
// O(n) guide lines anchored at the fastest observed point. Output is run
// through core/canon before it leaves this package, so every chart is
// canonical, byte-reproducible, and diff-friendly on first write.
package plot

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/chartproof/chartproof/core/bench"
	"github.com/chartproof/chartproof/core/canon"
	"github.com/chartproof/chartproof/internal/fileutil"
	"github.com/chartproof/chartproof/internal/logging"
)

// Point is one sample of a series.
type Point struct {
	Size   int
	TimeNS float64
}

// Series is one plotted line.
type Series struct {
	Label  string
	Points []Point
	Guide  bool // dashed complexity reference line
}

// Chart is one renderable figure.
type Chart struct {
	Operation string
	KeyOrder  string
	Series    []Series
}

// Title returns the figure title.
func (c *Chart) Title() string {
	return fmt.Sprintf("%s Performance - %s", c.Operation, c.KeyOrder)
}

// Filename returns the output file name for the chart.
func (c *Chart) Filename() string {
	return fmt.Sprintf("%s_%s.svg", c.Operation, c.KeyOrder)
}

// Layout constants, pixel space.
const (
	chartWidth   = 960
	chartHeight  = 720
	marginLeft   = 90.0
	marginRight  = 40.0
	marginTop    = 60.0
	marginBottom = 70.0
)

// Series colors, matching the upstream chart pipeline's palette.
var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b"}

// Build groups measurements into charts: one per (operation, key order),
// one series per container type, points sorted by size. Measurements
// without a time_per_item counter are dropped. Guide lines for common
// complexities are appended to every chart that has data.
func Build(ms []bench.Measurement) []Chart {
	type chartKey struct{ op, order string }
	var order []chartKey
	byKey := make(map[chartKey]map[string][]Point)
	seriesOrder := make(map[chartKey][]string)

	for _, m := range ms {
		if m.TimePerItemNS <= 0 || m.Size <= 0 {
			continue
		}
		key := chartKey{m.Operation, m.KeyOrder}
		if byKey[key] == nil {
			byKey[key] = make(map[string][]Point)
			order = append(order, key)
		}
		if _, seen := byKey[key][m.MapType]; !seen {
			seriesOrder[key] = append(seriesOrder[key], m.MapType)
		}
		byKey[key][m.MapType] = append(byKey[key][m.MapType], Point{Size: m.Size, TimeNS: m.TimePerItemNS})
	}

	charts := make([]Chart, 0, len(order))
	for _, key := range order {
		chart := Chart{Operation: key.op, KeyOrder: key.order}
		for _, label := range seriesOrder[key] {
			pts := byKey[key][label]
			sort.Slice(pts, func(i, j int) bool { return pts[i].Size < pts[j].Size })
			chart.Series = append(chart.Series, Series{Label: label, Points: pts})
		}
		addGuides(&chart)
		charts = append(charts, chart)
	}
	return charts
}

// addGuides appends dashed complexity reference lines anchored at the
// fastest observed point, over the chart's distinct sizes.
func addGuides(c *Chart) {
	sizeSet := make(map[int]bool)
	minTime := math.Inf(1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			sizeSet[p.Size] = true
			if p.TimeNS < minTime {
				minTime = p.TimeNS
			}
		}
	}
	if len(sizeSet) == 0 || math.IsInf(minTime, 1) {
		return
	}
	sizes := make([]int, 0, len(sizeSet))
	for s := range sizeSet {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	base := float64(sizes[0])

	constant := Series{Label: "O(1) reference", Guide: true}
	logarithmic := Series{Label: "O(log n) reference", Guide: true}
	linear := Series{Label: "O(n) reference", Guide: true}
	for _, s := range sizes {
		n := float64(s)
		constant.Points = append(constant.Points, Point{Size: s, TimeNS: minTime})
		if math.Log2(base) > 0 {
			logarithmic.Points = append(logarithmic.Points, Point{Size: s, TimeNS: minTime * math.Log2(n) / math.Log2(base)})
		}
		linear.Points = append(linear.Points, Point{Size: s, TimeNS: minTime * n / base})
	}
	c.Series = append(c.Series, constant)
	if len(logarithmic.Points) > 0 {
		c.Series = append(c.Series, logarithmic)
	}
	c.Series = append(c.Series, linear)
}

// scale maps data space to pixel space on log10 axes.
type scale struct {
	minX, maxX float64 // log10 of size bounds
	minY, maxY float64 // log10 of time bounds
}

func chartScale(c *Chart) scale {
	sc := scale{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
	for _, s := range c.Series {
		for _, p := range s.Points {
			lx := math.Log10(float64(p.Size))
			ly := math.Log10(p.TimeNS)
			sc.minX = math.Min(sc.minX, lx)
			sc.maxX = math.Max(sc.maxX, lx)
			sc.minY = math.Min(sc.minY, ly)
			sc.maxY = math.Max(sc.maxY, ly)
		}
	}
	// Degenerate ranges get half a decade of padding either side.
	if sc.maxX-sc.minX < 1e-9 {
		sc.minX -= 0.5
		sc.maxX += 0.5
	}
	if sc.maxY-sc.minY < 1e-9 {
		sc.minY -= 0.5
		sc.maxY += 0.5
	}
	return sc
}

func (sc scale) x(size int) float64 {
	frac := (math.Log10(float64(size)) - sc.minX) / (sc.maxX - sc.minX)
	return marginLeft + frac*(chartWidth-marginLeft-marginRight)
}

func (sc scale) y(timeNS float64) float64 {
	frac := (math.Log10(timeNS) - sc.minY) / (sc.maxY - sc.minY)
	return chartHeight - marginBottom - frac*(chartHeight-marginTop-marginBottom)
}

// Render draws the chart and returns canonical SVG bytes.
func (c *Chart) Render() []byte {
	sc := chartScale(c)
	plotW := chartWidth - int(marginLeft) - int(marginRight)
	plotH := chartHeight - int(marginTop) - int(marginBottom)

	// The clip id mimics the generator family's shape: 'p' plus a hex
	// suffix, derived from the chart key so rendering is reproducible.
	// Canonicalization renames it to p1.
	clipID := "p" + canon.Digest([]byte(c.Operation+"/"+c.KeyOrder))[:10]

	var buf bytes.Buffer
	g := svg.New(&buf)
	g.Start(chartWidth, chartHeight)
	g.Title(c.Title())
	g.Rect(0, 0, chartWidth, chartHeight, `fill="#ffffff"`)

	g.Def()
	g.ClipPath(`id="` + clipID + `"`)
	g.Rect(int(marginLeft), int(marginTop), plotW, plotH, `fill="none"`)
	g.ClipEnd()
	g.DefEnd()

	drawAxes(g, sc)

	g.Group(`clip-path="url(#` + clipID + `)"`)
	for i, s := range c.Series {
		drawSeries(g, sc, s, palette[i%len(palette)])
	}
	g.Gend()

	drawLegend(g, c.Series)

	g.Text(chartWidth/2, chartHeight-20, "Container Size",
		`text-anchor="middle" font-family="sans-serif" font-size="15"`)
	g.Gtransform(fmt.Sprintf("translate(22,%d) rotate(-90)", chartHeight/2))
	g.Text(0, 0, "Time per Item (nanoseconds)",
		`text-anchor="middle" font-family="sans-serif" font-size="15"`)
	g.Gend()
	g.Text(chartWidth/2, int(marginTop)-24, c.Title(),
		`text-anchor="middle" font-family="sans-serif" font-size="19"`)

	g.End()

	return []byte(canon.Canonicalize(buf.String()))
}

// drawAxes draws the plot frame and decade ticks with labels.
func drawAxes(g *svg.SVG, sc scale) {
	left, right := int(marginLeft), chartWidth-int(marginRight)
	top, bottom := int(marginTop), chartHeight-int(marginBottom)

	g.Rect(left, top, right-left, bottom-top, `fill="none" stroke="#000000" stroke-width="0.8"`)

	for k := int(math.Ceil(sc.minX)); float64(k) <= sc.maxX+1e-9; k++ {
		x := int(math.Round(sc.x(pow10int(k))))
		g.Line(x, bottom, x, bottom+5, `stroke="#000000" stroke-width="0.8"`)
		g.Line(x, top, x, bottom, `stroke="#b0b0b0" stroke-width="0.5" stroke-opacity="0.3"`)
		g.Text(x, bottom+22, decadeLabel(k),
			`text-anchor="middle" font-family="sans-serif" font-size="13"`)
	}
	for k := int(math.Ceil(sc.minY)); float64(k) <= sc.maxY+1e-9; k++ {
		y := int(math.Round(sc.y(math.Pow(10, float64(k)))))
		g.Line(left-5, y, left, y, `stroke="#000000" stroke-width="0.8"`)
		g.Line(left, y, right, y, `stroke="#b0b0b0" stroke-width="0.5" stroke-opacity="0.3"`)
		g.Text(left-10, y+4, decadeLabel(k),
			`text-anchor="end" font-family="sans-serif" font-size="13"`)
	}
}

// pow10int avoids float drift for the sizes axis.
func pow10int(k int) int {
	n := 1
	for i := 0; i < k; i++ {
		n *= 10
	}
	return n
}

func decadeLabel(k int) string {
	if k >= 0 && k <= 4 {
		return fmt.Sprintf("%d", pow10int(k))
	}
	return fmt.Sprintf("1e%d", k)
}

// drawSeries emits one line as path data plus point markers. Coordinates
// are written with three fractional digits; canonicalization settles them
// to one.
func drawSeries(g *svg.SVG, sc scale, s Series, color string) {
	if len(s.Points) == 0 {
		return
	}
	var d strings.Builder
	for i, p := range s.Points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&d, "%s %.3f %.3f ", cmd, sc.x(p.Size), sc.y(p.TimeNS))
	}
	style := fmt.Sprintf(`fill="none" stroke="%s" stroke-width="2"`, color)
	if s.Guide {
		style = fmt.Sprintf(`fill="none" stroke="%s" stroke-width="1" stroke-dasharray="6,4" stroke-opacity="0.5"`, guideColor(s.Label))
	}
	g.Path(strings.TrimRight(d.String(), " "), style)

	if !s.Guide {
		for _, p := range s.Points {
			g.Circle(int(math.Round(sc.x(p.Size))), int(math.Round(sc.y(p.TimeNS))), 4,
				fmt.Sprintf(`fill="%s"`, color))
		}
	}
}

func guideColor(label string) string {
	switch {
	case strings.Contains(label, "log"):
		return "#ff8c00"
	case strings.Contains(label, "O(n)"):
		return "#d62728"
	default:
		return "#808080"
	}
}

// drawLegend lists every series with a color swatch in the top-left of the
// plot area.
func drawLegend(g *svg.SVG, series []Series) {
	x := int(marginLeft) + 14
	y := int(marginTop) + 20
	for i, s := range series {
		color := palette[i%len(palette)]
		if s.Guide {
			color = guideColor(s.Label)
		}
		g.Line(x, y-4, x+26, y-4, fmt.Sprintf(`stroke="%s" stroke-width="2"`, color))
		g.Text(x+32, y, s.Label, `font-family="sans-serif" font-size="13"`)
		y += 20
	}
}

// RenderAll renders every chart built from ms into outDir and returns the
// written paths in chart order.
func RenderAll(ms []bench.Measurement, outDir string) ([]string, error) {
	charts := Build(ms)
	paths := make([]string, 0, len(charts))
	for i := range charts {
		c := &charts[i]
		path := filepath.Join(outDir, c.Filename())
		if err := fileutil.WriteFileAtomic(path, c.Render(), 0644); err != nil {
			return paths, fmt.Errorf("writing chart %s: %w", c.Filename(), err)
		}
		logging.Info("rendered chart", "path", path, "series", len(c.Series))
		paths = append(paths, path)
	}
	return paths, nil
}
