package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"animehub/internal/catalog"
)

const (
	ChartWidth  = 800
	ChartHeight = 600
)

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Chart struct {
	Query  catalog.QueryID `json:"query"`
	Title  string          `json:"title"`
	X      string          `json:"x"`
	Y      string          `json:"y"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Points []Point         `json:"points"`
}

type chartSpec struct {
	x, y, title string
	prepare     func(recs []catalog.Record, x, y string) []Point
}

var chartSpecs = map[catalog.QueryID]chartSpec{
	catalog.DemographicPopularity: {
		x: catalog.ColType, y: catalog.ColAveragePopularity,
		title:   "Average Popularity Of Anime Within Each Type",
		prepare: pointsByRow,
	},
	catalog.TopStudios: {
		x: catalog.ColStudioName, y: catalog.ColAverageRank,
		title:   "Top 5 Studios by Average Anime Rankings",
		prepare: pointsByRow,
	},
	catalog.SeasonPopularity: {
		x: catalog.ColYear, y: catalog.ColAveragePopularity,
		title:   "Average Popularity of Anime by Year",
		prepare: meanByLabel,
	},
}

func HasChart(id catalog.QueryID) bool {
	_, ok := chartSpecs[id]
	return ok
}

// BuildChart returns nil for queries without a chart or with nothing to plot.
func BuildChart(id catalog.QueryID, recs []catalog.Record) *Chart {
	spec, ok := chartSpecs[id]
	if !ok {
		return nil
	}
	points := spec.prepare(recs, spec.x, spec.y)
	if len(points) == 0 {
		return nil
	}
	return &Chart{
		Query:  id,
		Title:  spec.title,
		X:      spec.x,
		Y:      spec.y,
		Width:  ChartWidth,
		Height: ChartHeight,
		Points: points,
	}
}

func pointsByRow(recs []catalog.Record, x, y string) []Point {
	points := make([]Point, 0, len(recs))
	for _, rec := range recs {
		v, ok := number(rec[y])
		if !ok {
			continue
		}
		points = append(points, Point{Label: label(rec[x]), Value: v})
	}
	return points
}

// meanByLabel averages y per distinct x, ordered by x (numerically when
// every x is a number).
func meanByLabel(recs []catalog.Record, x, y string) []Point {
	type acc struct {
		key   any
		sum   float64
		count int
	}
	groups := map[string]*acc{}
	var order []string
	for _, rec := range recs {
		v, ok := number(rec[y])
		if !ok {
			continue
		}
		l := label(rec[x])
		g, seen := groups[l]
		if !seen {
			g = &acc{key: rec[x]}
			groups[l] = g
			order = append(order, l)
		}
		g.sum += v
		g.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, aok := number(groups[order[i]].key)
		b, bok := number(groups[order[j]].key)
		if aok && bok {
			return a < b
		}
		return order[i] < order[j]
	})

	points := make([]Point, 0, len(order))
	for _, l := range order {
		g := groups[l]
		points = append(points, Point{Label: l, Value: g.sum / float64(g.count)})
	}
	return points
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func label(v any) string {
	switch n := v.(type) {
	case nil:
		return "n/a"
	case float64, float32:
		return fmt.Sprint(FormatValue(n))
	default:
		return fmt.Sprint(n)
	}
}

// RenderPNG draws the chart as a bar chart.
func (c *Chart) RenderPNG(w io.Writer) error {
	bars := make([]chart.Value, 0, len(c.Points))
	top := 0.0
	for _, p := range c.Points {
		bars = append(bars, chart.Value{Label: p.Label, Value: p.Value})
		if p.Value > top {
			top = p.Value
		}
	}
	if top <= 0 {
		top = 1
	}

	// leave room for the y axis labels
	slot := (c.Width - 120) / max(len(bars), 1)
	barWidth := max(slot*3/5, 2)

	graph := chart.BarChart{
		Title:      c.Title,
		Width:      c.Width,
		Height:     c.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		BarWidth:   barWidth,
		BarSpacing: max(slot-barWidth, 1),
		YAxis: chart.YAxis{
			Name:  c.Y,
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", c.Query, err)
	}
	return nil
}
