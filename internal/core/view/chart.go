// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package view

import (
	"fmt"

	"github.com/jaycherian/covid-dashboard/internal/core/model"
)

// Figure is a chart description in the shape Plotly.react accepts, so the
// page can hand it over without translation.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Only the fields a given trace type uses are set.
type Trace struct {
	Type   string    `json:"type"`
	Name   string    `json:"name,omitempty"`
	Mode   string    `json:"mode,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Hole   float64   `json:"hole,omitempty"`
	X      []string  `json:"x,omitempty"`
	Y      []float64 `json:"y,omitempty"`
	Z      []float64 `json:"z,omitempty"`
	Line   *Line     `json:"line,omitempty"`
	Marker *Marker   `json:"marker,omitempty"`
}

type Line struct {
	Width float64 `json:"width,omitempty"`
	Color string  `json:"color,omitempty"`
}

type Marker struct {
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
}

type Layout struct {
	Title        Title    `json:"title"`
	Template     string   `json:"-"` // Theme name, kept for callers; Plotly only needs the resolved colors below.
	PaperBGColor string   `json:"paper_bgcolor"`
	PlotBGColor  string   `json:"plot_bgcolor"`
	Font         Font     `json:"font"`
	Colorway     []string `json:"colorway,omitempty"`
	XAxis        *Axis    `json:"xaxis,omitempty"`
	YAxis        *Axis    `json:"yaxis,omitempty"`
	Scene        *Scene   `json:"scene,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Font struct {
	Color string `json:"color"`
}

type Axis struct {
	Title     *Title    `json:"title,omitempty"`
	GridColor string    `json:"gridcolor,omitempty"`
	TickVals  []float64 `json:"tickvals,omitempty"`
	TickText  []string  `json:"ticktext,omitempty"`
	Visible   *bool     `json:"visible,omitempty"`
}

type Scene struct {
	XAxis Axis `json:"xaxis"`
	YAxis Axis `json:"yaxis"`
	ZAxis Axis `json:"zaxis"`
}

// Values returns the numbers the figure is bound to, in metric order,
// whatever the trace type.
func (f Figure) Values() []float64 {
	var out []float64
	for _, t := range f.Data {
		switch t.Type {
		case "pie":
			out = append(out, t.Values...)
		case "scatter":
			out = append(out, t.Y...)
		case "scatter3d":
			if len(t.Z) > 0 {
				out = append(out, t.Z[len(t.Z)-1])
			}
		}
	}
	return out
}

// Dark theme, matching Plotly's plotly_dark template with transparent backgrounds.
const (
	DarkTemplate   = "plotly_dark"
	darkFontColor  = "#f2f5fa"
	darkGridColor  = "#283442"
	transparentBG  = "rgba(0,0,0,0)"
	donutHole      = 0.4
	bar3DLineWidth = 18
)

var darkColorway = []string{"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A", "#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52"}

func applyDarkTheme(l *Layout) {
	l.Template = DarkTemplate
	l.PaperBGColor = transparentBG
	l.PlotBGColor = transparentBG
	l.Font = Font{Color: darkFontColor}
	l.Colorway = darkColorway
}

// chartStrategy renders one chart type from the metric names and the selected series.
type chartStrategy func(names []string, series []float64, metric model.Metric) Figure

// strategyFor is the single mapping from chart type to renderer.
func strategyFor(c model.ChartType) (chartStrategy, bool) {
	switch c {
	case model.ChartPie:
		return pieChart, true
	case model.ChartLine:
		return lineChart, true
	case model.Chart3DBar:
		return bar3DChart, true
	}
	return nil, false
}

// RenderChart picks the strategy for sel.Chart, binds it to the series chosen
// by sel.Metric and applies the dark theme.
func RenderChart(s *model.Snapshot, sel model.Selection) Figure {
	strategy, ok := strategyFor(sel.Chart)
	if !ok {
		return ErrorChart()
	}
	fig := strategy(model.MetricNames, s.Series(sel.Metric), sel.Metric)
	applyDarkTheme(&fig.Layout)
	return fig
}

func pieChart(names []string, series []float64, metric model.Metric) Figure {
	return Figure{
		Data: []Trace{{
			Type:   "pie",
			Labels: names,
			Values: series,
			Hole:   donutHole,
		}},
		Layout: Layout{Title: Title{Text: fmt.Sprintf("COVID-19 Distribution (%s)", metric.Label())}},
	}
}

func lineChart(names []string, series []float64, metric model.Metric) Figure {
	return Figure{
		Data: []Trace{{
			Type:   "scatter",
			Mode:   "lines+markers",
			Name:   metric.Label(),
			X:      names,
			Y:      series,
			Marker: &Marker{Size: 10},
		}},
		Layout: Layout{
			Title: Title{Text: fmt.Sprintf("COVID-19 Trend (%s)", metric.Label())},
			XAxis: &Axis{Title: &Title{Text: "Metric"}, GridColor: darkGridColor},
			YAxis: &Axis{Title: &Title{Text: metric.Label()}, GridColor: darkGridColor},
		},
	}
}

// bar3DChart draws one vertical bar per metric as a thick 3D line from the
// floor to its value. The depth axis holds the single selected metric column.
func bar3DChart(names []string, series []float64, metric model.Metric) Figure {
	traces := make([]Trace, len(names))
	for i, name := range names {
		color := darkColorway[i%len(darkColorway)]
		traces[i] = Trace{
			Type:   "scatter3d",
			Mode:   "lines",
			Name:   name,
			X:      []string{name, name},
			Y:      []float64{0, 0},
			Z:      []float64{0, series[i]},
			Line:   &Line{Width: bar3DLineWidth, Color: color},
			Marker: &Marker{Color: color},
		}
	}
	return Figure{
		Data: traces,
		Layout: Layout{
			Title: Title{Text: fmt.Sprintf("COVID-19 %s Statistics (3D)", metric.Label())},
			Scene: &Scene{
				XAxis: Axis{Title: &Title{Text: "Metric"}, GridColor: darkGridColor},
				YAxis: Axis{Title: &Title{Text: ""}, GridColor: darkGridColor, TickVals: []float64{0}, TickText: []string{metric.String()}},
				ZAxis: Axis{Title: &Title{Text: metric.Label()}, GridColor: darkGridColor},
			},
		},
	}
}

// ErrorChart is the empty, dark themed chart of the degraded view.
func ErrorChart() Figure {
	return emptyChart(ErrorChartTitle)
}

func emptyChart(title string) Figure {
	hidden := false
	fig := Figure{
		Data: []Trace{},
		Layout: Layout{
			Title: Title{Text: title},
			XAxis: &Axis{Visible: &hidden},
			YAxis: &Axis{Visible: &hidden},
		},
	}
	applyDarkTheme(&fig.Layout)
	return fig
}
