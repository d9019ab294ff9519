package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Chart geometry in SVG user units.
const (
	chartWidth      = 900
	chartLabelWidth = 260
	chartValueSpace = 90
	chartBarHeight  = 22
	chartBarGap     = 6
)

type svgBar struct {
	Title  string
	Label  string
	Color  string
	Y      int
	TextY  int
	Width  int
	ValueX int
}

type svgChart struct {
	Bars       []svgBar
	Width      int
	Height     int
	LabelWidth int
	BarHeight  int
}

type page struct {
	*View
	Chart     svgChart
	Headers   []string
	LinkLabel string
}

// HTML writes a self-contained page with the SVG chart and the table to w.
func HTML(w io.Writer, v *View) error {
	p := page{
		View:      v,
		Chart:     buildChart(v.Bars),
		Headers:   TableHeaders,
		LinkLabel: LinkLabel,
	}

	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	return nil
}

func buildChart(bars []Bar) svgChart {
	c := svgChart{
		Bars:       make([]svgBar, 0, len(bars)),
		Width:      chartWidth,
		LabelWidth: chartLabelWidth,
		BarHeight:  chartBarHeight,
	}

	plot := float64(chartWidth - chartLabelWidth - chartValueSpace)

	for i, b := range bars {
		y := i * (chartBarHeight + chartBarGap)
		width := int(math.Round(b.Fraction * plot))

		c.Bars = append(c.Bars, svgBar{
			Title:  b.Title,
			Label:  b.Label,
			Color:  b.Color,
			Y:      y,
			TextY:  y + chartBarHeight*3/4,
			Width:  width,
			ValueX: chartLabelWidth + width,
		})
	}

	if n := len(bars); n > 0 {
		c.Height = n*(chartBarHeight+chartBarGap) - chartBarGap
	}

	return c
}
