// Package render builds the ranked chart and table and draws them for a terminal or a browser.
package render

import (
	"fmt"
	"math"
	"strconv"

	"mostviewed/internal/config"
	"mostviewed/internal/formatter"
	"mostviewed/internal/models"
)

// LinkLabel is the text shown for every article link.
const LinkLabel = "Open Article"

// Options controls how a View is built.
type Options struct {
	Title       string
	ColorLow    string
	ColorHigh   string
	TableHeight int
	BarWidth    int
}

// OptionsFromConfig reads the report section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Title:       cfg.PageTitle(),
		ColorLow:    cfg.Report.ColorLow,
		ColorHigh:   cfg.Report.ColorHigh,
		TableHeight: cfg.Report.TableHeight,
		BarWidth:    cfg.Report.BarWidth,
	}
}

// Bar is one chart bar. Fraction is the value relative to the largest bar.
type Bar struct {
	Title    string  `json:"title"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Value    int64   `json:"value"`
	Fraction float64 `json:"fraction"`
}

// Row is one table row with every cell already formatted.
type Row struct {
	Title     string `json:"title"`
	Views     string `json:"views"`
	Editor    string `json:"editor"`
	FetchedAt string `json:"fetchedAt"`
	URL       string `json:"url"`
	Rank      int    `json:"rank"`
}

// View is everything the display needs.
type View struct {
	Title       string          `json:"title"`
	Bars        []Bar           `json:"bars"`
	Rows        []Row           `json:"rows"`
	Notices     []models.Notice `json:"notices"`
	TableHeight int             `json:"tableHeight"`
	BarWidth    int             `json:"-"`
}

// TableHeaders are the visible table columns in display order.
var TableHeaders = []string{"Rank", "Article Title", "Views Count", "Last Editor", "Time Fetched", "Article URL"}

// NewView builds bars and rows from ranked records. Row order is kept.
func NewView(rows []models.RankedArticle, opts Options) *View {
	v := &View{
		Title:       opts.Title,
		Bars:        make([]Bar, 0, len(rows)),
		Rows:        make([]Row, 0, len(rows)),
		TableHeight: opts.TableHeight,
		BarWidth:    opts.BarWidth,
	}

	if v.TableHeight <= 0 {
		v.TableHeight = config.DefaultTableHeight
	}

	if v.BarWidth <= 0 {
		v.BarWidth = 40
	}

	low, high := viewRange(rows)
	scale := newColorScale(opts.ColorLow, opts.ColorHigh)

	for _, r := range rows {
		views := r.ViewsFormatted
		if views == "" {
			views = formatter.FormatViews(r.ViewsCount)
		}

		fraction := 0.0
		if high > 0 {
			fraction = float64(max(r.ViewsCount, 0)) / float64(high)
		}

		v.Bars = append(v.Bars, Bar{
			Title:    r.Title,
			Label:    views,
			Color:    scale.at(position(r.ViewsCount, low, high)),
			Value:    r.ViewsCount,
			Fraction: fraction,
		})

		v.Rows = append(v.Rows, Row{
			Rank:      r.Rank,
			Title:     r.Title,
			Views:     views,
			Editor:    r.Editor(),
			FetchedAt: formatter.FormatFetchedAt(r.FetchedAt),
			URL:       r.URL,
		})
	}

	return v
}

// AddNotice appends a notice.
func (v *View) AddNotice(level models.NoticeLevel, message string) {
	v.Notices = append(v.Notices, models.Notice{Level: level, Message: message})
}

func viewRange(rows []models.RankedArticle) (int64, int64) {
	if len(rows) == 0 {
		return 0, 0
	}

	low, high := rows[0].ViewsCount, rows[0].ViewsCount
	for _, r := range rows[1:] {
		low = min(low, r.ViewsCount)
		high = max(high, r.ViewsCount)
	}

	return low, high
}

// position maps value into [0, 1]. A flat range maps to the top of the scale.
func position(value, low, high int64) float64 {
	if high <= low {
		return 1
	}

	return float64(value-low) / float64(high-low)
}

type rgb struct {
	r, g, b float64
}

type colorScale struct {
	low, high rgb
}

func newColorScale(low, high string) colorScale {
	return colorScale{
		low:  parseHex(low, rgb{0x9e, 0xca, 0xe1}),
		high: parseHex(high, rgb{0x08, 0x30, 0x6b}),
	}
}

func (s colorScale) at(p float64) string {
	p = math.Max(0, math.Min(1, p))

	mix := func(a, b float64) int {
		return int(math.Round(a + (b-a)*p))
	}

	return fmt.Sprintf("#%02x%02x%02x", mix(s.low.r, s.high.r), mix(s.low.g, s.high.g), mix(s.low.b, s.high.b))
}

func parseHex(s string, fallback rgb) rgb {
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}

	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return fallback
	}

	return rgb{
		r: float64(n >> 16 & 0xff),
		g: float64(n >> 8 & 0xff),
		b: float64(n & 0xff),
	}
}
