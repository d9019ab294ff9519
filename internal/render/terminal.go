package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"

	"mostviewed/internal/models"
	"mostviewed/pkg/utils"
)

const maxLabelWidth = 32

var strs = utils.NewStringHelper()

var noticePrefix = map[models.NoticeLevel]string{
	models.NoticeInfo:    "ℹ️ ",
	models.NoticeWarning: "⚠️ ",
	models.NoticeError:   "❌ ",
}

// Terminal writes the title, notices, a horizontal bar chart and the table to w.
// With hyperlinks set, the URL column holds terminal hyperlinks labelled LinkLabel.
func Terminal(w io.Writer, v *View, hyperlinks bool) error {
	var sb strings.Builder

	sb.WriteString(v.Title + "\n\n")

	for _, n := range v.Notices {
		sb.WriteString(noticePrefix[n.Level] + n.Message + "\n")

		if n.Detail != "" {
			sb.WriteString(strings.TrimRight(n.Detail, "\n") + "\n")
		}
	}

	if len(v.Notices) > 0 {
		sb.WriteString("\n")
	}

	writeChart(&sb, v)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	header := make(table.Row, len(TableHeaders))
	for i, h := range TableHeaders {
		header[i] = h
	}

	t.AppendHeader(header)

	for _, r := range v.Rows {
		link := r.URL
		if hyperlinks {
			link = text.Hyperlink(r.URL, LinkLabel)
		}

		t.AppendRow(table.Row{r.Rank, r.Title, r.Views, r.Editor, r.FetchedAt, link})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()

	return nil
}

func writeChart(sb *strings.Builder, v *View) {
	if len(v.Bars) == 0 {
		return
	}

	labelWidth := 0
	for _, b := range v.Bars {
		labelWidth = max(labelWidth, runewidth.StringWidth(b.Title))
	}

	labelWidth = min(labelWidth, maxLabelWidth)

	for _, b := range v.Bars {
		label := strs.PadRight(strs.TruncateString(b.Title, labelWidth), labelWidth)
		length := int(math.Round(b.Fraction * float64(v.BarWidth)))

		if length == 0 && b.Value > 0 {
			length = 1
		}

		fmt.Fprintf(sb, "%s │%s %s\n", label, strings.Repeat("█", length), b.Label)
	}

	sb.WriteString("\n")
}
