// Package formatter provides text formatting for converted articles and
// for the values shown in the chart and table.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column alignment parsed from a separator row.
type alignment int

const (
	alignNone alignment = iota
	alignLeft
	alignCenter
	alignRight
)

// minSeparatorWidth is the shortest dash run a separator cell may have.
const minSeparatorWidth = 3

// FormatMarkdown realigns every pipe table in content so that columns line up
// by display width. Everything outside tables is left untouched.
func FormatMarkdown(content string) (string, error) {
	lines := strings.Split(content, "\n")

	var formatted []string

	var table []string

	flush := func() {
		if len(table) > 0 {
			formatted = append(formatted, processTable(table)...)
			table = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// A table row starts and ends with a pipe.
		if len(trimmed) > 1 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			table = append(table, trimmed)
			continue
		}

		flush()

		formatted = append(formatted, line)
	}

	flush()

	return strings.Join(formatted, "\n"), nil
}

// splitRow splits "| a | b \| c |" into ["a", "b \| c"]. Escaped pipes stay in the cell.
func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")

	if strings.HasSuffix(row, "|") && !strings.HasSuffix(row, `\|`) {
		row = strings.TrimSuffix(row, "|")
	}

	var cells []string

	var cell strings.Builder

	escaped := false

	for _, r := range row {
		switch {
		case escaped:
			cell.WriteRune(r)

			escaped = false
		case r == '\\':
			cell.WriteRune(r)

			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}

	return append(cells, strings.TrimSpace(cell.String()))
}

// parseSeparator returns the column alignments when cells form a separator row.
func parseSeparator(cells []string) ([]alignment, bool) {
	aligns := make([]alignment, len(cells))

	for i, cell := range cells {
		c := strings.ReplaceAll(cell, " ", "")
		if c == "" || strings.Trim(c, ":-") != "" || !strings.Contains(c, "-") {
			return nil, false
		}

		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")

		switch {
		case left && right:
			aligns[i] = alignCenter
		case right:
			aligns[i] = alignRight
		case left:
			aligns[i] = alignLeft
		default:
			aligns[i] = alignNone
		}
	}

	return aligns, true
}

func processTable(rows []string) []string {
	// A header without separator is not a table we can align.
	if len(rows) < 2 {
		return rows
	}

	table := make([][]string, len(rows))
	for i, row := range rows {
		table[i] = splitRow(row)
	}

	aligns, isTable := parseSeparator(table[1])
	if !isTable {
		return rows
	}

	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	widths := make([]int, colCount)
	for i := range widths {
		widths[i] = minSeparatorWidth
	}

	for r, row := range table {
		if r == 1 {
			continue
		}

		for c, cell := range row {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}

	result := make([]string, 0, len(table))

	for r, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for c := 0; c < colCount; c++ {
			align := alignNone
			if c < len(aligns) {
				align = aligns[c]
			}

			sb.WriteString(" ")

			if r == 1 {
				sb.WriteString(separatorCell(widths[c], align))
			} else {
				cell := ""
				if c < len(row) {
					cell = row[c]
				}

				sb.WriteString(padCell(cell, widths[c], align))
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}

func separatorCell(width int, align alignment) string {
	switch align {
	case alignLeft:
		return ":" + strings.Repeat("-", width-1)
	case alignRight:
		return strings.Repeat("-", width-1) + ":"
	case alignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}

func padCell(cell string, width int, align alignment) string {
	pad := width - runewidth.StringWidth(cell)
	if pad <= 0 {
		return cell
	}

	switch align {
	case alignRight:
		return strings.Repeat(" ", pad) + cell
	case alignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", pad-left)
	default:
		return cell + strings.Repeat(" ", pad)
	}
}
