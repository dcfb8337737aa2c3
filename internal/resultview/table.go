package resultview

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxTableRows bounds how many rows are formatted for display.
const MaxTableRows = 10

// View is the default presentation for a result.
type View string

const (
	ViewTable View = "table"
	ViewJSON  View = "json"
)

// TableView is a render-ready projection of a Classification.
type TableView struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary string     `json:"summary"`
	Badge   string     `json:"badge,omitempty"`
	View    View       `json:"view"`
}

// BuildTable projects c into columns, at most MaxTableRows formatted rows, a
// "Showing N of M rows" summary and a count badge.
func BuildTable(toolName string, c Classification) TableView {
	tv := TableView{
		Columns: []string{},
		Rows:    [][]string{},
		Badge:   Badge(toolName, c.Count),
		View:    ViewJSON,
	}
	if c.Kind != KindRowSet {
		return tv
	}

	tv.View = ViewTable
	tv.Columns = SelectColumns(toolName, c.Rows)

	shown := c.Rows
	if len(shown) > MaxTableRows {
		shown = shown[:MaxTableRows]
	}
	for _, row := range shown {
		cells := make([]string, len(tv.Columns))
		for i, col := range tv.Columns {
			if v, ok := row.Get(col); ok {
				cells[i] = FormatCell(v)
			}
		}
		tv.Rows = append(tv.Rows, cells)
	}
	tv.Summary = fmt.Sprintf("Showing %d of %d rows", len(shown), len(c.Rows))
	return tv
}

// Badge labels a count as "count: N" for count-style tools and "rows: N" otherwise.
func Badge(toolName string, count *float64) string {
	if count == nil {
		return ""
	}
	n := strconv.FormatFloat(*count, 'f', -1, 64)
	if strings.Contains(strings.ToLower(toolName), "count") {
		return "count: " + n
	}
	return "rows: " + n
}
