package resultview

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
)

const (
	maxCellRunes = 60
	truncRunes   = 57
	ellipsis     = "…"
)

// FormatCell renders one raw JSON value for a table cell.
//
//   - absent or null: ""
//   - numbers with magnitude strictly between 100 and 200 (coordinates): 4 decimals
//   - other integers: no decimal point; other numbers: 3 decimals
//   - strings verbatim, booleans as "true"/"false"
//   - arrays and objects as compact JSON, cut to 57 runes plus "…" past 60 runes
func FormatCell(value json.RawMessage) string {
	if len(bytes.TrimSpace(value)) == 0 {
		return ""
	}
	if !gjson.ValidBytes(value) {
		return string(value)
	}

	v := gjson.ParseBytes(value)
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.Number:
		return formatNumber(v.Float())
	case gjson.String:
		return v.String()
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	}
	return formatStructured(value)
}

func formatNumber(f float64) string {
	abs := math.Abs(f)
	switch {
	case abs > 100 && abs < 200:
		return strconv.FormatFloat(f, 'f', 4, 64)
	case f == 0:
		return "0"
	case f == math.Trunc(f):
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', 3, 64)
	}
}

func formatStructured(value json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return string(value)
	}
	s := []rune(buf.String())
	if len(s) > maxCellRunes {
		return string(s[:truncRunes]) + ellipsis
	}
	return string(s)
}
