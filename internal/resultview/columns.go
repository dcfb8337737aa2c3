package resultview

import "strings"

// GenericColumnLimit is how many leading keys are shown for tools without a column preset.
const GenericColumnLimit = 6

type columnPreset struct {
	match      func(toolName string) bool
	candidates []string
}

// columnPresets map a tool-name predicate to an ordered candidate column list.
var columnPresets = []columnPreset{
	{
		match: containsFold("search_fire_points"),
		candidates: []string{
			"ID", "NAME", "FIRESEASON", "PRESCRIBEDFIRE",
			"LATITUDE", "LONGITUDE", "MAPNAME", "MGMTORGID",
		},
	},
}

func containsFold(substr string) func(string) bool {
	substr = strings.ToLower(substr)
	return func(s string) bool {
		return strings.Contains(strings.ToLower(s), substr)
	}
}

// SelectColumns picks the display columns for rows. The first row is the only
// shape witness: keys that appear only in later rows are never shown.
func SelectColumns(toolName string, rows []Record) []string {
	if len(rows) == 0 {
		return []string{}
	}
	first := rows[0]

	for _, preset := range columnPresets {
		if !preset.match(toolName) {
			continue
		}
		cols := make([]string, 0, len(preset.candidates))
		for _, c := range preset.candidates {
			if first.Has(c) {
				cols = append(cols, c)
			}
		}
		return cols
	}

	n := len(first.Keys)
	if n > GenericColumnLimit {
		n = GenericColumnLimit
	}
	cols := make([]string, n)
	copy(cols, first.Keys[:n])
	return cols
}
